package repository

import "context"

// StatsSnapshot carries counts read at a single consistent instant.
type StatsSnapshot struct {
	TotalUsers     int64
	TotalQuestions int64
	TotalAnswers   int64
	// TopAnswerer is the name of the user with the most non-deleted answers,
	// ties broken by lowest user id. Nil when no answers exist or the caller
	// did not ask for it.
	TopAnswerer *string
}

// StatsRepository computes aggregate counts inside one read transaction so
// the numbers never exhibit read skew against each other.
type StatsRepository interface {
	Snapshot(ctx context.Context, includeTopUser bool) (*StatsSnapshot, error)
}
