package service

import (
	"context"
	"fmt"
	"time"

	"qa-board/internal/domain"
	"qa-board/internal/repository"
)

const (
	StatsModeSimple = "simple"
	StatsModeFull   = "full"

	statsSource = "stats-endpoint"
)

// StatsOptions selects what the aggregation computes and how it is shaped.
type StatsOptions struct {
	IncludeTopUser bool   `json:"includeTopUser"`
	Mode           string `json:"mode"`
}

// StatsMetrics is the bare metrics object.
type StatsMetrics struct {
	TotalUsers              int64   `json:"totalUsers"`
	TotalQuestions          int64   `json:"totalQuestions"`
	TotalAnswers            int64   `json:"totalAnswers"`
	AverageQuestionsPerUser float64 `json:"averageQuestionsPerUser"`
}

// StatsMetricsWithTop adds the top-answerer field, serialized as null when
// no answers exist.
type StatsMetricsWithTop struct {
	StatsMetrics
	UserWithMostAnswers *string `json:"userWithMostAnswers"`
}

// StatsMetadata tags a full-mode report with its generation instant.
type StatsMetadata struct {
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}

// StatsEnvelope wraps a report in full mode.
type StatsEnvelope struct {
	Metadata StatsMetadata `json:"metadata"`
	Report   any           `json:"report"`
}

// StatsService computes aggregate metrics from one consistent snapshot.
type StatsService interface {
	// Compute returns StatsMetrics, StatsMetricsWithTop, or a StatsEnvelope
	// wrapping either, depending on options.
	Compute(ctx context.Context, opts StatsOptions) (any, error)
}

type statsService struct {
	stats repository.StatsRepository
	now   func() time.Time
}

func NewStatsService(stats repository.StatsRepository) StatsService {
	return &statsService{stats: stats, now: time.Now}
}

func (s *statsService) Compute(ctx context.Context, opts StatsOptions) (any, error) {
	switch opts.Mode {
	case "", StatsModeSimple, StatsModeFull:
	default:
		return nil, fmt.Errorf("%w: unknown stats mode %q", domain.ErrInvalidInput, opts.Mode)
	}

	snap, err := s.stats.Snapshot(ctx, opts.IncludeTopUser)
	if err != nil {
		return nil, err
	}

	metrics := StatsMetrics{
		TotalUsers:     snap.TotalUsers,
		TotalQuestions: snap.TotalQuestions,
		TotalAnswers:   snap.TotalAnswers,
	}
	if snap.TotalUsers > 0 {
		metrics.AverageQuestionsPerUser = float64(snap.TotalQuestions) / float64(snap.TotalUsers)
	}

	var report any = metrics
	if opts.IncludeTopUser {
		report = StatsMetricsWithTop{
			StatsMetrics:        metrics,
			UserWithMostAnswers: snap.TopAnswerer,
		}
	}

	if opts.Mode == StatsModeFull {
		return StatsEnvelope{
			Metadata: StatsMetadata{
				Timestamp: s.now().UTC().Format(time.RFC3339),
				Source:    statsSource,
			},
			Report: report,
		}, nil
	}
	return report, nil
}
