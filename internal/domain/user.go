package domain

import "time"

// User represents a registered account. PasswordHash never leaves the
// repository/service boundary.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
