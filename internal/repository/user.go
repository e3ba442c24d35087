package repository

import (
	"context"

	"qa-board/internal/domain"
)

// UserRepository defines persistence operations for User entities.
// Users are hard-deleted; there is no soft-delete column on this table.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	// CreateWithFirstQuestion inserts the user and their first question in a
	// single transaction; neither row survives if either insert fails.
	CreateWithFirstQuestion(ctx context.Context, user *domain.User, question *domain.Question) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	// SearchByName is an exact-match projection returning id, name and email only.
	SearchByName(ctx context.Context, name string) ([]domain.User, error)
}
