package repository

import (
	"context"
	"time"

	"qa-board/internal/domain"
)

// Every read in these interfaces excludes soft-deleted rows. A row with a
// non-nil deleted_at is indistinguishable from a missing one: reads return
// domain.ErrNotFound and mutations refuse to touch it.

// QuestionRepository exposes persistence operations for Question aggregates.
type QuestionRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, question *domain.Question) error
	Get(ctx context.Context, id string) (*domain.Question, error)
	// GetDetail loads the question together with its author's name and email
	// and its non-deleted answers.
	GetDetail(ctx context.Context, id string) (*domain.Question, error)
	// List returns one page ordered by creation time descending, with author
	// name and answer count projected in, plus the total non-deleted count.
	List(ctx context.Context, page, pageSize int) ([]domain.Question, int64, error)
	// ListWithAuthors returns every non-deleted question with its author name.
	ListWithAuthors(ctx context.Context) ([]domain.Question, error)
	SearchByTitle(ctx context.Context, term string) ([]domain.Question, error)
	Update(ctx context.Context, id, title, body string) (*domain.Question, error)
	SoftDelete(ctx context.Context, id string, deletedAt time.Time) error
	// Owner resolves the owning user id of a live question.
	Owner(ctx context.Context, id string) (string, error)
}

// AnswerRepository manages answers to questions.
type AnswerRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, answer *domain.Answer) error
	Get(ctx context.Context, id string) (*domain.Answer, error)
	List(ctx context.Context, page, pageSize int) ([]domain.Answer, int64, error)
	Update(ctx context.Context, id, body string) (*domain.Answer, error)
	SoftDelete(ctx context.Context, id string, deletedAt time.Time) (*domain.Answer, error)
	Owner(ctx context.Context, id string) (string, error)
}
