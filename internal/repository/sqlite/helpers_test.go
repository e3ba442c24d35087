package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"qa-board/internal/domain"
	"qa-board/internal/repository"
)

type testRepos struct {
	db        *sql.DB
	users     repository.UserRepository
	questions repository.QuestionRepository
	answers   repository.AnswerRepository
	stats     repository.StatsRepository
}

func newTestRepos(t *testing.T) *testRepos {
	t.Helper()

	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	r := &testRepos{
		db:        db,
		users:     NewUserRepository(db),
		questions: NewQuestionRepository(db),
		answers:   NewAnswerRepository(db),
		stats:     NewStatsRepository(db),
	}
	require.NoError(t, r.users.Init(ctx))
	require.NoError(t, r.questions.Init(ctx))
	require.NoError(t, r.answers.Init(ctx))
	return r
}

func (r *testRepos) seedUser(t *testing.T, email, name string) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: "$2a$10$fakehashfakehashfakehash",
	}
	require.NoError(t, r.users.Create(context.Background(), user))
	return user
}

func (r *testRepos) seedQuestion(t *testing.T, userID, title string) *domain.Question {
	t.Helper()

	question := &domain.Question{
		ID:     uuid.NewString(),
		Title:  title,
		Body:   "body of " + title,
		UserID: userID,
	}
	require.NoError(t, r.questions.Create(context.Background(), question))
	return question
}

func (r *testRepos) seedAnswer(t *testing.T, userID, questionID string) *domain.Answer {
	t.Helper()

	answer := &domain.Answer{
		ID:         uuid.NewString(),
		Body:       "an answer",
		UserID:     userID,
		QuestionID: questionID,
	}
	require.NoError(t, r.answers.Create(context.Background(), answer))
	return answer
}
