package sqlite

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qa-board/internal/domain"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	user := r.seedUser(t, "alice@example.com", "Alice")

	byID, err := r.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)
	assert.Equal(t, "Alice", byID.Name)
	assert.False(t, byID.CreatedAt.IsZero())

	byEmail, err := r.users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserRepository_DuplicateEmailIsConflict(t *testing.T) {
	r := newTestRepos(t)

	r.seedUser(t, "alice@example.com", "Alice")

	dup := &domain.User{
		ID:           uuid.NewString(),
		Email:        "alice@example.com",
		Name:         "Other Alice",
		PasswordHash: "hash",
	}
	err := r.users.Create(context.Background(), dup)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUserRepository_GetMissing(t *testing.T) {
	r := newTestRepos(t)

	_, err := r.users.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = r.users.GetByEmail(context.Background(), "nope@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepository_Update(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	user := r.seedUser(t, "alice@example.com", "Alice")
	user.Name = "Alice Cooper"
	require.NoError(t, r.users.Update(ctx, user))

	got, err := r.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", got.Name)
}

func TestUserRepository_Delete(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	user := r.seedUser(t, "alice@example.com", "Alice")
	require.NoError(t, r.users.Delete(ctx, user.ID))

	_, err := r.users.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, r.users.Delete(ctx, user.ID), domain.ErrNotFound)
}

func TestUserRepository_SearchByName(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	r.seedUser(t, "alice@example.com", "Alice")
	r.seedUser(t, "alice2@example.com", "Alice")
	r.seedUser(t, "bob@example.com", "Bob")

	found, err := r.users.SearchByName(ctx, "Alice")
	require.NoError(t, err)
	assert.Len(t, found, 2)
	for _, u := range found {
		assert.Equal(t, "Alice", u.Name)
		assert.Empty(t, u.PasswordHash)
	}

	none, err := r.users.SearchByName(ctx, "Nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUserRepository_CreateWithFirstQuestion(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        "alice@example.com",
		Name:         "Alice",
		PasswordHash: "hash",
	}
	question := &domain.Question{
		ID:    uuid.NewString(),
		Title: "First question",
		Body:  "body",
	}
	require.NoError(t, r.users.CreateWithFirstQuestion(ctx, user, question))

	got, err := r.questions.Get(ctx, question.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)
}

func TestUserRepository_CreateWithFirstQuestionRollsBack(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	r.seedUser(t, "alice@example.com", "Alice")

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        "alice@example.com", // duplicate, user insert fails
		Name:         "Alice Again",
		PasswordHash: "hash",
	}
	question := &domain.Question{ID: uuid.NewString(), Title: "Q", Body: "b"}

	err := r.users.CreateWithFirstQuestion(ctx, user, question)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = r.questions.Get(ctx, question.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
