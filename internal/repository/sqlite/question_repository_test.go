package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qa-board/internal/domain"
)

func TestQuestionRepository_CreateAndGet(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	user := r.seedUser(t, "alice@example.com", "Alice")
	question := r.seedQuestion(t, user.ID, "How do transactions work?")

	got, err := r.questions.Get(ctx, question.ID)
	require.NoError(t, err)
	assert.Equal(t, question.Title, got.Title)
	assert.Equal(t, user.ID, got.UserID)
}

func TestQuestionRepository_GetDetailIncludesAuthorAndAnswers(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	alice := r.seedUser(t, "alice@example.com", "Alice")
	bob := r.seedUser(t, "bob@example.com", "Bob")
	question := r.seedQuestion(t, alice.ID, "A question")
	r.seedAnswer(t, bob.ID, question.ID)
	deleted := r.seedAnswer(t, bob.ID, question.ID)
	_, err := r.answers.SoftDelete(ctx, deleted.ID, time.Now())
	require.NoError(t, err)

	got, err := r.questions.GetDetail(ctx, question.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.AuthorName)
	assert.Equal(t, "alice@example.com", got.AuthorEmail)
	require.Len(t, got.Answers, 1, "soft-deleted answers must not surface")
}

func TestQuestionRepository_SoftDeleteHidesEverywhere(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	user := r.seedUser(t, "alice@example.com", "Alice")
	kept := r.seedQuestion(t, user.ID, "Kept question")
	doomed := r.seedQuestion(t, user.ID, "Doomed question")

	require.NoError(t, r.questions.SoftDelete(ctx, doomed.ID, time.Now()))

	_, err := r.questions.Get(ctx, doomed.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = r.questions.GetDetail(ctx, doomed.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, total, err := r.questions.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, kept.ID, list[0].ID)

	withAuthors, err := r.questions.ListWithAuthors(ctx)
	require.NoError(t, err)
	assert.Len(t, withAuthors, 1)

	found, err := r.questions.SearchByTitle(ctx, "doomed")
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = r.questions.Owner(ctx, doomed.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQuestionRepository_SoftDeleteTwice(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	user := r.seedUser(t, "alice@example.com", "Alice")
	question := r.seedQuestion(t, user.ID, "A question")

	require.NoError(t, r.questions.SoftDelete(ctx, question.ID, time.Now()))

	// the second delete is indistinguishable from deleting a missing row
	err := r.questions.SoftDelete(ctx, question.ID, time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, r.questions.SoftDelete(ctx, "never-existed", time.Now()), domain.ErrNotFound)
}

func TestQuestionRepository_UpdateRefusesDeleted(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	user := r.seedUser(t, "alice@example.com", "Alice")
	question := r.seedQuestion(t, user.ID, "Original title")

	updated, err := r.questions.Update(ctx, question.ID, "New title", "new body")
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, "new body", updated.Body)

	require.NoError(t, r.questions.SoftDelete(ctx, question.ID, time.Now()))

	_, err = r.questions.Update(ctx, question.ID, "Too late", "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQuestionRepository_ListPaginatesNewestFirst(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	user := r.seedUser(t, "alice@example.com", "Alice")
	for i := 0; i < 5; i++ {
		r.seedQuestion(t, user.ID, "Question")
	}

	page1, total, err := r.questions.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, page1, 2)

	page3, _, err := r.questions.List(ctx, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page3, 1)

	empty, _, err := r.questions.List(ctx, 4, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestQuestionRepository_ListProjectsAnswerCount(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	alice := r.seedUser(t, "alice@example.com", "Alice")
	question := r.seedQuestion(t, alice.ID, "Counted")
	r.seedAnswer(t, alice.ID, question.ID)
	r.seedAnswer(t, alice.ID, question.ID)
	gone := r.seedAnswer(t, alice.ID, question.ID)
	_, err := r.answers.SoftDelete(ctx, gone.ID, time.Now())
	require.NoError(t, err)

	list, _, err := r.questions.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].AnswerCount)
	assert.Equal(t, "Alice", list[0].AuthorName)
}

func TestQuestionRepository_SearchByTitleCaseInsensitive(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	user := r.seedUser(t, "alice@example.com", "Alice")
	r.seedQuestion(t, user.ID, "Understanding Goroutines")
	r.seedQuestion(t, user.ID, "Unrelated")

	found, err := r.questions.SearchByTitle(ctx, "goroutines")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Understanding Goroutines", found[0].Title)
}

func TestQuestionRepository_Owner(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	user := r.seedUser(t, "alice@example.com", "Alice")
	question := r.seedQuestion(t, user.ID, "A question")

	owner, err := r.questions.Owner(ctx, question.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, owner)
}

func TestQuestionRepository_CreateRequiresExistingUser(t *testing.T) {
	r := newTestRepos(t)

	question := &domain.Question{
		ID:     "q1",
		Title:  "Orphan",
		Body:   "b",
		UserID: "ghost",
	}
	err := r.questions.Create(context.Background(), question)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
