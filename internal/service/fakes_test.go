package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"qa-board/internal/domain"
	"qa-board/internal/repository"
)

// In-memory repository fakes. They mirror the store's visibility rules:
// soft-deleted rows read back as domain.ErrNotFound.

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Init(context.Context) error { return nil }

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return fmt.Errorf("%w: email already registered", domain.ErrConflict)
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) CreateWithFirstQuestion(ctx context.Context, user *domain.User, question *domain.Question) error {
	if err := f.Create(ctx, user); err != nil {
		return err
	}
	return nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) SearchByName(_ context.Context, name string) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.users {
		if u.Name == name {
			out = append(out, domain.User{ID: u.ID, Name: u.Name, Email: u.Email})
		}
	}
	return out, nil
}

type fakeQuestionRepo struct {
	questions map[string]*domain.Question
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{questions: make(map[string]*domain.Question)}
}

func (f *fakeQuestionRepo) Init(context.Context) error { return nil }

func (f *fakeQuestionRepo) Create(_ context.Context, question *domain.Question) error {
	question.CreatedAt = time.Now()
	question.UpdatedAt = question.CreatedAt
	clone := *question
	f.questions[question.ID] = &clone
	return nil
}

func (f *fakeQuestionRepo) live(id string) (*domain.Question, bool) {
	q, ok := f.questions[id]
	if !ok || q.DeletedAt != nil {
		return nil, false
	}
	return q, true
}

func (f *fakeQuestionRepo) Get(_ context.Context, id string) (*domain.Question, error) {
	q, ok := f.live(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *q
	return &clone, nil
}

func (f *fakeQuestionRepo) GetDetail(ctx context.Context, id string) (*domain.Question, error) {
	return f.Get(ctx, id)
}

func (f *fakeQuestionRepo) List(_ context.Context, page, pageSize int) ([]domain.Question, int64, error) {
	var all []domain.Question
	for _, q := range f.questions {
		if q.DeletedAt == nil {
			all = append(all, *q)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := int64(len(all))
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (f *fakeQuestionRepo) ListWithAuthors(ctx context.Context) ([]domain.Question, error) {
	out, _, err := f.List(ctx, 1, len(f.questions)+1)
	return out, err
}

func (f *fakeQuestionRepo) SearchByTitle(_ context.Context, term string) ([]domain.Question, error) {
	var out []domain.Question
	for _, q := range f.questions {
		if q.DeletedAt == nil && strings.Contains(strings.ToLower(q.Title), strings.ToLower(term)) {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeQuestionRepo) Update(_ context.Context, id, title, body string) (*domain.Question, error) {
	q, ok := f.live(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	q.Title = title
	q.Body = body
	q.UpdatedAt = time.Now()
	clone := *q
	return &clone, nil
}

func (f *fakeQuestionRepo) SoftDelete(_ context.Context, id string, deletedAt time.Time) error {
	q, ok := f.live(id)
	if !ok {
		return domain.ErrNotFound
	}
	q.DeletedAt = &deletedAt
	return nil
}

func (f *fakeQuestionRepo) Owner(_ context.Context, id string) (string, error) {
	q, ok := f.live(id)
	if !ok {
		return "", domain.ErrNotFound
	}
	return q.UserID, nil
}

type fakeAnswerRepo struct {
	answers map[string]*domain.Answer
}

func newFakeAnswerRepo() *fakeAnswerRepo {
	return &fakeAnswerRepo{answers: make(map[string]*domain.Answer)}
}

func (f *fakeAnswerRepo) Init(context.Context) error { return nil }

func (f *fakeAnswerRepo) Create(_ context.Context, answer *domain.Answer) error {
	answer.CreatedAt = time.Now()
	answer.UpdatedAt = answer.CreatedAt
	clone := *answer
	f.answers[answer.ID] = &clone
	return nil
}

func (f *fakeAnswerRepo) live(id string) (*domain.Answer, bool) {
	a, ok := f.answers[id]
	if !ok || a.DeletedAt != nil {
		return nil, false
	}
	return a, true
}

func (f *fakeAnswerRepo) Get(_ context.Context, id string) (*domain.Answer, error) {
	a, ok := f.live(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (f *fakeAnswerRepo) List(_ context.Context, page, pageSize int) ([]domain.Answer, int64, error) {
	var all []domain.Answer
	for _, a := range f.answers {
		if a.DeletedAt == nil {
			all = append(all, *a)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := int64(len(all))
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (f *fakeAnswerRepo) Update(_ context.Context, id, body string) (*domain.Answer, error) {
	a, ok := f.live(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	a.Body = body
	a.UpdatedAt = time.Now()
	clone := *a
	return &clone, nil
}

func (f *fakeAnswerRepo) SoftDelete(_ context.Context, id string, deletedAt time.Time) (*domain.Answer, error) {
	a, ok := f.live(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	a.DeletedAt = &deletedAt
	clone := *a
	return &clone, nil
}

func (f *fakeAnswerRepo) Owner(_ context.Context, id string) (string, error) {
	a, ok := f.live(id)
	if !ok {
		return "", domain.ErrNotFound
	}
	return a.UserID, nil
}

type fakeStatsRepo struct {
	snapshot repository.StatsSnapshot
	err      error
}

func (f *fakeStatsRepo) Snapshot(_ context.Context, includeTopUser bool) (*repository.StatsSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	snap := f.snapshot
	if !includeTopUser {
		snap.TopAnswerer = nil
	}
	return &snap, nil
}

var (
	_ repository.UserRepository     = (*fakeUserRepo)(nil)
	_ repository.QuestionRepository = (*fakeQuestionRepo)(nil)
	_ repository.AnswerRepository   = (*fakeAnswerRepo)(nil)
	_ repository.StatsRepository    = (*fakeStatsRepo)(nil)
)
