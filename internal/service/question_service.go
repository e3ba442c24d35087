package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"qa-board/internal/domain"
	"qa-board/internal/repository"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// QuestionPage is one page of a question listing.
type QuestionPage struct {
	Data        []domain.Question
	TotalPages  int64
	CurrentPage int
}

// QuestionService coordinates question operations backed by repositories.
// Soft-deleted questions are invisible through every method here.
type QuestionService interface {
	Create(ctx context.Context, userID, title, body string) (*domain.Question, error)
	List(ctx context.Context, page, pageSize int) (*QuestionPage, error)
	Get(ctx context.Context, id string) (*domain.Question, error)
	Update(ctx context.Context, id, title, body string) (*domain.Question, error)
	SoftDelete(ctx context.Context, id string) error
	ListWithAuthors(ctx context.Context) ([]domain.Question, error)
	SearchByTitle(ctx context.Context, term string) ([]domain.Question, error)
	// Owner resolves the owning user of a live question for authorization.
	Owner(ctx context.Context, id string) (string, error)
}

type questionService struct {
	questions repository.QuestionRepository
}

func NewQuestionService(questions repository.QuestionRepository) QuestionService {
	return &questionService{questions: questions}
}

func (s *questionService) Create(ctx context.Context, userID, title, body string) (*domain.Question, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	question := &domain.Question{
		ID:     uuid.NewString(),
		Title:  title,
		Body:   body,
		UserID: userID,
	}
	if err := s.questions.Create(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *questionService) List(ctx context.Context, page, pageSize int) (*QuestionPage, error) {
	page, pageSize = normalizePage(page, pageSize)

	questions, total, err := s.questions.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	totalPages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPages++
	}

	return &QuestionPage{
		Data:        questions,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

func (s *questionService) Get(ctx context.Context, id string) (*domain.Question, error) {
	return s.questions.GetDetail(ctx, id)
}

func (s *questionService) Update(ctx context.Context, id, title, body string) (*domain.Question, error) {
	current, err := s.questions.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if title = strings.TrimSpace(title); title == "" {
		title = current.Title
	}
	if body == "" {
		body = current.Body
	}
	return s.questions.Update(ctx, id, title, body)
}

func (s *questionService) SoftDelete(ctx context.Context, id string) error {
	return s.questions.SoftDelete(ctx, id, time.Now())
}

func (s *questionService) ListWithAuthors(ctx context.Context) ([]domain.Question, error) {
	return s.questions.ListWithAuthors(ctx)
}

func (s *questionService) SearchByTitle(ctx context.Context, term string) ([]domain.Question, error) {
	return s.questions.SearchByTitle(ctx, term)
}

func (s *questionService) Owner(ctx context.Context, id string) (string, error) {
	return s.questions.Owner(ctx, id)
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}
