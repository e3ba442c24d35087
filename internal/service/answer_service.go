package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"qa-board/internal/domain"
	"qa-board/internal/repository"
)

// AnswerPage is one page of an answer listing.
type AnswerPage struct {
	Data        []domain.Answer
	TotalPages  int64
	CurrentPage int
}

// AnswerService coordinates answer operations. Mutating methods return the
// affected answer so callers can evict the parent question's cache entries.
type AnswerService interface {
	Create(ctx context.Context, userID, questionID, body string) (*domain.Answer, error)
	List(ctx context.Context, page, pageSize int) (*AnswerPage, error)
	Get(ctx context.Context, id string) (*domain.Answer, error)
	Update(ctx context.Context, id, body string) (*domain.Answer, error)
	SoftDelete(ctx context.Context, id string) (*domain.Answer, error)
	Owner(ctx context.Context, id string) (string, error)
}

type answerService struct {
	answers   repository.AnswerRepository
	questions repository.QuestionRepository
}

func NewAnswerService(answers repository.AnswerRepository, questions repository.QuestionRepository) AnswerService {
	return &answerService{answers: answers, questions: questions}
}

func (s *answerService) Create(ctx context.Context, userID, questionID, body string) (*domain.Answer, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: body is required", domain.ErrInvalidInput)
	}

	// the parent must exist and be live; a soft-deleted question takes no
	// new answers
	if _, err := s.questions.Get(ctx, questionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: question %s", domain.ErrNotFound, questionID)
		}
		return nil, err
	}

	answer := &domain.Answer{
		ID:         uuid.NewString(),
		Body:       body,
		UserID:     userID,
		QuestionID: questionID,
	}
	if err := s.answers.Create(ctx, answer); err != nil {
		return nil, err
	}
	return answer, nil
}

func (s *answerService) List(ctx context.Context, page, pageSize int) (*AnswerPage, error) {
	page, pageSize = normalizePage(page, pageSize)

	answers, total, err := s.answers.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	totalPages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPages++
	}

	return &AnswerPage{
		Data:        answers,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

func (s *answerService) Get(ctx context.Context, id string) (*domain.Answer, error) {
	return s.answers.Get(ctx, id)
}

func (s *answerService) Update(ctx context.Context, id, body string) (*domain.Answer, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: body is required", domain.ErrInvalidInput)
	}
	return s.answers.Update(ctx, id, body)
}

func (s *answerService) SoftDelete(ctx context.Context, id string) (*domain.Answer, error) {
	return s.answers.SoftDelete(ctx, id, time.Now())
}

func (s *answerService) Owner(ctx context.Context, id string) (string, error) {
	return s.answers.Owner(ctx, id)
}
