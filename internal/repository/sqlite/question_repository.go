package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"qa-board/internal/domain"
	"qa-board/internal/repository"
)

const createQuestionsTable = `
CREATE TABLE IF NOT EXISTS questions (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	user_id TEXT NOT NULL REFERENCES users(id),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	deleted_at DATETIME
);
CREATE INDEX IF NOT EXISTS idx_questions_user ON questions(user_id);
CREATE INDEX IF NOT EXISTS idx_questions_created ON questions(created_at);
`

type QuestionRepository struct {
	db *sql.DB
}

func NewQuestionRepository(db *sql.DB) repository.QuestionRepository {
	return &QuestionRepository{db: db}
}

func (r *QuestionRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createQuestionsTable); err != nil {
		return fmt.Errorf("create questions table: %w", err)
	}
	return nil
}

func (r *QuestionRepository) Create(ctx context.Context, question *domain.Question) error {
	now := time.Now().UTC()
	question.CreatedAt = now
	question.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO questions (id, title, body, user_id, created_at, updated_at, deleted_at)
VALUES (?, ?, ?, ?, ?, ?, NULL)`,
		question.ID,
		question.Title,
		question.Body,
		question.UserID,
		question.CreatedAt,
		question.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert question: %w", translateConstraint(err))
	}
	return nil
}

func (r *QuestionRepository) Get(ctx context.Context, id string) (*domain.Question, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, body, user_id, created_at, updated_at
FROM questions
WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	return scanQuestion(row)
}

func (r *QuestionRepository) GetDetail(ctx context.Context, id string) (*domain.Question, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT q.id, q.title, q.body, q.user_id, q.created_at, q.updated_at, u.name, u.email
FROM questions q
JOIN users u ON u.id = q.user_id
WHERE q.id = ? AND q.deleted_at IS NULL`,
		id,
	)

	var q domain.Question
	if err := row.Scan(
		&q.ID, &q.Title, &q.Body, &q.UserID, &q.CreatedAt, &q.UpdatedAt,
		&q.AuthorName, &q.AuthorEmail,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan question detail: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, body, user_id, question_id, created_at, updated_at
FROM answers
WHERE question_id = ? AND deleted_at IS NULL
ORDER BY created_at ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("list question answers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a domain.Answer
		if err := rows.Scan(&a.ID, &a.Body, &a.UserID, &a.QuestionID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan answer row: %w", err)
		}
		q.Answers = append(q.Answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) List(ctx context.Context, page, pageSize int) ([]domain.Question, int64, error) {
	offset := (page - 1) * pageSize

	// one transaction so the page and the total agree with each other
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("begin list tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
SELECT q.id, q.title, q.body, q.user_id, q.created_at, q.updated_at, u.name,
	(SELECT COUNT(*) FROM answers a WHERE a.question_id = q.id AND a.deleted_at IS NULL)
FROM questions q
JOIN users u ON u.id = q.user_id
WHERE q.deleted_at IS NULL
ORDER BY q.created_at DESC
LIMIT ? OFFSET ?`,
		pageSize, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list questions: %w", err)
	}

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(
			&q.ID, &q.Title, &q.Body, &q.UserID, &q.CreatedAt, &q.UpdatedAt,
			&q.AuthorName, &q.AnswerCount,
		); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan question row: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, 0, err
	}
	rows.Close()

	var total int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM questions WHERE deleted_at IS NULL`,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count questions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit list tx: %w", err)
	}
	return questions, total, nil
}

func (r *QuestionRepository) ListWithAuthors(ctx context.Context) ([]domain.Question, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT q.id, q.title, q.body, u.name
FROM questions q
JOIN users u ON u.id = q.user_id
WHERE q.deleted_at IS NULL
ORDER BY q.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list questions with authors: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Title, &q.Body, &q.AuthorName); err != nil {
			return nil, fmt.Errorf("scan question row: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *QuestionRepository) SearchByTitle(ctx context.Context, term string) ([]domain.Question, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, body, user_id, created_at, updated_at
FROM questions
WHERE lower(title) LIKE '%' || lower(?) || '%' AND deleted_at IS NULL
ORDER BY created_at DESC`,
		term,
	)
	if err != nil {
		return nil, fmt.Errorf("search questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Title, &q.Body, &q.UserID, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan question row: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *QuestionRepository) Update(ctx context.Context, id, title, body string) (*domain.Question, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE questions SET title = ?, body = ?, updated_at = ?
WHERE id = ? AND deleted_at IS NULL`,
		title, body, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update question: %w", translateConstraint(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update question rows affected: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *QuestionRepository) SoftDelete(ctx context.Context, id string, deletedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE questions SET deleted_at = ?, updated_at = ?
WHERE id = ? AND deleted_at IS NULL`,
		deletedAt.UTC(), deletedAt.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("soft delete question: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *QuestionRepository) Owner(ctx context.Context, id string) (string, error) {
	var owner string
	err := r.db.QueryRowContext(ctx, `
SELECT user_id FROM questions WHERE id = ? AND deleted_at IS NULL`,
		id,
	).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("resolve question owner: %w", err)
	}
	return owner, nil
}

func scanQuestion(row interface {
	Scan(dest ...any) error
}) (*domain.Question, error) {
	var q domain.Question
	if err := row.Scan(
		&q.ID,
		&q.Title,
		&q.Body,
		&q.UserID,
		&q.CreatedAt,
		&q.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan question: %w", err)
	}
	return &q, nil
}
