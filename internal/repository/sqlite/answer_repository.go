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

const createAnswersTable = `
CREATE TABLE IF NOT EXISTS answers (
	id TEXT PRIMARY KEY,
	body TEXT NOT NULL,
	user_id TEXT NOT NULL REFERENCES users(id),
	question_id TEXT NOT NULL REFERENCES questions(id),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	deleted_at DATETIME
);
CREATE INDEX IF NOT EXISTS idx_answers_question ON answers(question_id);
CREATE INDEX IF NOT EXISTS idx_answers_user ON answers(user_id);
`

type AnswerRepository struct {
	db *sql.DB
}

func NewAnswerRepository(db *sql.DB) repository.AnswerRepository {
	return &AnswerRepository{db: db}
}

func (r *AnswerRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createAnswersTable); err != nil {
		return fmt.Errorf("create answers table: %w", err)
	}
	return nil
}

func (r *AnswerRepository) Create(ctx context.Context, answer *domain.Answer) error {
	now := time.Now().UTC()
	answer.CreatedAt = now
	answer.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO answers (id, body, user_id, question_id, created_at, updated_at, deleted_at)
VALUES (?, ?, ?, ?, ?, ?, NULL)`,
		answer.ID,
		answer.Body,
		answer.UserID,
		answer.QuestionID,
		answer.CreatedAt,
		answer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert answer: %w", translateConstraint(err))
	}
	return nil
}

func (r *AnswerRepository) Get(ctx context.Context, id string) (*domain.Answer, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, body, user_id, question_id, created_at, updated_at
FROM answers
WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	return scanAnswer(row)
}

func (r *AnswerRepository) List(ctx context.Context, page, pageSize int) ([]domain.Answer, int64, error) {
	offset := (page - 1) * pageSize

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("begin list tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
SELECT id, body, user_id, question_id, created_at, updated_at
FROM answers
WHERE deleted_at IS NULL
ORDER BY created_at DESC
LIMIT ? OFFSET ?`,
		pageSize, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list answers: %w", err)
	}

	var answers []domain.Answer
	for rows.Next() {
		var a domain.Answer
		if err := rows.Scan(&a.ID, &a.Body, &a.UserID, &a.QuestionID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan answer row: %w", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, 0, err
	}
	rows.Close()

	var total int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM answers WHERE deleted_at IS NULL`,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count answers: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit list tx: %w", err)
	}
	return answers, total, nil
}

func (r *AnswerRepository) Update(ctx context.Context, id, body string) (*domain.Answer, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE answers SET body = ?, updated_at = ?
WHERE id = ? AND deleted_at IS NULL`,
		body, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update answer: %w", translateConstraint(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update answer rows affected: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *AnswerRepository) SoftDelete(ctx context.Context, id string, deletedAt time.Time) (*domain.Answer, error) {
	// resolved before the flag flips so the caller still learns the parent
	// question id of the row it just hid
	answer, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE answers SET deleted_at = ?, updated_at = ?
WHERE id = ? AND deleted_at IS NULL`,
		deletedAt.UTC(), deletedAt.UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("soft delete answer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("soft delete rows affected: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrNotFound
	}

	when := deletedAt.UTC()
	answer.DeletedAt = &when
	return answer, nil
}

func (r *AnswerRepository) Owner(ctx context.Context, id string) (string, error) {
	var owner string
	err := r.db.QueryRowContext(ctx, `
SELECT user_id FROM answers WHERE id = ? AND deleted_at IS NULL`,
		id,
	).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("resolve answer owner: %w", err)
	}
	return owner, nil
}

func scanAnswer(row interface {
	Scan(dest ...any) error
}) (*domain.Answer, error) {
	var a domain.Answer
	if err := row.Scan(
		&a.ID,
		&a.Body,
		&a.UserID,
		&a.QuestionID,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan answer: %w", err)
	}
	return &a, nil
}
