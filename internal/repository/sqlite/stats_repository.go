package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"qa-board/internal/repository"
)

type StatsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &StatsRepository{db: db}
}

// Snapshot runs every count inside one transaction so the figures describe
// the database at a single instant. The top-user aggregation happens in SQL;
// answer rows are never pulled into memory.
func (r *StatsRepository) Snapshot(ctx context.Context, includeTopUser bool) (*repository.StatsSnapshot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin stats tx: %w", err)
	}
	defer tx.Rollback()

	var snap repository.StatsSnapshot

	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users`,
	).Scan(&snap.TotalUsers); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM questions WHERE deleted_at IS NULL`,
	).Scan(&snap.TotalQuestions); err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM answers WHERE deleted_at IS NULL`,
	).Scan(&snap.TotalAnswers); err != nil {
		return nil, fmt.Errorf("count answers: %w", err)
	}

	if includeTopUser {
		var name string
		err := tx.QueryRowContext(ctx, `
SELECT u.name
FROM answers a
JOIN users u ON u.id = a.user_id
WHERE a.deleted_at IS NULL
GROUP BY a.user_id
ORDER BY COUNT(*) DESC, a.user_id ASC
LIMIT 1`,
		).Scan(&name)
		switch {
		case err == nil:
			snap.TopAnswerer = &name
		case errors.Is(err, sql.ErrNoRows):
			// no answers at all; leave TopAnswerer nil
		default:
			return nil, fmt.Errorf("top answerer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit stats tx: %w", err)
	}
	return &snap, nil
}
