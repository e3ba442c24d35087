package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"qa-board/internal/domain"
)

// Open opens (or creates) a sqlite database at the given path and ensures
// directories exist. Pass ":memory:" for an in-process throwaway database.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// single writer; the pool must not hand out a second connection for
	// :memory: databases or each would see its own empty store
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if path != ":memory:" {
		if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
			return nil, fmt.Errorf("enable wal: %w", err)
		}
	}

	return db, nil
}

// translateConstraint maps driver constraint failures onto the domain error
// taxonomy without leaking storage detail to callers.
func translateConstraint(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique"):
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	case strings.Contains(msg, "foreign key"):
		return fmt.Errorf("%w: related record does not exist", domain.ErrInvalidInput)
	default:
		return err
	}
}
