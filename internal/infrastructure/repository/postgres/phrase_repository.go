package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/friendsfixer/internal/core/domain"
)

type PhraseRepository struct {
	db *sql.DB
}

func NewPhraseRepository(db *sql.DB) *PhraseRepository {
	return &PhraseRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *PhraseRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// api and worker may start together.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS konglish_phrases (
	position INTEGER PRIMARY KEY,
	bad TEXT NOT NULL,
	good TEXT NOT NULL,
	context TEXT NOT NULL DEFAULT '',
	imported_at TIMESTAMPTZ NOT NULL,
	UNIQUE (bad, good, context)
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// ReplaceAll swaps the whole phrase table in one transaction. Readers see
// either the old or the new table.
func (r *PhraseRepository) ReplaceAll(ctx context.Context, entries []domain.PhraseEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM konglish_phrases`); err != nil {
		return fmt.Errorf("clear phrases: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO konglish_phrases (position, bad, good, context, imported_at)
VALUES ($1, $2, $3, $4, $5)
`)
	if err != nil {
		return fmt.Errorf("prepare phrase insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, i, e.Bad, e.Good, e.Context, now); err != nil {
			return fmt.Errorf("insert phrase %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace tx: %w", err)
	}
	return nil
}

// LoadPhrases returns the table in import order.
func (r *PhraseRepository) LoadPhrases(ctx context.Context) ([]domain.PhraseEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT bad, good, context
FROM konglish_phrases
ORDER BY position
`)
	if err != nil {
		return nil, fmt.Errorf("query phrases: %w", err)
	}
	defer rows.Close()

	var out []domain.PhraseEntry
	for rows.Next() {
		var e domain.PhraseEntry
		if err := rows.Scan(&e.Bad, &e.Good, &e.Context); err != nil {
			return nil, fmt.Errorf("scan phrase: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate phrases: %w", err)
	}
	return out, nil
}

func (r *PhraseRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM konglish_phrases`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count phrases: %w", err)
	}
	return n, nil
}
