package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dsjohal14/listmatch/internal/scope/search"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS match_runs (
	id         UUID PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL,
	products   INT NOT NULL,
	listings   INT NOT NULL,
	matched    INT NOT NULL
);

CREATE TABLE IF NOT EXISTS matches (
	run_id        UUID NOT NULL REFERENCES match_runs(id) ON DELETE CASCADE,
	position      INT NOT NULL,
	product_name  TEXT NOT NULL,
	listing_count INT NOT NULL,
	listings      JSONB NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

var matchColumns = []string{"run_id", "position", "product_name", "listing_count", "listings"}

// PostgresSink stores each run and one row per product match
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink creates a sink on an existing pool
func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{pool: pool}
}

// EnsureSchema creates the result tables if they do not exist
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Write inserts the run and its matches in one transaction
func (s *PostgresSink) Write(ctx context.Context, run RunInfo, matches []search.Match, _ []byte) error {
	runID, err := uuid.Parse(run.ID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", run.ID, err)
	}

	rows, err := matchRows(runID, matches)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		rollbackCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tx.Rollback(rollbackCtx)
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO match_runs (id, created_at, products, listings, matched)
		VALUES ($1, $2, $3, $4, $5)
	`, runID, run.CreatedAt, run.Products, run.Listings, run.Matched)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	copied, err := tx.CopyFrom(ctx, pgx.Identifier{"matches"}, matchColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy matches: %w", err)
	}
	if int(copied) != len(rows) {
		return fmt.Errorf("copied %d of %d matches", copied, len(rows))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func matchRows(runID uuid.UUID, matches []search.Match) ([][]interface{}, error) {
	rows := make([][]interface{}, len(matches))
	for i := range matches {
		listings, err := json.Marshal(matches[i].Listings)
		if err != nil {
			return nil, fmt.Errorf("failed to encode listings for %q: %w", matches[i].ProductName, err)
		}
		rows[i] = []interface{}{runID, i, matches[i].ProductName, len(matches[i].Listings), listings}
	}
	return rows, nil
}

// Close leaves the pool open; it is owned by the DB that created it
func (s *PostgresSink) Close() error {
	return nil
}
