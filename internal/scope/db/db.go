// Package db provides storage for match results: a results file, Postgres or an embedded bbolt file.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the Postgres connection pool used for result storage
type DB struct {
	pool *pgxpool.Pool
}

// New connects to Postgres and verifies the connection
func New(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Sink returns a result sink on this database with its schema in place
func (d *DB) Sink(ctx context.Context) (*PostgresSink, error) {
	sink := NewPostgresSink(d.pool)
	if err := sink.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return sink, nil
}

// Close closes the database connection
func (d *DB) Close() {
	d.pool.Close()
}
