package db

import (
	"context"
	"errors"
	"time"

	"github.com/dsjohal14/listmatch/internal/scope/search"
)

// RunInfo identifies the reconciliation run a result set belongs to
type RunInfo struct {
	ID        string
	CreatedAt time.Time
	Products  int
	Listings  int
	Matched   int
}

// Sink is where match results go once a run succeeds.
// output is the emitted newline-delimited form of matches.
type Sink interface {
	// Write stores the results of one run
	Write(ctx context.Context, run RunInfo, matches []search.Match, output []byte) error

	// Close releases the sink
	Close() error
}

// ErrRunNotStored is returned when a sink holds no results for a run
var ErrRunNotStored = errors.New("run results not stored")

// ResultReader reads back the emitted match lines of a stored run, in product order
type ResultReader interface {
	Lines(runID string) ([][]byte, error)
}

// Ensure every sink implements Sink
var _ Sink = (*FileSink)(nil)
var _ Sink = (*PostgresSink)(nil)
var _ Sink = (*BoltSink)(nil)
var _ ResultReader = (*BoltSink)(nil)
