package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dsjohal14/listmatch/internal/scope/emit"
	"github.com/dsjohal14/listmatch/internal/scope/search"
	bolt "go.etcd.io/bbolt"
)

var keyRun = []byte("_run")

// BoltSink keeps results in an embedded bbolt file: one bucket per run,
// keyed by zero-padded product position so cursor order is product order.
type BoltSink struct {
	db *bolt.DB
}

// NewBoltSink opens (or creates) the database at path
func NewBoltSink(path string) (*BoltSink, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}
	return &BoltSink{db: db}, nil
}

func positionKey(i int) []byte {
	return []byte(fmt.Sprintf("%010d", i))
}

// Write stores every match line of the run
func (s *BoltSink) Write(ctx context.Context, run RunInfo, matches []search.Match, _ []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	meta, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucket([]byte(run.ID))
		if err != nil {
			return fmt.Errorf("failed to create bucket for run %s: %w", run.ID, err)
		}
		if err := b.Put(keyRun, meta); err != nil {
			return err
		}
		for i := range matches {
			line, err := emit.Line(matches[i])
			if err != nil {
				return err
			}
			if err := b.Put(positionKey(i), line); err != nil {
				return fmt.Errorf("failed to store match %d: %w", i, err)
			}
		}
		return nil
	})
}

// Lines returns the stored match lines of a run in product order
func (s *BoltSink) Lines(runID string) ([][]byte, error) {
	var lines [][]byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(runID))
		if b == nil {
			return fmt.Errorf("%w: %s", ErrRunNotStored, runID)
		}
		return b.ForEach(func(k, v []byte) error {
			if string(k) == string(keyRun) {
				return nil
			}
			lines = append(lines, append([]byte(nil), v...))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// Close closes the underlying database
func (s *BoltSink) Close() error {
	return s.db.Close()
}
