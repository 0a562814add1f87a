package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dsjohal14/listmatch/internal/scope/search"
)

// FileSink writes the emitted results to a single file
type FileSink struct {
	path string
}

// NewFileSink creates a sink writing to path. The parent directory must exist.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Write replaces the results file with output. The data goes to a temp file
// in the same directory first so a failed run never leaves a partial file.
func (s *FileSink) Write(ctx context.Context, _ RunInfo, _ []search.Match, output []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".listmatch-*")
	if err != nil {
		return fmt.Errorf("failed to create temp results file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(output); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write results: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close results file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set results file mode: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move results file: %w", err)
	}
	return nil
}

// Close is a no-op
func (s *FileSink) Close() error {
	return nil
}
