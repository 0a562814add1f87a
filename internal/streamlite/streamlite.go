// Package streamlite provides catalog sources and loads product and listing catalogs together.
package streamlite

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
)

// Source supplies the raw bytes of one catalog
type Source interface {
	Name() string
	Read(ctx context.Context) ([]byte, error)
}

// FileSource reads a catalog from a file path
type FileSource struct {
	path string
}

// NewFileSource creates a new file source
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name returns the file path
func (s *FileSource) Name() string {
	return s.path
}

// Read loads the whole file
func (s *FileSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return data, nil
}

// BytesSource serves a catalog already held in memory
type BytesSource struct {
	name string
	data []byte
}

// NewBytesSource creates a new in-memory source
func NewBytesSource(name string, data []byte) *BytesSource {
	return &BytesSource{name: name, data: data}
}

// Name returns the source name
func (s *BytesSource) Name() string {
	return s.name
}

// Read returns the held bytes
func (s *BytesSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.data, nil
}

// Pair is the raw content of both catalogs
type Pair struct {
	Products []byte
	Listings []byte
}

// LoadPair reads both sources concurrently and returns once both are done.
// Each read owns its buffer, nothing is shared until both complete.
func LoadPair(ctx context.Context, products, listings Source) (Pair, error) {
	var pair Pair

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := products.Read(ctx)
		if err != nil {
			return fmt.Errorf("products source %s: %w", products.Name(), err)
		}
		pair.Products = data
		return nil
	})
	g.Go(func() error {
		data, err := listings.Read(ctx)
		if err != nil {
			return fmt.Errorf("listings source %s: %w", listings.Name(), err)
		}
		pair.Listings = data
		return nil
	})

	if err := g.Wait(); err != nil {
		return Pair{}, err
	}
	return pair, nil
}
