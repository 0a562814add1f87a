// Package reconcile runs one products-against-listings reconciliation end to end.
package reconcile

import (
	"context"
	"time"

	"github.com/dsjohal14/listmatch/internal/catalog"
	"github.com/dsjohal14/listmatch/internal/libs/accel"
	"github.com/dsjohal14/listmatch/internal/scope/emit"
	"github.com/dsjohal14/listmatch/internal/scope/search"
	"github.com/rs/zerolog"
)

// Stats summarizes a run
type Stats struct {
	Products        int
	Listings        int
	MatchedProducts int
	MatchedListings int
	Duration        time.Duration
}

// Result is the outcome of a successful run
type Result struct {
	Matches []search.Match
	Output  []byte
	Stats   Stats
}

// Reconciler matches every product against the whole listing corpus
type Reconciler struct {
	pool   *accel.Pool
	logger zerolog.Logger
}

// New creates a reconciler. A nil pool matches sequentially.
func New(pool *accel.Pool, logger zerolog.Logger) *Reconciler {
	if pool == nil {
		pool = accel.NewPool(1, nil)
	}
	return &Reconciler{pool: pool, logger: logger}
}

// Run parses both catalogs and matches them. Any malformed record fails the
// whole run before matching starts and no output is produced.
func (r *Reconciler) Run(ctx context.Context, productsRaw, listingsRaw []byte) (*Result, error) {
	started := time.Now()

	products, err := catalog.ParseProducts(productsRaw)
	if err != nil {
		return nil, err
	}
	listings, err := catalog.ParseListings(listingsRaw)
	if err != nil {
		return nil, err
	}

	r.logger.Debug().
		Int("products", len(products)).
		Int("listings", len(listings)).
		Msg("catalogs decoded")

	matches, err := r.Match(ctx, products, listings)
	if err != nil {
		return nil, err
	}

	output, err := emit.Encode(matches)
	if err != nil {
		return nil, err
	}

	stats := Stats{
		Products: len(products),
		Listings: len(listings),
		Duration: time.Since(started),
	}
	for i := range matches {
		if n := len(matches[i].Listings); n > 0 {
			stats.MatchedProducts++
			stats.MatchedListings += n
		}
	}

	r.logger.Info().
		Int("products", stats.Products).
		Int("listings", stats.Listings).
		Int("matched_products", stats.MatchedProducts).
		Int("matched_listings", stats.MatchedListings).
		Dur("duration", stats.Duration).
		Msg("reconciliation completed")

	return &Result{Matches: matches, Output: output, Stats: stats}, nil
}

// Match runs the engine for every product; result i always belongs to product i
func (r *Reconciler) Match(ctx context.Context, products []catalog.Product, listings []catalog.Listing) ([]search.Match, error) {
	engine := search.NewEngine(listings)
	matches := make([]search.Match, len(products))

	r.logger.Debug().
		Int("indexed", engine.Count()).
		Int("workers", r.pool.Workers()).
		Msg("listing index built")

	err := r.pool.Run(ctx, len(products), func(i int) error {
		m, err := engine.Match(products[i])
		if err != nil {
			return err
		}
		matches[i] = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}
