package reconcile

import (
	"context"
	"fmt"

	"github.com/dsjohal14/listmatch/internal/libs/jobs"
	"github.com/dsjohal14/listmatch/internal/scope/db"
	"github.com/dsjohal14/listmatch/internal/streamlite"
	"github.com/rs/zerolog"
)

// Service loads catalogs, reconciles them, records the run and hands the results to every sink
type Service struct {
	reconciler *Reconciler
	runs       *jobs.Queue
	sinks      []db.Sink
	logger     zerolog.Logger
}

// NewService creates a service. sinks may be empty; a nil runs gets an unbounded registry.
func NewService(reconciler *Reconciler, runs *jobs.Queue, logger zerolog.Logger, sinks ...db.Sink) *Service {
	if runs == nil {
		runs = jobs.NewQueue(0)
	}
	return &Service{
		reconciler: reconciler,
		runs:       runs,
		sinks:      sinks,
		logger:     logger,
	}
}

// Runs returns the run registry
func (s *Service) Runs() *jobs.Queue {
	return s.runs
}

// Execute performs one run. The returned job reflects the final state of the
// run even when an error is returned.
func (s *Service) Execute(ctx context.Context, products, listings streamlite.Source) (jobs.Job, *Result, error) {
	job := s.runs.Enqueue()
	logger := s.logger.With().Str("run_id", job.ID).Logger()

	res, err := s.execute(ctx, job, products, listings)
	if err != nil {
		_ = s.runs.Fail(job.ID, err)
		logger.Error().Err(err).Msg("run failed")
	} else {
		_ = s.runs.Finish(job.ID, jobs.Counts{
			Products: res.Stats.Products,
			Listings: res.Stats.Listings,
			Matched:  res.Stats.MatchedListings,
		})
	}

	final, getErr := s.runs.Get(job.ID)
	if getErr != nil {
		final = job
	}
	return final, res, err
}

func (s *Service) execute(ctx context.Context, job jobs.Job, products, listings streamlite.Source) (*Result, error) {
	if err := s.runs.Start(job.ID); err != nil {
		return nil, err
	}

	pair, err := streamlite.LoadPair(ctx, products, listings)
	if err != nil {
		return nil, err
	}

	res, err := s.reconciler.Run(ctx, pair.Products, pair.Listings)
	if err != nil {
		return nil, err
	}

	info := db.RunInfo{
		ID:        job.ID,
		CreatedAt: job.CreatedAt,
		Products:  res.Stats.Products,
		Listings:  res.Stats.Listings,
		Matched:   res.Stats.MatchedListings,
	}
	for _, sink := range s.sinks {
		if err := sink.Write(ctx, info, res.Matches, res.Output); err != nil {
			return nil, fmt.Errorf("failed to store results: %w", err)
		}
	}

	return res, nil
}
