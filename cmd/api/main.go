// Package main implements the HTTP API server for listmatch.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	apihttp "github.com/dsjohal14/listmatch/internal/http"
	"github.com/dsjohal14/listmatch/internal/libs/accel"
	"github.com/dsjohal14/listmatch/internal/libs/config"
	"github.com/dsjohal14/listmatch/internal/libs/jobs"
	"github.com/dsjohal14/listmatch/internal/libs/obs"
	"github.com/dsjohal14/listmatch/internal/scope/db"
	"github.com/dsjohal14/listmatch/internal/scope/reconcile"
	"github.com/rs/zerolog"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Init logger
	obs.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := obs.Logger("api")

	sinks, closeSinks, err := initSinks(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize result storage")
	}
	defer closeSinks()

	pool := accel.NewPool(cfg.Workers, accel.NewBatch(cfg.BatchSize))
	service := reconcile.NewService(reconcile.New(pool, obs.Logger("reconcile")), jobs.NewQueue(cfg.MaxRuns), logger, sinks...)

	handler := apihttp.NewHandler(service, resultReader(sinks), cfg.MaxBodyBytes, logger)
	r := apihttp.NewRouter(handler)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	logger.Info().Str("addr", addr).Int("workers", cfg.Workers).Msg("starting API server")

	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

// initSinks opens the configured persistent storage. The file sink makes no
// sense for the API since results go back in the response, so it means no storage.
func initSinks(cfg *config.Config, logger zerolog.Logger) ([]db.Sink, func(), error) {
	switch cfg.Sink {
	case config.SinkPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		conn, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		sink, err := conn.Sink(ctx)
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		logger.Info().Msg("storing results in Postgres")
		return []db.Sink{sink}, conn.Close, nil

	case config.SinkBolt:
		sink, err := db.NewBoltSink(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("path", cfg.BoltPath).Msg("storing results in bbolt")
		return []db.Sink{sink}, func() { _ = sink.Close() }, nil

	default:
		logger.Info().Msg("results are not persisted")
		return nil, func() {}, nil
	}
}

// resultReader picks the first sink that can replay stored runs
func resultReader(sinks []db.Sink) db.ResultReader {
	for _, sink := range sinks {
		if reader, ok := sink.(db.ResultReader); ok {
			return reader
		}
	}
	return nil
}
