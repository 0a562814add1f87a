// Package main implements the listmatch CLI, which reconciles a products file against a listings file.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dsjohal14/listmatch/internal/libs/accel"
	"github.com/dsjohal14/listmatch/internal/libs/config"
	"github.com/dsjohal14/listmatch/internal/libs/jobs"
	"github.com/dsjohal14/listmatch/internal/libs/obs"
	"github.com/dsjohal14/listmatch/internal/scope/db"
	"github.com/dsjohal14/listmatch/internal/scope/reconcile"
	"github.com/dsjohal14/listmatch/internal/streamlite"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "listmatch",
		Short: "Match marketplace listings to canonical products",
	}
	root.AddCommand(newMatchCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

type matchOptions struct {
	workers   int
	batchSize int
	sink      string
	boltPath  string
}

func newMatchCmd() *cobra.Command {
	var opts matchOptions

	cmd := &cobra.Command{
		Use:   "match <product-file> <listing-file> <results-file>",
		Short: "Write one line per product listing every matching listing",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Arguments are valid by now; runtime failures should not print usage.
			cmd.SilenceUsage = true

			cfg, err := config.Read()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = opts.workers
			}
			if cmd.Flags().Changed("batch-size") {
				cfg.BatchSize = opts.batchSize
			}
			if cmd.Flags().Changed("sink") {
				cfg.Sink = opts.sink
			}
			if cmd.Flags().Changed("bolt-path") {
				cfg.BoltPath = opts.boltPath
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			obs.InitLogger(cfg.LogLevel, cfg.LogPretty)
			return runMatch(cmd.Context(), cfg, args[0], args[1], args[2], obs.Logger("cli"))
		},
	}

	cmd.Flags().IntVar(&opts.workers, "workers", 1, "products matched concurrently")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 100, "products per worker batch")
	cmd.Flags().StringVar(&opts.sink, "sink", config.SinkFile, "extra result storage: file, postgres or bolt")
	cmd.Flags().StringVar(&opts.boltPath, "bolt-path", "listmatch.db", "bbolt database used by --sink bolt")

	return cmd
}

func runMatch(ctx context.Context, cfg *config.Config, productPath, listingPath, resultsPath string, logger zerolog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	sinks := []db.Sink{db.NewFileSink(resultsPath)}

	switch cfg.Sink {
	case config.SinkPostgres:
		conn, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer conn.Close()

		pg, err := conn.Sink(ctx)
		if err != nil {
			return err
		}
		sinks = append(sinks, pg)
	case config.SinkBolt:
		bs, err := db.NewBoltSink(cfg.BoltPath)
		if err != nil {
			return err
		}
		defer func() { _ = bs.Close() }()
		sinks = append(sinks, bs)
	}

	pool := accel.NewPool(cfg.Workers, accel.NewBatch(cfg.BatchSize))
	service := reconcile.NewService(reconcile.New(pool, logger), jobs.NewQueue(cfg.MaxRuns), logger, sinks...)

	job, _, err := service.Execute(ctx, streamlite.NewFileSource(productPath), streamlite.NewFileSource(listingPath))
	if err != nil {
		return err
	}

	logger.Info().
		Str("run_id", job.ID).
		Str("results", resultsPath).
		Msg("matches saved to " + resultsPath)
	return nil
}
