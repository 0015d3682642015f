package app

import (
	"context"
	"errors"
	"flag"

	"github.com/cun0/firehose/internal/config"
	"github.com/cun0/firehose/internal/httpserver"
	"github.com/cun0/firehose/internal/ingest"
	"github.com/cun0/firehose/internal/logging"
	"github.com/cun0/firehose/internal/repo"
)

func Run(version, buildTime string) error {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)

	pool, err := repo.NewPool(context.Background(), cfg.DB)
	if err != nil {
		return err
	}
	// pool.Close() is called in onShutdown to keep the lifecycle in one place.

	sink := repo.NewEventSink(pool)

	engine := ingest.NewEngine(sink, ingest.Config{
		Capacity:      cfg.Ingest.Capacity,
		BatchSize:     cfg.Ingest.BatchSize,
		BatchTimeout:  cfg.Ingest.BatchTimeout,
		PollInterval:  cfg.Ingest.PollInterval,
		FlushDeadline: cfg.Ingest.FlushDeadline,
	}, logger.With("component", "ingest"))
	_ = engine.Start()

	handler := httpserver.BuildHandler(httpserver.Config{
		RequestTimeout: cfg.HTTP.RequestTimeout,
	}, logger, engine, sink)

	logger.Info("service started",
		"version", version,
		"build_time", buildTime,
		"capacity", cfg.Ingest.Capacity,
		"batch_size", cfg.Ingest.BatchSize,
		"batch_timeout", cfg.Ingest.BatchTimeout.String(),
	)

	return httpserver.Serve(cfg.HTTP, cfg.Ingest.ShutdownDeadline, logger, handler, func(ctx context.Context) error {
		// Engine first: the final drain needs the pool alive.
		stopErr := engine.Stop(ctx)
		pool.Close()
		if stopErr != nil && !errors.Is(stopErr, context.Canceled) && !errors.Is(stopErr, context.DeadlineExceeded) {
			return stopErr
		}
		return nil
	})
}
