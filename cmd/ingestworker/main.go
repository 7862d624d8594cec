// The ingest worker drains the snapshot ingestion queue: it polls the
// stats provider until each snapshot is ready, downloads the payload and
// hands it to the database ingestion procedure.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/clipcontest/submission-review-go/internal/config"
	"github.com/clipcontest/submission-review-go/internal/db"
	"github.com/clipcontest/submission-review-go/internal/ingest"
	"github.com/clipcontest/submission-review-go/internal/queue"
	"github.com/clipcontest/submission-review-go/internal/repository"
	"github.com/clipcontest/submission-review-go/pkg/logger"
)

const defaultConcurrency = 4

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.Named("ingestworker")

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close(pool)

	snapshotRepo := repository.NewSnapshotRepository(pool)
	provider := ingest.NewProviderClient(&cfg.Provider)
	ingestor := ingest.NewIngestor(provider, snapshotRepo)

	server, err := queue.NewServer(cfg.Redis.URL, defaultConcurrency, queue.NewIngestHandler(ingestor))
	if err != nil {
		log.Fatal("failed to create queue server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting ingestion worker",
			zap.String("provider", cfg.Provider.BaseURL),
			zap.Int("max_poll_attempts", cfg.Provider.MaxAttempts),
		)
		if err := server.Start(); err != nil {
			serverErr <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatal("queue server error", zap.Error(err))
	case sig := <-shutdown:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
		server.Stop()
		log.Info("ingestion worker stopped gracefully")
	}
}
