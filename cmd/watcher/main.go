// The watcher keeps derived review state warm. It refreshes the set of
// unsettled submissions on an interval while any of them is still moving
// through the pipeline, goes idle once none is, and exports active/stuck
// gauges for the dashboard's alerting.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/clipcontest/submission-review-go/internal/config"
	"github.com/clipcontest/submission-review-go/internal/db"
	"github.com/clipcontest/submission-review-go/internal/metrics"
	"github.com/clipcontest/submission-review-go/internal/models"
	"github.com/clipcontest/submission-review-go/internal/poller"
	"github.com/clipcontest/submission-review-go/internal/repository"
	"github.com/clipcontest/submission-review-go/internal/review"
	"github.com/clipcontest/submission-review-go/pkg/logger"
)

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

	log := logger.Named("watcher")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close(pool)

	submissionRepo := repository.NewSubmissionRepository(pool)

	fetch := func(ctx context.Context) ([]*models.Submission, error) {
		return submissionRepo.ListUnsettled(ctx, cfg.Watcher.FetchLimit)
	}
	active := func(sub *models.Submission) bool {
		return review.IsActivelyProcessing(sub, time.Now())
	}

	watch := poller.New(fetch, active, log,
		poller.WithInterval[*models.Submission](cfg.Watcher.Interval),
		poller.WithOnResult(observe(log)),
	)

	go watch.Run(ctx)

	// Metrics endpoint for the gauges the poller maintains.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Watcher.MetricsPort),
		Handler: mux,
	}
	go func() {
		log.Info("metrics server starting", zap.Int("port", cfg.Watcher.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server error", zap.Error(err))
		}
	}()

	log.Info("watcher started",
		zap.Duration("interval", cfg.Watcher.Interval),
		zap.Int("fetch_limit", cfg.Watcher.FetchLimit),
	)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	sig := <-shutdown
	log.Info("shutdown signal received", zap.String("signal", sig.String()))

	watch.Close()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics server shutdown failed", zap.Error(err))
	}

	log.Info("watcher stopped gracefully")
}

// observe recomputes the gauges from every refresh result and warns about
// submissions that have sat in a stage past its threshold.
func observe(log *zap.Logger) func([]*models.Submission) {
	return func(subs []*models.Submission) {
		now := time.Now()
		activeCount, stuckCount := 0, 0
		for _, sub := range subs {
			if review.IsActivelyProcessing(sub, now) {
				activeCount++
			}
			if review.IsStuck(sub, now) {
				stuckCount++
				log.Warn("submission stuck in pipeline stage",
					zap.Int64("submission_id", sub.ID),
					zap.String("stage", string(sub.ProcessingStatus)),
					zap.Time("updated_at", sub.UpdatedAt),
				)
			}
		}

		metrics.ActiveSubmissions.Set(float64(activeCount))
		metrics.StuckSubmissions.Set(float64(stuckCount))
		if activeCount > 0 {
			metrics.WatcherCycles.WithLabelValues(string(poller.StatePolling)).Inc()
		} else {
			metrics.WatcherCycles.WithLabelValues(string(poller.StateIdle)).Inc()
		}
	}
}
