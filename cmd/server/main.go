package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/clipcontest/submission-review-go/internal/config"
	"github.com/clipcontest/submission-review-go/internal/db"
	"github.com/clipcontest/submission-review-go/internal/handler"
	"github.com/clipcontest/submission-review-go/internal/middleware"
	"github.com/clipcontest/submission-review-go/internal/queue"
	"github.com/clipcontest/submission-review-go/internal/repository"
	"github.com/clipcontest/submission-review-go/internal/service"
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

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close(pool)

	logger.Log.Info("database connection established",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Name),
	)

	submissionRepo := repository.NewSubmissionRepository(pool)
	appealRepo := repository.NewAppealRepository(pool)
	contestRepo := repository.NewContestRepository(pool)
	snapshotRepo := repository.NewSnapshotRepository(pool)

	// Audit event publisher is best-effort: the API stays up without it.
	var publisher service.EventPublisher
	amqpPublisher, err := service.NewAMQPPublisher(&cfg.RabbitMQ)
	if err != nil {
		logger.Log.Warn("failed to connect to RabbitMQ, status events will not be published",
			zap.Error(err),
		)
	} else {
		publisher = amqpPublisher
		defer amqpPublisher.Close()
	}

	queueClient, err := queue.NewClient(cfg.Redis.URL)
	if err != nil {
		logger.Log.Fatal("failed to initialize queue client", zap.Error(err))
	}
	defer queueClient.Close()

	reviews := service.NewReviewService(submissionRepo, appealRepo, publisher)

	router := handler.NewRouter(handler.RouterDeps{
		Submissions: handler.NewSubmissionHandler(reviews),
		Appeals:     handler.NewAppealHandler(reviews),
		Contests:    handler.NewContestHandler(contestRepo),
		Webhook:     handler.NewWebhookHandler(snapshotRepo, queueClient, cfg.Provider.WebhookSecret),
		Health:      handler.NewHealthHandler(pool),
		Auth:        middleware.NewAPIKeyAuth(cfg.Auth.APIKeys),
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Log.Info("server starting", zap.Int("port", cfg.Server.Port))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Log.Fatal("server error", zap.Error(err))
	case sig := <-shutdown:
		logger.Log.Info("shutdown signal received", zap.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("graceful shutdown failed", zap.Error(err))
			if err := server.Close(); err != nil {
				logger.Log.Error("failed to close server", zap.Error(err))
			}
			os.Exit(1)
		}

		logger.Log.Info("server stopped gracefully")
	}
}
