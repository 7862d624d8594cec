package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/clipcontest/submission-review-go/internal/ingest"
	"github.com/clipcontest/submission-review-go/pkg/logger"
)

// IngestHandler handles snapshot ingestion tasks.
type IngestHandler struct {
	ingestor *ingest.Ingestor
	log      *zap.Logger
}

// NewIngestHandler creates a new ingestion task handler.
func NewIngestHandler(ingestor *ingest.Ingestor) *IngestHandler {
	return &IngestHandler{
		ingestor: ingestor,
		log:      logger.Named("queue"),
	}
}

// ProcessTask implements asynq.HandlerFunc.
func (h *IngestHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := UnmarshalIngestSnapshotPayload(task.Payload())
	if err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	h.log.Info("processing snapshot ingestion",
		zap.String("snapshot_id", payload.SnapshotID),
	)

	return h.ingestor.Ingest(ctx, payload.SnapshotID)
}

// Server wraps an asynq server for processing ingestion tasks.
type Server struct {
	asynqServer *asynq.Server
	mux         *asynq.ServeMux
}

// NewServer creates a new task processing server.
func NewServer(redisURL string, concurrency int, handler *IngestHandler) (*Server, error) {
	redisOpt, err := ParseRedisURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	log := logger.Named("queue")
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"default": 10,
			},
			StrictPriority: false,
			ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
				log.Error("task failed",
					zap.String("type", task.Type()),
					zap.Error(err),
				)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeIngestSnapshot, handler.ProcessTask)

	return &Server{
		asynqServer: srv,
		mux:         mux,
	}, nil
}

// Start starts the server.
func (s *Server) Start() error {
	return s.asynqServer.Start(s.mux)
}

// Stop gracefully stops the server.
func (s *Server) Stop() {
	s.asynqServer.Shutdown()
}
