package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/clipcontest/submission-review-go/pkg/logger"
)

// Client wraps the asynq client for enqueueing ingestion tasks.
type Client struct {
	asynqClient *asynq.Client
	log         *zap.Logger
}

// NewClient creates a new queue client.
func NewClient(redisURL string) (*Client, error) {
	redisOpt, err := ParseRedisURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &Client{
		asynqClient: asynq.NewClient(redisOpt),
		log:         logger.Named("queue"),
	}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.asynqClient.Close()
}

// EnqueueSnapshotIngestion enqueues a snapshot ingestion task. The task
// key is the snapshot id, so a replayed webhook collapses into the
// already-queued task instead of ingesting twice.
func (c *Client) EnqueueSnapshotIngestion(ctx context.Context, snapshotID, datasetID string) error {
	payload, err := NewIngestSnapshotTask(snapshotID, datasetID)
	if err != nil {
		return fmt.Errorf("failed to create task payload: %w", err)
	}

	payloadBytes, err := payload.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(TypeIngestSnapshot, payloadBytes)

	info, err := c.asynqClient.EnqueueContext(ctx, task,
		asynq.TaskID("snapshot-"+snapshotID),
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("default"),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			c.log.Info("snapshot ingestion already queued",
				zap.String("snapshot_id", snapshotID),
			)
			return nil
		}
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	c.log.Info("enqueued snapshot ingestion",
		zap.String("snapshot_id", snapshotID),
		zap.String("task_id", info.ID),
	)
	return nil
}
