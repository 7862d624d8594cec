package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/clipcontest/submission-review-go/internal/metrics"
	"github.com/clipcontest/submission-review-go/internal/models"
	"github.com/clipcontest/submission-review-go/internal/repository"
	"github.com/clipcontest/submission-review-go/pkg/logger"
)

// SnapshotFetcher is the provider surface the ingestor needs.
type SnapshotFetcher interface {
	WaitAndDownload(ctx context.Context, snapshotID string) ([]byte, int, error)
}

// Ingestor carries one provider snapshot from tracked receipt to ingested
// submission stats.
type Ingestor struct {
	provider  SnapshotFetcher
	snapshots repository.SnapshotRepository
	log       *zap.Logger
}

// NewIngestor creates an Ingestor.
func NewIngestor(provider SnapshotFetcher, snapshots repository.SnapshotRepository) *Ingestor {
	return &Ingestor{
		provider:  provider,
		snapshots: snapshots,
		log:       logger.Named("ingestor"),
	}
}

// Ingest processes a single tracked snapshot. Already-ingested snapshots
// are a no-op, which makes redelivery of the task safe.
func (i *Ingestor) Ingest(ctx context.Context, snapshotID string) error {
	tracked, err := i.snapshots.GetBySnapshotID(ctx, snapshotID)
	if err != nil {
		return fmt.Errorf("load tracked snapshot: %w", err)
	}

	if tracked.Status == models.SnapshotIngested {
		i.log.Info("snapshot already ingested, skipping",
			zap.String("snapshot_id", snapshotID),
		)
		return nil
	}

	if err := i.snapshots.MarkIngesting(ctx, tracked.ID); err != nil {
		return fmt.Errorf("mark snapshot ingesting: %w", err)
	}

	payload, attempts, err := i.provider.WaitAndDownload(ctx, snapshotID)
	metrics.SnapshotPollAttempts.Observe(float64(attempts))
	if err != nil {
		if errors.Is(err, ErrSnapshotFailed) {
			// Provider gave up; retrying the task cannot help.
			i.fail(ctx, tracked, err)
			return nil
		}
		i.fail(ctx, tracked, err)
		return fmt.Errorf("fetch snapshot %s: %w", snapshotID, err)
	}

	if err := i.snapshots.IngestPayload(ctx, snapshotID, payload); err != nil {
		i.fail(ctx, tracked, err)
		return fmt.Errorf("ingest snapshot %s: %w", snapshotID, err)
	}

	if err := i.snapshots.MarkIngested(ctx, tracked.ID); err != nil {
		return fmt.Errorf("mark snapshot ingested: %w", err)
	}

	metrics.SnapshotIngestions.WithLabelValues("success").Inc()
	i.log.Info("snapshot ingested",
		zap.String("snapshot_id", snapshotID),
		zap.Int("poll_attempts", attempts),
		zap.Int("payload_bytes", len(payload)),
	)
	return nil
}

func (i *Ingestor) fail(ctx context.Context, tracked *models.SnapshotIngestion, cause error) {
	metrics.SnapshotIngestions.WithLabelValues("failure").Inc()
	if err := i.snapshots.MarkFailed(ctx, tracked.ID, cause.Error()); err != nil {
		i.log.Warn("failed to record snapshot failure",
			zap.String("snapshot_id", tracked.SnapshotID),
			zap.Error(err),
		)
	}
	i.log.Error("snapshot ingestion failed",
		zap.String("snapshot_id", tracked.SnapshotID),
		zap.Error(cause),
	)
}
