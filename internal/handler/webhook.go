package handler

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clipcontest/submission-review-go/internal/db"
	"github.com/clipcontest/submission-review-go/internal/metrics"
	"github.com/clipcontest/submission-review-go/internal/models"
	"github.com/clipcontest/submission-review-go/internal/repository"
	"github.com/clipcontest/submission-review-go/pkg/logger"
)

// SnapshotEnqueuer queues a received snapshot for ingestion.
type SnapshotEnqueuer interface {
	EnqueueSnapshotIngestion(ctx context.Context, snapshotID, datasetID string) error
}

// WebhookHandler handles provider snapshot-ready notifications.
type WebhookHandler struct {
	snapshots repository.SnapshotRepository
	enqueuer  SnapshotEnqueuer
	secret    string
}

// NewWebhookHandler creates a new WebhookHandler instance. If secret is
// empty, the secret header check is skipped.
func NewWebhookHandler(snapshots repository.SnapshotRepository, enqueuer SnapshotEnqueuer, secret string) *WebhookHandler {
	return &WebhookHandler{
		snapshots: snapshots,
		enqueuer:  enqueuer,
		secret:    secret,
	}
}

// HandleSnapshotReady processes POST /webhook/snapshots. The provider is
// answered quickly; the actual download and ingestion happens on the
// task queue. Replays of an already-tracked snapshot are acknowledged
// without creating a second tracking row.
func (h *WebhookHandler) HandleSnapshotReady(c *gin.Context) {
	if h.secret != "" {
		provided := c.GetHeader("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
			logger.Log.Warn("webhook rejected: bad secret",
				zap.String("remote_addr", c.ClientIP()),
			)
			writeError(c, http.StatusUnauthorized, "Unauthorized", "invalid webhook secret")
			return
		}
	}

	var payload models.SnapshotWebhookDTO
	if err := c.ShouldBindJSON(&payload); err != nil {
		logger.Log.Warn("Invalid request payload",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	logger.Log.Info("Received snapshot webhook",
		zap.String("snapshot_id", payload.SnapshotID),
		zap.String("dataset_id", payload.DatasetID),
	)

	ingestion := &models.SnapshotIngestion{
		ID:         uuid.New(),
		SnapshotID: payload.SnapshotID,
		Status:     models.SnapshotReceived,
	}
	if err := h.snapshots.Create(c.Request.Context(), ingestion); err != nil {
		if !db.IsDuplicateKey(err) {
			handleError(c, err)
			return
		}
		logger.Log.Info("snapshot already tracked",
			zap.String("snapshot_id", payload.SnapshotID),
		)
	}
	metrics.SnapshotsReceived.Inc()

	if err := h.enqueuer.EnqueueSnapshotIngestion(c.Request.Context(), payload.SnapshotID, payload.DatasetID); err != nil {
		logger.Log.Error("failed to enqueue snapshot ingestion",
			zap.String("snapshot_id", payload.SnapshotID),
			zap.Error(err),
		)
		writeError(c, http.StatusInternalServerError, "Internal Server Error", "Failed to queue snapshot for ingestion")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":      "accepted",
		"snapshot_id": payload.SnapshotID,
	})
}
