// Package ingest pulls provider stats snapshots and feeds them into the
// submissions table.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/clipcontest/submission-review-go/internal/config"
	"github.com/clipcontest/submission-review-go/pkg/logger"
)

// Snapshot progress states reported by the provider.
const (
	progressReady   = "ready"
	progressRunning = "running"
	progressFailed  = "failed"
)

// ErrSnapshotFailed means the provider gave up on the snapshot. There is
// no point polling further.
var ErrSnapshotFailed = fmt.Errorf("provider reported snapshot failed")

// ProviderClient talks to the stats provider's dataset API.
type ProviderClient struct {
	baseURL      string
	token        string
	maxAttempts  int
	initialDelay time.Duration
	httpClient   *http.Client
	log          *zap.Logger
}

// NewProviderClient creates a client from provider configuration.
func NewProviderClient(cfg *config.ProviderConfig) *ProviderClient {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 6
	}
	initialDelay := cfg.InitialDelay
	if initialDelay <= 0 {
		initialDelay = time.Second
	}
	return &ProviderClient{
		baseURL:      cfg.BaseURL,
		token:        cfg.Token,
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		log:          logger.Named("provider"),
	}
}

type progressResponse struct {
	Status string `json:"status"`
}

func (c *ProviderClient) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.httpClient.Do(req)
}

// Progress reports the snapshot's collection state.
func (c *ProviderClient) Progress(ctx context.Context, snapshotID string) (string, error) {
	resp, err := c.get(ctx, fmt.Sprintf("%s/progress/%s", c.baseURL, snapshotID))
	if err != nil {
		return "", fmt.Errorf("progress request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("progress request: unexpected status %d", resp.StatusCode)
	}

	var progress progressResponse
	if err := json.NewDecoder(resp.Body).Decode(&progress); err != nil {
		return "", fmt.Errorf("decode progress response: %w", err)
	}
	return progress.Status, nil
}

// Download fetches the full snapshot payload as JSON.
func (c *ProviderClient) Download(ctx context.Context, snapshotID string) ([]byte, error) {
	resp, err := c.get(ctx, fmt.Sprintf("%s/snapshot/%s?format=json", c.baseURL, snapshotID))
	if err != nil {
		return nil, fmt.Errorf("snapshot request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot request: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read snapshot body: %w", err)
	}
	return body, nil
}

// WaitAndDownload polls the snapshot until the provider reports it ready,
// then downloads it. Polling backs off exponentially from the configured
// initial delay. It returns the payload and how many polls were needed.
//
// Transient failures (network errors, 429, 5xx, snapshot still running)
// are retried up to the attempt budget. A provider-reported failure is
// terminal and returns ErrSnapshotFailed immediately.
func (c *ProviderClient) WaitAndDownload(ctx context.Context, snapshotID string) ([]byte, int, error) {
	attempts := 0
	backoff := retry.WithMaxRetries(uint64(c.maxAttempts-1), retry.NewExponential(c.initialDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		status, err := c.Progress(ctx, snapshotID)
		if err != nil {
			c.log.Debug("snapshot progress check failed",
				zap.String("snapshot_id", snapshotID),
				zap.Int("attempt", attempts),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}

		switch status {
		case progressReady:
			return nil
		case progressFailed:
			return ErrSnapshotFailed
		default:
			return retry.RetryableError(fmt.Errorf("snapshot not ready: status %q", status))
		}
	})
	if err != nil {
		return nil, attempts, err
	}

	payload, err := c.Download(ctx, snapshotID)
	if err != nil {
		return nil, attempts, err
	}
	return payload, attempts, nil
}
