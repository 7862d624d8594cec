package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clipcontest/submission-review-go/internal/config"
	"github.com/clipcontest/submission-review-go/internal/models"
)

func newTestClient(baseURL string, maxAttempts int) *ProviderClient {
	return NewProviderClient(&config.ProviderConfig{
		BaseURL:      baseURL,
		Token:        "test-token",
		MaxAttempts:  maxAttempts,
		InitialDelay: time.Millisecond,
	})
}

func TestWaitAndDownloadPollsUntilReady(t *testing.T) {
	var mu sync.Mutex
	progressCalls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		switch r.URL.Path {
		case "/progress/snap-1":
			mu.Lock()
			progressCalls++
			calls := progressCalls
			mu.Unlock()
			if calls < 3 {
				fmt.Fprint(w, `{"status":"running"}`)
				return
			}
			fmt.Fprint(w, `{"status":"ready"}`)
		case "/snapshot/snap-1":
			fmt.Fprint(w, `[{"post_id":"123","views":100}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 6)
	payload, attempts, err := client.WaitAndDownload(context.Background(), "snap-1")
	if err != nil {
		t.Fatalf("WaitAndDownload() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if string(payload) != `[{"post_id":"123","views":100}]` {
		t.Errorf("payload = %s", payload)
	}
}

func TestWaitAndDownloadStopsOnProviderFailure(t *testing.T) {
	var mu sync.Mutex
	progressCalls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		progressCalls++
		mu.Unlock()
		fmt.Fprint(w, `{"status":"failed"}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 6)
	_, _, err := client.WaitAndDownload(context.Background(), "snap-1")
	if !errors.Is(err, ErrSnapshotFailed) {
		t.Fatalf("WaitAndDownload() error = %v, want ErrSnapshotFailed", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if progressCalls != 1 {
		t.Errorf("progress polled %d times after terminal failure, want 1", progressCalls)
	}
}

func TestWaitAndDownloadExhaustsAttempts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"running"}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 3)
	_, attempts, err := client.WaitAndDownload(context.Background(), "snap-1")
	if err == nil {
		t.Fatal("WaitAndDownload() succeeded, want exhaustion error")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestWaitAndDownloadRetriesServerErrors(t *testing.T) {
	var mu sync.Mutex
	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/progress/snap-1" {
			fmt.Fprint(w, `[]`)
			return
		}
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"status":"ready"}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 6)
	_, attempts, err := client.WaitAndDownload(context.Background(), "snap-1")
	if err != nil {
		t.Fatalf("WaitAndDownload() error = %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

type fakeSnapshotRepo struct {
	mu      sync.Mutex
	tracked map[string]*models.SnapshotIngestion

	ingested map[string][]byte
}

func newFakeSnapshotRepo(rows ...*models.SnapshotIngestion) *fakeSnapshotRepo {
	r := &fakeSnapshotRepo{
		tracked:  make(map[string]*models.SnapshotIngestion),
		ingested: make(map[string][]byte),
	}
	for _, row := range rows {
		r.tracked[row.SnapshotID] = row
	}
	return r
}

func (r *fakeSnapshotRepo) Create(_ context.Context, ingestion *models.SnapshotIngestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracked[ingestion.SnapshotID] = ingestion
	return nil
}

func (r *fakeSnapshotRepo) GetBySnapshotID(_ context.Context, snapshotID string) (*models.SnapshotIngestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.tracked[snapshotID]
	if !ok {
		return nil, fmt.Errorf("not tracked")
	}
	cp := *row
	return &cp, nil
}

func (r *fakeSnapshotRepo) byID(id uuid.UUID) *models.SnapshotIngestion {
	for _, row := range r.tracked {
		if row.ID == id {
			return row
		}
	}
	return nil
}

func (r *fakeSnapshotRepo) MarkIngesting(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := r.byID(id)
	row.Status = models.SnapshotIngesting
	row.Attempts++
	return nil
}

func (r *fakeSnapshotRepo) MarkIngested(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID(id).Status = models.SnapshotIngested
	return nil
}

func (r *fakeSnapshotRepo) MarkFailed(_ context.Context, id uuid.UUID, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := r.byID(id)
	row.Status = models.SnapshotFailed
	row.ErrorMessage = &errorMessage
	return nil
}

func (r *fakeSnapshotRepo) IngestPayload(_ context.Context, snapshotID string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ingested[snapshotID] = payload
	return nil
}

type fakeFetcher struct {
	payload []byte
	err     error
}

func (f *fakeFetcher) WaitAndDownload(_ context.Context, _ string) ([]byte, int, error) {
	if f.err != nil {
		return nil, 1, f.err
	}
	return f.payload, 2, nil
}

func TestIngestHappyPath(t *testing.T) {
	repo := newFakeSnapshotRepo(&models.SnapshotIngestion{
		ID:         uuid.New(),
		SnapshotID: "snap-1",
		Status:     models.SnapshotReceived,
	})
	ing := NewIngestor(&fakeFetcher{payload: []byte(`[{"post_id":"1"}]`)}, repo)

	if err := ing.Ingest(context.Background(), "snap-1"); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	row, _ := repo.GetBySnapshotID(context.Background(), "snap-1")
	if row.Status != models.SnapshotIngested {
		t.Errorf("status = %q, want ingested", row.Status)
	}
	if row.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", row.Attempts)
	}
	if string(repo.ingested["snap-1"]) != `[{"post_id":"1"}]` {
		t.Error("payload not forwarded to ingestion")
	}
}

func TestIngestAlreadyIngestedIsNoop(t *testing.T) {
	repo := newFakeSnapshotRepo(&models.SnapshotIngestion{
		ID:         uuid.New(),
		SnapshotID: "snap-1",
		Status:     models.SnapshotIngested,
	})
	ing := NewIngestor(&fakeFetcher{err: fmt.Errorf("should not be called")}, repo)

	if err := ing.Ingest(context.Background(), "snap-1"); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if len(repo.ingested) != 0 {
		t.Error("already-ingested snapshot was re-ingested")
	}
}

func TestIngestTerminalProviderFailure(t *testing.T) {
	repo := newFakeSnapshotRepo(&models.SnapshotIngestion{
		ID:         uuid.New(),
		SnapshotID: "snap-1",
		Status:     models.SnapshotReceived,
	})
	ing := NewIngestor(&fakeFetcher{err: ErrSnapshotFailed}, repo)

	// Terminal provider failures must not error, or the task queue would
	// retry a snapshot that can never succeed.
	if err := ing.Ingest(context.Background(), "snap-1"); err != nil {
		t.Fatalf("Ingest() error = %v, want nil for terminal failure", err)
	}

	row, _ := repo.GetBySnapshotID(context.Background(), "snap-1")
	if row.Status != models.SnapshotFailed {
		t.Errorf("status = %q, want failed", row.Status)
	}
	if row.ErrorMessage == nil {
		t.Error("error message not recorded")
	}
}

func TestIngestTransientFailureReturnsError(t *testing.T) {
	repo := newFakeSnapshotRepo(&models.SnapshotIngestion{
		ID:         uuid.New(),
		SnapshotID: "snap-1",
		Status:     models.SnapshotReceived,
	})
	ing := NewIngestor(&fakeFetcher{err: fmt.Errorf("connection reset")}, repo)

	if err := ing.Ingest(context.Background(), "snap-1"); err == nil {
		t.Fatal("Ingest() succeeded, want error so the task is retried")
	}

	row, _ := repo.GetBySnapshotID(context.Background(), "snap-1")
	if row.Status != models.SnapshotFailed {
		t.Errorf("status = %q, want failed", row.Status)
	}
}
