package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clipcontest/submission-review-go/internal/db"
	"github.com/clipcontest/submission-review-go/internal/models"
	"github.com/clipcontest/submission-review-go/internal/repository"
	"github.com/clipcontest/submission-review-go/internal/service"
)

type fakeSubmissionRepo struct {
	mu   sync.Mutex
	subs map[int64]*models.Submission
}

func newFakeSubmissionRepo(subs ...*models.Submission) *fakeSubmissionRepo {
	r := &fakeSubmissionRepo{subs: make(map[int64]*models.Submission)}
	for _, s := range subs {
		r.subs[s.ID] = s
	}
	return r
}

func (r *fakeSubmissionRepo) GetByID(_ context.Context, id int64) (*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (r *fakeSubmissionRepo) List(_ context.Context, _ repository.SubmissionFilter) ([]*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Submission
	for _, s := range r.subs {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeSubmissionRepo) ListUnsettled(_ context.Context, _ int) ([]*models.Submission, error) {
	return nil, nil
}

func (r *fakeSubmissionRepo) UpdateStatus(_ context.Context, id int64, patch repository.StatusPatch) (*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	if patch.ProcessingStatus != nil {
		sub.ProcessingStatus = *patch.ProcessingStatus
	}
	if patch.ContentReviewStatus != nil {
		sub.ContentReviewStatus = *patch.ContentReviewStatus
	}
	if patch.HashtagStatus != nil {
		sub.HashtagStatus = *patch.HashtagStatus
	}
	if patch.DescriptionStatus != nil {
		sub.DescriptionStatus = *patch.DescriptionStatus
	}
	if patch.InvalidStats != nil {
		sub.InvalidStats = *patch.InvalidStats
	}
	if patch.Hidden != nil {
		sub.Hidden = *patch.Hidden
	}
	if patch.LastStatsRefreshAt != nil {
		t := *patch.LastStatsRefreshAt
		sub.LastStatsRefreshAt = &t
	}
	cp := *sub
	return &cp, nil
}

type fakeAppealRepo struct{}

func (fakeAppealRepo) Create(_ context.Context, _ *models.Appeal) error { return nil }
func (fakeAppealRepo) GetByID(_ context.Context, _ uuid.UUID) (*models.Appeal, error) {
	return nil, db.ErrNotFound
}
func (fakeAppealRepo) List(_ context.Context, _ models.AppealStatus, _ int) ([]*models.Appeal, error) {
	return nil, nil
}
func (fakeAppealRepo) HasPending(_ context.Context, _ int64, _ models.AppealType) (bool, error) {
	return false, nil
}
func (fakeAppealRepo) Resolve(_ context.Context, _ uuid.UUID, _ models.AppealStatus, _, _ string) (*models.Appeal, error) {
	return nil, db.ErrNotFound
}

func newSubmissionRouter(repo *fakeSubmissionRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	reviews := service.NewReviewService(repo, fakeAppealRepo{}, nil)
	h := NewSubmissionHandler(reviews)

	r := gin.New()
	r.GET("/api/v1/submissions", h.List)
	r.GET("/api/v1/submissions/:id", h.Get)
	r.POST("/api/v1/submissions/:id/actions/:action", h.Action)
	r.DELETE("/api/v1/submissions/:id", h.Delete)
	return r
}

func sampleSubmission(id int64) *models.Submission {
	now := time.Now()
	return &models.Submission{
		ID:                  id,
		ContestID:           1,
		UserID:              "user-1",
		VideoURL:            "https://www.tiktok.com/@user/video/123",
		Platform:            models.PlatformTikTok,
		ProcessingStatus:    models.ProcessingApproved,
		HashtagStatus:       models.CheckPass,
		DescriptionStatus:   models.CheckPass,
		ContentReviewStatus: models.ContentReviewPending,
		OwnershipStatus:     models.OwnershipVerified,
		CreatedAt:           now.Add(-time.Hour),
		UpdatedAt:           now.Add(-5 * time.Minute),
	}
}

func doRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetSubmissionIncludesDerivedState(t *testing.T) {
	router := newSubmissionRouter(newFakeSubmissionRepo(sampleSubmission(1)))

	w := doRequest(router, http.MethodGet, "/api/v1/submissions/1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var view map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if view["bucket"] != "pending" {
		t.Errorf("bucket = %v, want pending", view["bucket"])
	}
	if _, ok := view["badges"]; !ok {
		t.Error("response missing badges")
	}
	if _, ok := view["stuck"]; !ok {
		t.Error("response missing stuck flag")
	}
}

func TestGetSubmissionNotFound(t *testing.T) {
	router := newSubmissionRouter(newFakeSubmissionRepo())

	w := doRequest(router, http.MethodGet, "/api/v1/submissions/99")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestListSubmissionsRejectsBadQuery(t *testing.T) {
	router := newSubmissionRouter(newFakeSubmissionRepo(sampleSubmission(1)))

	tests := []struct {
		name string
		path string
	}{
		{"bad bucket", "/api/v1/submissions?bucket=maybe"},
		{"bad contest id", "/api/v1/submissions?contest_id=abc"},
		{"negative limit", "/api/v1/submissions?limit=-1"},
		{"bad offset", "/api/v1/submissions?offset=x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, tt.path)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestListSubmissionsByBucket(t *testing.T) {
	rejected := sampleSubmission(2)
	rejected.ContentReviewStatus = models.ContentReviewRejected
	router := newSubmissionRouter(newFakeSubmissionRepo(sampleSubmission(1), rejected))

	w := doRequest(router, http.MethodGet, "/api/v1/submissions?bucket=rejected")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Count int `json:"count"`
		Subs  []struct {
			ID int64 `json:"id"`
		} `json:"submissions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 1 || resp.Subs[0].ID != 2 {
		t.Errorf("got %+v, want just submission 2", resp)
	}
}

func TestSubmissionActions(t *testing.T) {
	tests := []struct {
		name       string
		action     string
		wantStatus int
		check      func(t *testing.T, sub *models.Submission)
	}{
		{
			name:       "approve",
			action:     "approve",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, sub *models.Submission) {
				if sub.ContentReviewStatus != models.ContentReviewApproved {
					t.Errorf("ContentReviewStatus = %q", sub.ContentReviewStatus)
				}
			},
		},
		{
			name:       "reject",
			action:     "reject",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, sub *models.Submission) {
				if sub.ContentReviewStatus != models.ContentReviewRejected {
					t.Errorf("ContentReviewStatus = %q", sub.ContentReviewStatus)
				}
			},
		},
		{
			name:       "retry resets pipeline",
			action:     "retry",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, sub *models.Submission) {
				if sub.ProcessingStatus != models.ProcessingUploaded {
					t.Errorf("ProcessingStatus = %q", sub.ProcessingStatus)
				}
			},
		},
		{
			name:       "unknown action",
			action:     "frobnicate",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeSubmissionRepo(sampleSubmission(1))
			router := newSubmissionRouter(repo)

			w := doRequest(router, http.MethodPost, "/api/v1/submissions/1/actions/"+tt.action)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.check != nil {
				sub, _ := repo.GetByID(context.Background(), 1)
				tt.check(t, sub)
			}
		})
	}
}

func TestRefreshStatsActionRateLimited(t *testing.T) {
	sub := sampleSubmission(1)
	recent := time.Now().Add(-time.Hour)
	sub.LastStatsRefreshAt = &recent
	router := newSubmissionRouter(newFakeSubmissionRepo(sub))

	w := doRequest(router, http.MethodPost, "/api/v1/submissions/1/actions/refresh-stats")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429, body = %s", w.Code, w.Body.String())
	}
}

func TestDeleteSubmissionHides(t *testing.T) {
	repo := newFakeSubmissionRepo(sampleSubmission(1))
	router := newSubmissionRouter(repo)

	w := doRequest(router, http.MethodDelete, "/api/v1/submissions/1")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}

	sub, _ := repo.GetByID(context.Background(), 1)
	if !sub.Hidden {
		t.Error("submission not hidden after delete")
	}
}
