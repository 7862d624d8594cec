// Package service provides business logic for submission review.
package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clipcontest/submission-review-go/internal/db"
	"github.com/clipcontest/submission-review-go/internal/metrics"
	"github.com/clipcontest/submission-review-go/internal/models"
	"github.com/clipcontest/submission-review-go/internal/repository"
	"github.com/clipcontest/submission-review-go/internal/review"
	"github.com/clipcontest/submission-review-go/pkg/logger"
)

// Review action names, used in events and metrics labels.
const (
	ActionApproveContent     = "approve_content"
	ActionRejectContent      = "reject_content"
	ActionResetReview        = "reset_review"
	ActionApproveHashtag     = "approve_hashtag"
	ActionApproveDescription = "approve_description"
	ActionRetryProcessing    = "retry_processing"
	ActionRefreshStats       = "refresh_stats"
	ActionRequestReview      = "request_review"
	ActionHide               = "hide"
	ActionResolveAppeal      = "resolve_appeal"
)

// SubmissionView is a submission together with every piece of state the
// dashboard derives from it. Derivation happens exactly once, here, so
// all views agree.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type SubmissionView struct {
	*models.Submission
	Bucket             review.Bucket           `json:"bucket"`
	Badges             map[string]review.Badge `json:"badges"`
	Stuck              bool                    `json:"stuck"`
	Failed             bool                    `json:"failed"`
	ActivelyProcessing bool                    `json:"actively_processing"`
	CanRefreshStats    bool                    `json:"can_refresh_stats"`
}

// ListFilter narrows submission list queries, including by derived bucket.
type ListFilter struct {
	ContestID int64
	Platform  models.Platform
	Bucket    review.Bucket
	Limit     int
	Offset    int
}

// ReviewService dispatches review actions against submissions. It is the
// only mutation path: every action is guarded per submission id, applied,
// then verified by re-reading the authoritative record.
type ReviewService struct {
	subs      repository.SubmissionRepository
	appeals   repository.AppealRepository
	publisher EventPublisher
	log       *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	inFlight map[int64]bool
}

// NewReviewService creates a ReviewService. publisher may be nil, in
// which case status events are not emitted.
func NewReviewService(subs repository.SubmissionRepository, appeals repository.AppealRepository, publisher EventPublisher) *ReviewService {
	return &ReviewService{
		subs:      subs,
		appeals:   appeals,
		publisher: publisher,
		log:       logger.Named("review"),
		now:       time.Now,
		inFlight:  make(map[int64]bool),
	}
}

// view derives the full dashboard projection for a submission.
func (s *ReviewService) view(sub *models.Submission) *SubmissionView {
	now := s.now()
	return &SubmissionView{
		Submission: sub,
		Bucket:     review.Classify(sub),
		Badges: map[string]review.Badge{
			"processing":  review.BadgeFor(string(sub.ProcessingStatus), review.CategoryProcessing),
			"hashtag":     review.BadgeFor(string(sub.HashtagStatus), review.CategoryCheck),
			"description": review.BadgeFor(string(sub.DescriptionStatus), review.CategoryCheck),
			"review":      review.BadgeFor(string(sub.ContentReviewStatus), review.CategoryReview),
			"ownership":   review.BadgeFor(string(sub.OwnershipStatus), review.CategoryOwnership),
		},
		Stuck:              review.IsStuck(sub, now),
		Failed:             review.HasFailed(sub, now),
		ActivelyProcessing: review.IsActivelyProcessing(sub, now),
		CanRefreshStats:    review.CanRefreshStats(sub, now),
	}
}

// Get returns the derived view of a single submission.
func (s *ReviewService) Get(ctx context.Context, id int64) (*SubmissionView, error) {
	sub, err := s.subs.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, "submission", strconv.FormatInt(id, 10))
	}
	return s.view(sub), nil
}

// List returns derived views matching the filter. Bucket filtering runs
// through the classifier so it cannot drift from single-record views.
func (s *ReviewService) List(ctx context.Context, filter ListFilter) ([]*SubmissionView, error) {
	subs, err := s.subs.List(ctx, repository.SubmissionFilter{
		ContestID: filter.ContestID,
		Platform:  filter.Platform,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	})
	if err != nil {
		return nil, &ProcessingError{Message: "list submissions", Cause: err}
	}

	views := make([]*SubmissionView, 0, len(subs))
	for _, sub := range subs {
		v := s.view(sub)
		if filter.Bucket != "" && v.Bucket != filter.Bucket {
			continue
		}
		views = append(views, v)
	}
	return views, nil
}

// begin marks an action in flight for a submission id. It returns false
// if one already is; the caller must treat that as a no-op.
func (s *ReviewService) begin(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[id] {
		return false
	}
	s.inFlight[id] = true
	return true
}

func (s *ReviewService) end(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
}

// dispatch runs a guarded mutate-then-verify cycle for one action. The
// mutation's own return value is advisory; the record handed back to the
// caller always comes from a fresh read of the authoritative row.
func (s *ReviewService) dispatch(ctx context.Context, id int64, action, actor string, mutate func(context.Context) error) (*SubmissionView, error) {
	if !s.begin(id) {
		metrics.ActionsTotal.WithLabelValues(action, "conflict").Inc()
		return nil, &ConflictError{SubmissionID: id}
	}
	defer s.end(id)

	if err := mutate(ctx); err != nil {
		metrics.ActionsTotal.WithLabelValues(action, "error").Inc()
		return nil, s.mapRepoError(err, "submission", strconv.FormatInt(id, 10))
	}

	sub, err := s.subs.GetByID(ctx, id)
	if err != nil {
		metrics.ActionsTotal.WithLabelValues(action, "error").Inc()
		return nil, s.mapRepoError(err, "submission", strconv.FormatInt(id, 10))
	}

	v := s.view(sub)
	metrics.ActionsTotal.WithLabelValues(action, "success").Inc()

	if s.publisher != nil {
		event := &StatusEvent{
			SubmissionID: sub.ID,
			ContestID:    sub.ContestID,
			Action:       action,
			Bucket:       string(v.Bucket),
			Actor:        actor,
			OccurredAt:   s.now(),
		}
		if err := s.publisher.PublishStatusEvent(ctx, event); err != nil {
			// Audit stream is best-effort; the action already succeeded.
			s.log.Warn("failed to publish status event",
				zap.Int64("submission_id", sub.ID),
				zap.String("action", action),
				zap.Error(err),
			)
		}
	}

	return v, nil
}

func (s *ReviewService) mapRepoError(err error, resource, id string) error {
	if db.IsNotFound(err) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	if _, ok := err.(*ValidationError); ok {
		return err
	}
	if _, ok := err.(*RateLimitError); ok {
		return err
	}
	return &ProcessingError{Message: "dispatch failed", Cause: err}
}

func statusPtr[T ~string](v T) *T { return &v }

// ApproveContent marks the content review approved.
func (s *ReviewService) ApproveContent(ctx context.Context, id int64, actor string) (*SubmissionView, error) {
	return s.dispatch(ctx, id, ActionApproveContent, actor, func(ctx context.Context) error {
		_, err := s.subs.UpdateStatus(ctx, id, repository.StatusPatch{
			ContentReviewStatus: statusPtr(models.ContentReviewApproved),
		})
		return err
	})
}

// RejectContent marks the content review rejected.
func (s *ReviewService) RejectContent(ctx context.Context, id int64, actor string) (*SubmissionView, error) {
	return s.dispatch(ctx, id, ActionRejectContent, actor, func(ctx context.Context) error {
		_, err := s.subs.UpdateStatus(ctx, id, repository.StatusPatch{
			ContentReviewStatus: statusPtr(models.ContentReviewRejected),
		})
		return err
	})
}

// ResetReview puts the content review back to pending.
func (s *ReviewService) ResetReview(ctx context.Context, id int64, actor string) (*SubmissionView, error) {
	return s.dispatch(ctx, id, ActionResetReview, actor, func(ctx context.Context) error {
		_, err := s.subs.UpdateStatus(ctx, id, repository.StatusPatch{
			ContentReviewStatus: statusPtr(models.ContentReviewPending),
		})
		return err
	})
}

// ApproveHashtag overrides a failed hashtag check.
func (s *ReviewService) ApproveHashtag(ctx context.Context, id int64, actor string) (*SubmissionView, error) {
	return s.dispatch(ctx, id, ActionApproveHashtag, actor, func(ctx context.Context) error {
		_, err := s.subs.UpdateStatus(ctx, id, repository.StatusPatch{
			HashtagStatus: statusPtr(models.CheckApprovedManual),
		})
		return err
	})
}

// ApproveDescription overrides a failed description check.
func (s *ReviewService) ApproveDescription(ctx context.Context, id int64, actor string) (*SubmissionView, error) {
	return s.dispatch(ctx, id, ActionApproveDescription, actor, func(ctx context.Context) error {
		_, err := s.subs.UpdateStatus(ctx, id, repository.StatusPatch{
			DescriptionStatus: statusPtr(models.CheckApprovedManual),
		})
		return err
	})
}

// RetryProcessing sends a stuck or failed submission back to the start
// of the pipeline and clears the invalid-stats flag.
func (s *ReviewService) RetryProcessing(ctx context.Context, id int64, actor string) (*SubmissionView, error) {
	return s.dispatch(ctx, id, ActionRetryProcessing, actor, func(ctx context.Context) error {
		invalid := false
		_, err := s.subs.UpdateStatus(ctx, id, repository.StatusPatch{
			ProcessingStatus: statusPtr(models.ProcessingUploaded),
			InvalidStats:     &invalid,
		})
		return err
	})
}

// RefreshStats requests a fresh provider stats fetch, rate-limited to
// once per 24h per submission. The window is checked against the current
// authoritative row, not whatever the caller last saw.
func (s *ReviewService) RefreshStats(ctx context.Context, id int64, actor string) (*SubmissionView, error) {
	return s.dispatch(ctx, id, ActionRefreshStats, actor, func(ctx context.Context) error {
		sub, err := s.subs.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !review.CanRefreshStats(sub, s.now()) {
			return &RateLimitError{Message: "stats were refreshed less than 24h ago"}
		}
		refreshedAt := s.now()
		_, err = s.subs.UpdateStatus(ctx, id, repository.StatusPatch{
			ProcessingStatus:   statusPtr(models.ProcessingFetchingStats),
			LastStatsRefreshAt: &refreshedAt,
		})
		return err
	})
}

// RequestReview moves a submission to the human review queue.
func (s *ReviewService) RequestReview(ctx context.Context, id int64, actor string) (*SubmissionView, error) {
	return s.dispatch(ctx, id, ActionRequestReview, actor, func(ctx context.Context) error {
		_, err := s.subs.UpdateStatus(ctx, id, repository.StatusPatch{
			ProcessingStatus: statusPtr(models.ProcessingWaitingReview),
		})
		return err
	})
}

// Hide soft-deletes a submission from all dashboard views.
func (s *ReviewService) Hide(ctx context.Context, id int64, actor string) (*SubmissionView, error) {
	return s.dispatch(ctx, id, ActionHide, actor, func(ctx context.Context) error {
		hidden := true
		_, err := s.subs.UpdateStatus(ctx, id, repository.StatusPatch{
			Hidden: &hidden,
		})
		return err
	})
}

// SubmitAppeal files an appeal against a failed automated check.
func (s *ReviewService) SubmitAppeal(ctx context.Context, submissionID int64, dto *models.AppealRequestDTO) (*models.Appeal, error) {
	sub, err := s.subs.GetByID(ctx, submissionID)
	if err != nil {
		return nil, s.mapRepoError(err, "submission", strconv.FormatInt(submissionID, 10))
	}

	var checkStatus models.CheckStatus
	switch dto.AppealType {
	case models.AppealHashtag:
		checkStatus = sub.HashtagStatus
	case models.AppealDescription:
		checkStatus = sub.DescriptionStatus
	default:
		return nil, &ValidationError{Message: "unknown appeal type"}
	}

	if checkStatus != models.CheckFail {
		return nil, &ValidationError{Message: "only failed checks can be appealed"}
	}

	pending, err := s.appeals.HasPending(ctx, submissionID, dto.AppealType)
	if err != nil {
		return nil, &ProcessingError{Message: "check pending appeals", Cause: err}
	}
	if pending {
		return nil, &ValidationError{Message: "an appeal for this check is already pending"}
	}

	appeal := &models.Appeal{
		ID:           uuid.New(),
		SubmissionID: submissionID,
		AppealType:   dto.AppealType,
		Reason:       dto.Reason,
		Status:       models.AppealPending,
	}
	if err := s.appeals.Create(ctx, appeal); err != nil {
		return nil, &ProcessingError{Message: "create appeal", Cause: err}
	}

	s.log.Info("appeal submitted",
		zap.Int64("submission_id", submissionID),
		zap.String("appeal_type", string(dto.AppealType)),
	)
	return appeal, nil
}

// ListAppeals returns appeals, optionally filtered by status.
func (s *ReviewService) ListAppeals(ctx context.Context, status models.AppealStatus, limit int) ([]*models.Appeal, error) {
	if limit <= 0 {
		limit = 50
	}
	appeals, err := s.appeals.List(ctx, status, limit)
	if err != nil {
		return nil, &ProcessingError{Message: "list appeals", Cause: err}
	}
	return appeals, nil
}

// ResolveAppeal records the decision on a pending appeal. Approving an
// appeal also flips the contested check to approved_manual, through the
// same guarded dispatch path as a direct manual approval.
func (s *ReviewService) ResolveAppeal(ctx context.Context, appealID uuid.UUID, dto *models.ResolveAppealDTO) (*models.Appeal, error) {
	status := models.AppealDenied
	if dto.Approve {
		status = models.AppealApproved
	}

	appeal, err := s.appeals.Resolve(ctx, appealID, status, dto.AdminResponse, dto.ReviewerID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, &NotFoundError{Resource: "pending appeal", ID: appealID.String()}
		}
		return nil, &ProcessingError{Message: "resolve appeal", Cause: err}
	}

	if dto.Approve {
		var actionErr error
		switch appeal.AppealType {
		case models.AppealHashtag:
			_, actionErr = s.ApproveHashtag(ctx, appeal.SubmissionID, dto.ReviewerID)
		case models.AppealDescription:
			_, actionErr = s.ApproveDescription(ctx, appeal.SubmissionID, dto.ReviewerID)
		}
		if actionErr != nil {
			// The appeal decision is recorded either way; surface the
			// follow-up failure so the admin retries the override.
			return nil, &ProcessingError{Message: "appeal approved but check override failed", Cause: actionErr}
		}
	}

	metrics.ActionsTotal.WithLabelValues(ActionResolveAppeal, "success").Inc()
	return appeal, nil
}
