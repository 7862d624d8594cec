package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clipcontest/submission-review-go/internal/models"
	"github.com/clipcontest/submission-review-go/internal/review"
	"github.com/clipcontest/submission-review-go/internal/service"
)

// SubmissionHandler handles submission list, detail and action requests.
type SubmissionHandler struct {
	reviews *service.ReviewService
}

// NewSubmissionHandler creates a new SubmissionHandler instance.
func NewSubmissionHandler(reviews *service.ReviewService) *SubmissionHandler {
	return &SubmissionHandler{reviews: reviews}
}

// actionFunc is the shared shape of every dispatcher action.
type actionFunc func(c *gin.Context, id int64, actor string) (*service.SubmissionView, error)

// List handles GET /api/v1/submissions.
func (h *SubmissionHandler) List(c *gin.Context) {
	filter := service.ListFilter{}

	if v := c.Query("contest_id"); v != "" {
		contestID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			badRequest(c, "contest_id must be an integer")
			return
		}
		filter.ContestID = contestID
	}
	if v := c.Query("platform"); v != "" {
		filter.Platform = models.Platform(v)
	}
	if v := c.Query("bucket"); v != "" {
		bucket := review.Bucket(v)
		switch bucket {
		case review.BucketPending, review.BucketApproved, review.BucketRejected:
			filter.Bucket = bucket
		default:
			badRequest(c, "bucket must be one of pending, approved, rejected")
			return
		}
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}
	if v := c.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			badRequest(c, "offset must be a non-negative integer")
			return
		}
		filter.Offset = offset
	}

	views, err := h.reviews.List(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": views,
		"count":       len(views),
	})
}

// Get handles GET /api/v1/submissions/:id.
func (h *SubmissionHandler) Get(c *gin.Context) {
	id, ok := h.submissionID(c)
	if !ok {
		return
	}

	view, err := h.reviews.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Action handles POST /api/v1/submissions/:id/actions/:action.
func (h *SubmissionHandler) Action(c *gin.Context) {
	id, ok := h.submissionID(c)
	if !ok {
		return
	}

	fn, ok := h.actionFor(c.Param("action"))
	if !ok {
		badRequest(c, "unknown action: "+c.Param("action"))
		return
	}

	view, err := fn(c, id, actor(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Delete handles DELETE /api/v1/submissions/:id as a soft hide.
func (h *SubmissionHandler) Delete(c *gin.Context) {
	id, ok := h.submissionID(c)
	if !ok {
		return
	}

	if _, err := h.reviews.Hide(c.Request.Context(), id, actor(c)); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SubmissionHandler) actionFor(name string) (actionFunc, bool) {
	switch name {
	case "approve":
		return func(c *gin.Context, id int64, actor string) (*service.SubmissionView, error) {
			return h.reviews.ApproveContent(c.Request.Context(), id, actor)
		}, true
	case "reject":
		return func(c *gin.Context, id int64, actor string) (*service.SubmissionView, error) {
			return h.reviews.RejectContent(c.Request.Context(), id, actor)
		}, true
	case "reset":
		return func(c *gin.Context, id int64, actor string) (*service.SubmissionView, error) {
			return h.reviews.ResetReview(c.Request.Context(), id, actor)
		}, true
	case "approve-hashtag":
		return func(c *gin.Context, id int64, actor string) (*service.SubmissionView, error) {
			return h.reviews.ApproveHashtag(c.Request.Context(), id, actor)
		}, true
	case "approve-description":
		return func(c *gin.Context, id int64, actor string) (*service.SubmissionView, error) {
			return h.reviews.ApproveDescription(c.Request.Context(), id, actor)
		}, true
	case "retry":
		return func(c *gin.Context, id int64, actor string) (*service.SubmissionView, error) {
			return h.reviews.RetryProcessing(c.Request.Context(), id, actor)
		}, true
	case "refresh-stats":
		return func(c *gin.Context, id int64, actor string) (*service.SubmissionView, error) {
			return h.reviews.RefreshStats(c.Request.Context(), id, actor)
		}, true
	case "request-review":
		return func(c *gin.Context, id int64, actor string) (*service.SubmissionView, error) {
			return h.reviews.RequestReview(c.Request.Context(), id, actor)
		}, true
	default:
		return nil, false
	}
}

func (h *SubmissionHandler) submissionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "submission id must be a positive integer")
		return 0, false
	}
	return id, true
}

// actor identifies the admin performing an action, for the audit stream.
func actor(c *gin.Context) string {
	if v := c.GetHeader("X-Admin-ID"); v != "" {
		return v
	}
	return "unknown"
}
