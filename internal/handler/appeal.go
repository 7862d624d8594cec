package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clipcontest/submission-review-go/internal/models"
	"github.com/clipcontest/submission-review-go/internal/service"
)

// AppealHandler handles check-appeal requests.
type AppealHandler struct {
	reviews *service.ReviewService
}

// NewAppealHandler creates a new AppealHandler instance.
func NewAppealHandler(reviews *service.ReviewService) *AppealHandler {
	return &AppealHandler{reviews: reviews}
}

// Submit handles POST /api/v1/submissions/:id/appeals.
func (h *AppealHandler) Submit(c *gin.Context) {
	submissionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || submissionID <= 0 {
		badRequest(c, "submission id must be a positive integer")
		return
	}

	var dto models.AppealRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	appeal, err := h.reviews.SubmitAppeal(c.Request.Context(), submissionID, &dto)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appeal)
}

// List handles GET /api/v1/appeals.
func (h *AppealHandler) List(c *gin.Context) {
	var status models.AppealStatus
	if v := c.Query("status"); v != "" {
		status = models.AppealStatus(v)
		switch status {
		case models.AppealPending, models.AppealApproved, models.AppealDenied:
		default:
			badRequest(c, "status must be one of pending, approved, denied")
			return
		}
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	appeals, err := h.reviews.ListAppeals(c.Request.Context(), status, limit)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"appeals": appeals,
		"count":   len(appeals),
	})
}

// Resolve handles POST /api/v1/appeals/:id/resolve.
func (h *AppealHandler) Resolve(c *gin.Context) {
	appealID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "appeal id must be a UUID")
		return
	}

	var dto models.ResolveAppealDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	appeal, err := h.reviews.ResolveAppeal(c.Request.Context(), appealID, &dto)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, appeal)
}
