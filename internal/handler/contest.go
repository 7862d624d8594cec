package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clipcontest/submission-review-go/internal/db"
	"github.com/clipcontest/submission-review-go/internal/repository"
)

// ContestHandler serves the static contest configuration.
type ContestHandler struct {
	contests repository.ContestRepository
}

// NewContestHandler creates a new ContestHandler instance.
func NewContestHandler(contests repository.ContestRepository) *ContestHandler {
	return &ContestHandler{contests: contests}
}

// List handles GET /api/v1/contests.
func (h *ContestHandler) List(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	offset := 0
	if v := c.Query("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			badRequest(c, "offset must be a non-negative integer")
			return
		}
		offset = parsed
	}

	contests, err := h.contests.List(c.Request.Context(), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"contests": contests,
		"count":    len(contests),
	})
}

// Get handles GET /api/v1/contests/:id, returning the contest with its
// categories and prize ladder.
func (h *ContestHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "contest id must be a positive integer")
		return
	}

	contest, err := h.contests.GetByID(c.Request.Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			writeError(c, http.StatusNotFound, "Not Found", "contest not found")
			return
		}
		handleError(c, err)
		return
	}

	categories, err := h.contests.Categories(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	prizes, err := h.contests.Prizes(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contest":    contest,
		"categories": categories,
		"prizes":     prizes,
	})
}
