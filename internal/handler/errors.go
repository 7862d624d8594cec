// Package handler contains the gin HTTP handlers for the review API.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clipcontest/submission-review-go/internal/models"
	"github.com/clipcontest/submission-review-go/internal/service"
	"github.com/clipcontest/submission-review-go/pkg/logger"
)

// handleError maps typed service errors to HTTP responses.
func handleError(c *gin.Context, err error) {
	switch err.(type) {
	case *service.ValidationError:
		logger.Log.Warn("Validation error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		writeError(c, http.StatusBadRequest, "Bad Request", err.Error())
	case *service.NotFoundError:
		writeError(c, http.StatusNotFound, "Not Found", err.Error())
	case *service.ConflictError:
		logger.Log.Warn("Conflicting action",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		writeError(c, http.StatusConflict, "Conflict", err.Error())
	case *service.RateLimitError:
		writeError(c, http.StatusTooManyRequests, "Too Many Requests", err.Error())
	case *service.ProcessingError:
		logger.Log.Error("Processing error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		writeError(c, http.StatusInternalServerError, "Internal Server Error", "Failed to process request")
	default:
		logger.Log.Error("Unexpected error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		writeError(c, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred")
	}
}

func writeError(c *gin.Context, status int, errName, message string) {
	c.JSON(status, models.ErrorResponse{
		Status:    status,
		Error:     errName,
		Message:   message,
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
}

func badRequest(c *gin.Context, message string) {
	writeError(c, http.StatusBadRequest, "Bad Request", message)
}
