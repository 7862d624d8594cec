package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clipcontest/submission-review-go/internal/middleware"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Submissions *SubmissionHandler
	Appeals     *AppealHandler
	Contests    *ContestHandler
	Webhook     *WebhookHandler
	Health      *HealthHandler
	Auth        *middleware.APIKeyAuth
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", deps.Health.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Webhook is authenticated by its own secret header, not API keys.
	router.POST("/webhook/snapshots", deps.Webhook.HandleSnapshotReady)

	api := router.Group("/api/v1")
	api.Use(deps.Auth.Handler())
	{
		api.GET("/submissions", deps.Submissions.List)
		api.GET("/submissions/:id", deps.Submissions.Get)
		api.POST("/submissions/:id/actions/:action", deps.Submissions.Action)
		api.DELETE("/submissions/:id", deps.Submissions.Delete)

		api.POST("/submissions/:id/appeals", deps.Appeals.Submit)
		api.GET("/appeals", deps.Appeals.List)
		api.POST("/appeals/:id/resolve", deps.Appeals.Resolve)

		api.GET("/contests", deps.Contests.List)
		api.GET("/contests/:id", deps.Contests.Get)
	}

	return router
}
