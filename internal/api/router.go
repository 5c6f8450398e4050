// Package api exposes the director's tick/replay/explain operations
// over HTTP, the way the teacher exposes its workflow engine through a
// gin REST layer under internal/infrastructure/api/rest.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pj4239460/story-graph-assistant/internal/logger"
)

// NewRouter builds the gin engine for the director API. tokens may be
// nil to run unauthenticated (local development / tests).
func NewRouter(h *Handlers, tokens *TokenService, log *logger.Logger, debug bool) *gin.Engine {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(recoveryMiddleware(log))
	router.Use(requestLogger(log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	if tokens != nil {
		router.POST("/auth/token", h.HandleIssueToken(tokens))
	}

	projects := router.Group("/projects")
	projects.Use(RequireAuth(tokens))
	{
		projects.POST("", h.HandleCreateProject)
		projects.GET("/:project_id", h.HandleGetProject)
		projects.GET("/:project_id/lint", h.HandleLintProject)
		projects.POST("/:project_id/replay", h.HandleReplay)
		projects.POST("/:project_id/storylets/:storylet_id/explain", h.HandleExplain)
		projects.POST("/:project_id/threads/:thread_id/tick", h.HandleTick)
		projects.GET("/:project_id/threads/:thread_id/history", h.HandleHistory)
	}

	return router
}
