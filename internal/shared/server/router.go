package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docanalysis-backend/internal/analyses"
	"docanalysis-backend/internal/documents"
	"docanalysis-backend/internal/overview"
	"docanalysis-backend/internal/services/health"
	"docanalysis-backend/internal/shared/config"
	"docanalysis-backend/internal/shared/metrics"
	"docanalysis-backend/internal/shared/server/middleware"
	"docanalysis-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers mounted under /api/v1.
type RouterDeps struct {
	Config          config.Config
	DocumentHandler *documents.Handler
	AnalysisHandler *analyses.Handler
	OverviewHandler *overview.Handler
	Health          *health.Service
	// RunLimiter throttles routes that call a model; nil disables it.
	RunLimiter *middleware.IPRateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	api := r.Group("/api/v1")
	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	api.GET("/health", func(c *gin.Context) {
		report := healthSvc.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
	api.GET("/metrics", metrics.Handler())

	var runLimit gin.HandlerFunc
	if deps.RunLimiter != nil {
		runLimit = middleware.RateLimit(deps.RunLimiter)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api, runLimit)
	}
	if deps.OverviewHandler != nil {
		deps.OverviewHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
