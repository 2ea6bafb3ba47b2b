package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"docanalysis-backend/internal/shared/metrics"
	"docanalysis-backend/internal/shared/server/respond"
	"docanalysis-backend/internal/shared/telemetry"
)

// quietRoutes are counted but not logged; scrapers and probes hit them often.
var quietRoutes = map[string]bool{
	"/api/v1/health":  true,
	"/api/v1/metrics": true,
}

// Logging counts every request and logs one request.complete line per
// non-preflight request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.ObserveRequest(route, strconv.Itoa(status))

		if c.Request.Method == http.MethodOptions || quietRoutes[route] {
			return
		}
		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"route":       route,
			"path":        c.Request.URL.Path,
			"status":      status,
			"bytes":       c.Writer.Size(),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
		}
		if id := c.GetString(respond.DocumentIDKey); id != "" {
			fields["document_id"] = id
		}
		if id := c.GetString(respond.AnalysisIDKey); id != "" {
			fields["analysis_id"] = id
		}
		if status >= http.StatusInternalServerError {
			telemetry.Warn("request.complete", fields)
			return
		}
		telemetry.Info("request.complete", fields)
	}
}
