package middleware

import (
	"fmt"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"docanalysis-backend/internal/shared/server/respond"
	"docanalysis-backend/internal/shared/telemetry"
)

// Recovery turns handler panics into a 500 envelope and a structured log
// line. gin's own panic output is discarded.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		telemetry.Error("http.panic", map[string]any{
			"request_id": RequestIDFromContext(c),
			"route":      c.FullPath(),
			"method":     c.Request.Method,
			"panic":      fmt.Sprint(rec),
			"stack":      string(debug.Stack()),
		})
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "Unexpected server error", nil)
	})
}
