package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docanalysis-backend/internal/shared/telemetry"
)

// Error codes returned in the envelope.
const (
	CodeValidation  = "validation_error"
	CodeNotFound    = "not_found"
	CodeTooLarge    = "file_too_large"
	CodeRateLimited = "rate_limited"
	CodeInternal    = "internal_error"
)

// Gin context keys handlers set so error and request logs can be correlated.
const (
	RequestIDKey  = "requestId"
	DocumentIDKey = "documentId"
	AnalysisIDKey = "analysisId"
)

// ErrorBody is the payload under "error".
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error logs and aborts with the error envelope. 5xx responses log at error
// level, everything else at warn.
func Error(c *gin.Context, status int, code, message string, details any) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"route":      c.FullPath(),
		"method":     c.Request.Method,
		"request_id": c.GetString(RequestIDKey),
	}
	for key, field := range map[string]string{AnalysisIDKey: "analysis_id", DocumentIDKey: "document_id"} {
		if id := c.GetString(key); id != "" {
			fields[field] = id
		}
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{Code: code, Message: message, Details: details},
	})
}

// Invalid responds 400 with a validation error.
func Invalid(c *gin.Context, message string, details any) {
	Error(c, http.StatusBadRequest, CodeValidation, message, details)
}

// NotFound responds 404.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, CodeNotFound, message, nil)
}

// Internal responds 500 and records the underlying cause in the log only.
func Internal(c *gin.Context, message string, err error) {
	if err != nil {
		telemetry.Error("http.internal_cause", map[string]any{
			"request_id": c.GetString(RequestIDKey),
			"route":      c.FullPath(),
			"err":        err.Error(),
		})
	}
	Error(c, http.StatusInternalServerError, CodeInternal, message, nil)
}
