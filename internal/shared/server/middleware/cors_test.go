package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func corsRouter(origins ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS(origins))
	router.POST("/api/v1/analyses", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})
	return router
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{name: "preflight allowed", allowed: []string{"http://localhost:5173"}, method: http.MethodOptions, origin: "http://localhost:5173", wantStatus: http.StatusNoContent, wantOrigin: "http://localhost:5173"},
		{name: "post allowed", allowed: []string{"http://localhost:5173/"}, method: http.MethodPost, origin: "http://localhost:5173", wantStatus: http.StatusCreated, wantOrigin: "http://localhost:5173"},
		{name: "unknown origin", allowed: []string{"http://localhost:5173"}, method: http.MethodPost, origin: "http://evil.example", wantStatus: http.StatusCreated},
		{name: "wildcard", allowed: []string{"*"}, method: http.MethodPost, origin: "http://any.example", wantStatus: http.StatusCreated, wantOrigin: "http://any.example"},
		{name: "preflight unknown origin", allowed: nil, method: http.MethodOptions, origin: "http://evil.example", wantStatus: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/analyses", nil)
			req.Header.Set("Origin", tt.origin)
			resp := httptest.NewRecorder()
			corsRouter(tt.allowed...).ServeHTTP(resp, req)

			if resp.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, resp.Code)
			}
			if got := resp.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Fatalf("expected Allow-Origin %q, got %q", tt.wantOrigin, got)
			}
			if tt.wantOrigin != "" && resp.Header().Get("Access-Control-Max-Age") != corsMaxAge {
				t.Fatalf("expected Max-Age header")
			}
			if resp.Header().Get("Vary") != "Origin" {
				t.Fatalf("expected Vary: Origin")
			}
		})
	}
}
