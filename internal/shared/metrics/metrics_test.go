package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestHandlerExposesCollectors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	IncAnalysisStarted()
	IncAnalysisCompleted()
	ObserveAnalysisDuration(1500 * time.Millisecond)
	ObserveLLMAttempt("claude-3-haiku-20240307", true, 200*time.Millisecond)
	ObserveExtraction("application/pdf", false)

	r := gin.New()
	r.GET("/metrics", Handler())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`analyses_total{stage="started"}`,
		`analyses_total{stage="completed"}`,
		"analysis_duration_seconds_bucket",
		`llm_attempts_total{model="claude-3-haiku-20240307",outcome="ok"}`,
		`extractions_total{mime="application/pdf",outcome="error"}`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics output", want)
		}
	}
}
