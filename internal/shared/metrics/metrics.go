package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analyses_total",
		Help: "Analyses by lifecycle stage (started, completed, failed)",
	}, []string{"stage"})

	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "analysis_duration_seconds",
		Help:    "Wall time of one analysis run, extraction through completion",
		Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 30, 60, 120},
	})

	llmAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_attempts_total",
		Help: "Model calls by model and outcome",
	}, []string{"model", "outcome"})

	llmLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "llm_latency_seconds",
		Help:    "Latency of model calls",
		Buckets: []float64{.25, .5, 1, 2, 5, 10, 30, 60},
	}, []string{"model"})

	extractions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "extractions_total",
		Help: "Text extractions by MIME type and outcome",
	}, []string{"mime", "outcome"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of requests labelled by route and status",
	}, []string{"route", "status"})
)

// IncAnalysisStarted increments the started counter.
func IncAnalysisStarted() {
	analysesTotal.WithLabelValues("started").Inc()
}

// IncAnalysisCompleted increments the completed counter.
func IncAnalysisCompleted() {
	analysesTotal.WithLabelValues("completed").Inc()
}

// IncAnalysisFailed increments the failed counter.
func IncAnalysisFailed() {
	analysesTotal.WithLabelValues("failed").Inc()
}

// ObserveAnalysisDuration records how long a run took.
func ObserveAnalysisDuration(d time.Duration) {
	analysisDuration.Observe(d.Seconds())
}

// ObserveLLMAttempt records one model call.
func ObserveLLMAttempt(model string, ok bool, d time.Duration) {
	outcome := "error"
	if ok {
		outcome = "ok"
	}
	llmAttempts.WithLabelValues(model, outcome).Inc()
	llmLatency.WithLabelValues(model).Observe(d.Seconds())
}

// ObserveExtraction records one extraction result.
func ObserveExtraction(mime string, ok bool) {
	outcome := "error"
	if ok {
		outcome = "ok"
	}
	if mime == "" {
		mime = "unknown"
	}
	extractions.WithLabelValues(mime, outcome).Inc()
}

// ObserveRequest counts one HTTP response.
func ObserveRequest(route, status string) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(route, status).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
