package overview

import (
	"context"

	"github.com/gin-gonic/gin"

	"docanalysis-backend/internal/analyses"
	"docanalysis-backend/internal/shared/server/respond"
)

// Counter reports how many records exist.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// RecentSource lists the newest analyses.
type RecentSource interface {
	Counter
	Recent(ctx context.Context) ([]analyses.Analysis, error)
}

// Response is the dashboard summary.
type Response struct {
	DocumentsCount int                         `json:"documents_count"`
	AnalysesCount  int                         `json:"analyses_count"`
	RecentAnalyses []analyses.AnalysisResponse `json:"recent_analyses"`
}

// Handler serves the overview.
type Handler struct {
	Documents Counter
	Analyses  RecentSource
}

// NewHandler constructs a Handler.
func NewHandler(docs Counter, analyses RecentSource) *Handler {
	return &Handler{Documents: docs, Analyses: analyses}
}

// RegisterRoutes attaches the overview route.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/overview", h.get)
}

func (h *Handler) get(c *gin.Context) {
	ctx := c.Request.Context()

	docCount, err := h.Documents.Count(ctx)
	if err != nil {
		respond.Internal(c, "failed to count documents", err)
		return
	}
	analysisCount, err := h.Analyses.Count(ctx)
	if err != nil {
		respond.Internal(c, "failed to count analyses", err)
		return
	}
	recent, err := h.Analyses.Recent(ctx)
	if err != nil {
		respond.Internal(c, "failed to list analyses", err)
		return
	}

	items := make([]analyses.AnalysisResponse, 0, len(recent))
	for _, a := range recent {
		items = append(items, analyses.ToResponse(a))
	}
	respond.OK(c, Response{
		DocumentsCount: docCount,
		AnalysesCount:  analysisCount,
		RecentAnalyses: items,
	})
}
