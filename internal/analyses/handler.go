package analyses

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docanalysis-backend/internal/documents"
	"docanalysis-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group. Routes that
// call a model are wrapped in runLimit when it is non-nil.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, runLimit gin.HandlerFunc) {
	run := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		if runLimit == nil {
			return []gin.HandlerFunc{handler}
		}
		return []gin.HandlerFunc{runLimit, handler}
	}
	rg.POST("/analyses", run(h.create)...)
	rg.GET("/analyses", h.list)
	rg.GET("/analyses/:id", h.get)
	rg.DELETE("/analyses/:id", h.delete)
	rg.POST("/analyses/:id/retry", run(h.retry)...)
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Invalid(c, "invalid request body", nil)
		return
	}
	if len(req.DocumentIDs) == 0 {
		respond.Invalid(c, "document_ids must contain at least one id", []map[string]string{
			{"field": "document_ids", "issue": "required"},
		})
		return
	}

	ids := make([]string, 0, len(req.DocumentIDs))
	var invalid []map[string]string
	for _, raw := range req.DocumentIDs {
		parsed, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			invalid = append(invalid, map[string]string{"field": "document_ids", "issue": "invalid_uuid", "value": raw})
			continue
		}
		ids = append(ids, parsed.String())
	}
	if len(invalid) > 0 {
		respond.Invalid(c, "document_ids must be UUIDs", invalid)
		return
	}

	analysis, err := h.Svc.Create(c.Request.Context(), ids, req.CustomPrompt)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Invalid(c, err.Error(), nil)
		default:
			respond.Internal(c, "failed to create analysis", err)
		}
		return
	}

	c.Set(respond.AnalysisIDKey, analysis.ID)
	respond.Created(c, ToResponse(analysis))
}

func (h *Handler) retry(c *gin.Context) {
	analysisID := strings.TrimSpace(c.Param("id"))
	c.Set(respond.AnalysisIDKey, analysisID)

	analysis, err := h.Svc.Retry(c.Request.Context(), analysisID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.NotFound(c, "analysis not found")
		default:
			respond.Internal(c, "failed to retry analysis", err)
		}
		return
	}
	respond.OK(c, ToResponse(analysis))
}

func (h *Handler) get(c *gin.Context) {
	analysisID := strings.TrimSpace(c.Param("id"))
	c.Set(respond.AnalysisIDKey, analysisID)

	analysis, err := h.Svc.Get(c.Request.Context(), analysisID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.NotFound(c, "analysis not found")
		default:
			respond.Internal(c, "failed to fetch analysis", err)
		}
		return
	}
	respond.OK(c, ToResponse(analysis))
}

func (h *Handler) list(c *gin.Context) {
	limit, offset, ok := documents.Pagination(c)
	if !ok {
		return
	}

	items, total, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Internal(c, "failed to list analyses", err)
		return
	}

	resp := make([]AnalysisResponse, 0, len(items))
	for _, a := range items {
		resp = append(resp, ToResponse(a))
	}
	respond.OK(c, ListResponse{Items: resp, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) delete(c *gin.Context) {
	analysisID := strings.TrimSpace(c.Param("id"))
	c.Set(respond.AnalysisIDKey, analysisID)

	if err := h.Svc.Delete(c.Request.Context(), analysisID); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.NotFound(c, "analysis not found")
		default:
			respond.Internal(c, "failed to delete analysis", err)
		}
		return
	}
	respond.NoContent(c)
}
