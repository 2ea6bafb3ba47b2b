package documents

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"docanalysis-backend/internal/shared/server/respond"
	"docanalysis-backend/internal/shared/storage/object"
	"docanalysis-backend/internal/shared/telemetry"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.GET("/documents/:id/file", h.download)
	rg.DELETE("/documents/:id", h.delete)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, respond.CodeTooLarge, "file exceeds 10MB limit", nil)
			return
		}
		respond.Invalid(c, "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Invalid(c, "unable to read file", nil)
		return
	}
	defer file.Close()

	doc, err := h.Svc.Upload(c.Request.Context(), fileHeader.Filename, c.PostForm("name"), file)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Invalid(c, err.Error(), nil)
		default:
			respond.Internal(c, "failed to upload document", err)
		}
		return
	}

	c.Set(respond.DocumentIDKey, doc.ID)
	respond.Created(c, ToResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	limit, offset, ok := Pagination(c)
	if !ok {
		return
	}

	docs, total, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Internal(c, "failed to list documents", err)
		return
	}

	items := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		items = append(items, ToResponse(doc))
	}
	respond.OK(c, ListResponse{Items: items, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) get(c *gin.Context) {
	doc, ok := h.load(c)
	if !ok {
		return
	}
	respond.OK(c, ToResponse(doc))
}

func (h *Handler) download(c *gin.Context) {
	doc, ok := h.load(c)
	if !ok {
		return
	}
	rc, err := h.Svc.Open(c.Request.Context(), doc)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			respond.NotFound(c, "document file not found")
			return
		}
		respond.Internal(c, "failed to open document", err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", "attachment; filename=\""+strings.ReplaceAll(doc.FileName, "\"", "")+"\"")
	c.Header("Content-Type", doc.FileType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		telemetry.Error("document.download_failed", map[string]any{"document_id": doc.ID, "err": err})
	}
}

func (h *Handler) delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	c.Set(respond.DocumentIDKey, id)

	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.NotFound(c, "document not found")
			return
		}
		respond.Internal(c, "failed to delete document", err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) load(c *gin.Context) (Document, bool) {
	id := strings.TrimSpace(c.Param("id"))
	c.Set(respond.DocumentIDKey, id)

	doc, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.NotFound(c, "document not found")
			return Document{}, false
		}
		respond.Internal(c, "failed to fetch document", err)
		return Document{}, false
	}
	return doc, true
}

// Pagination reads limit/offset query params, writing a 400 on bad input.
func Pagination(c *gin.Context) (limit, offset int, ok bool) {
	limit = DefaultPageSize
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			respond.Invalid(c, "limit must be a positive integer", nil)
			return 0, 0, false
		}
		limit = parsed
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if v := c.Query("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			respond.Invalid(c, "offset must be a non-negative integer", nil)
			return 0, 0, false
		}
		offset = parsed
	}
	return limit, offset, true
}
