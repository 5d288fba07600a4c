package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"invodex/internal/export"
	"invodex/internal/port"
)

// DocumentHandler serves persisted extraction results.
type DocumentHandler struct {
	repo port.DocumentRepository
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(repo port.DocumentRepository) *DocumentHandler {
	return &DocumentHandler{repo: repo}
}

// GetBySource handles GET /documents?source_uri=...
func (h *DocumentHandler) GetBySource(c *gin.Context) {
	sourceURI := c.Query("source_uri")
	if sourceURI == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_SOURCE_URI", "source_uri query parameter is required")
		return
	}

	doc, err := h.repo.GetBySourceURI(c.Request.Context(), sourceURI)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, doc)
}

// ListNeedsReview handles GET /documents/needs-review
func (h *DocumentHandler) ListNeedsReview(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			RespondError(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return
		}
		limit = n
	}

	docs, err := h.repo.ListNeedsReview(c.Request.Context(), limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, docs)
}

// ExportNeedsReview handles GET /documents/needs-review/export and streams an
// XLSX workbook of flagged documents.
func (h *DocumentHandler) ExportNeedsReview(c *gin.Context) {
	docs, err := h.repo.ListNeedsReview(c.Request.Context(), 1000)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, docs); err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="needs_review.xlsx"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
