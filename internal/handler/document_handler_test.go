package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invodex/internal/domain"
	"invodex/mocks"
)

func documentRouter(repo *mocks.MockDocumentRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewDocumentHandler(repo)
	r.GET("/documents", h.GetBySource)
	r.GET("/documents/needs-review", h.ListNeedsReview)
	r.GET("/documents/needs-review/export", h.ExportNeedsReview)
	return r
}

func TestGetBySourceMissingParam(t *testing.T) {
	r := documentRouter(new(mocks.MockDocumentRepository))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/documents", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBySourceNotFound(t *testing.T) {
	repo := new(mocks.MockDocumentRepository)
	repo.On("GetBySourceURI", mock.Anything, "file:///gone.pdf").
		Return(nil, domain.ErrDocumentNotFound)

	r := documentRouter(repo)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/documents?source_uri=file%3A%2F%2F%2Fgone.pdf", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetBySourceFound(t *testing.T) {
	doc := &domain.Document{FileName: "a.pdf", SourceURI: "file:///a.pdf", DocumentType: domain.DocumentTypeInvoice}
	repo := new(mocks.MockDocumentRepository)
	repo.On("GetBySourceURI", mock.Anything, "file:///a.pdf").Return(doc, nil)

	r := documentRouter(repo)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/documents?source_uri=file%3A%2F%2F%2Fa.pdf", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool            `json:"success"`
		Data    domain.Document `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "a.pdf", resp.Data.FileName)
}

func TestListNeedsReview(t *testing.T) {
	repo := new(mocks.MockDocumentRepository)
	repo.On("ListNeedsReview", mock.Anything, 5).Return([]domain.Document{
		{FileName: "flagged.pdf", NeedsReview: true},
	}, nil)

	r := documentRouter(repo)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/documents/needs-review?limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []domain.Document `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.True(t, resp.Data[0].NeedsReview)
}

func TestListNeedsReviewInvalidLimit(t *testing.T) {
	r := documentRouter(new(mocks.MockDocumentRepository))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/documents/needs-review?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportNeedsReview(t *testing.T) {
	repo := new(mocks.MockDocumentRepository)
	repo.On("ListNeedsReview", mock.Anything, 1000).Return([]domain.Document{
		{FileName: "flagged.pdf", NeedsReview: true},
	}, nil)

	r := documentRouter(repo)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/documents/needs-review/export", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "needs_review.xlsx")
	assert.NotEmpty(t, w.Body.Bytes())
}
