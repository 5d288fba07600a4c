package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invodex/internal/pipeline"
	"invodex/internal/port"
	"invodex/mocks"
)

func fp(f float64) *float64 { return &f }

func processRouter(t *testing.T, repo port.DocumentRepository) (*gin.Engine, *mocks.MockDocumentAnalyzer, *mocks.MockFileDiscovery, *mocks.MockByteReader, *mocks.MockFileLifecycle) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	analyzer := new(mocks.MockDocumentAnalyzer)
	discover := new(mocks.MockFileDiscovery)
	reader := new(mocks.MockByteReader)
	lifecycle := new(mocks.MockFileLifecycle)
	runner := pipeline.NewRunner(analyzer, nil, discover, reader, lifecycle, "he-IL")

	r := gin.New()
	h := NewProcessHandler(runner, repo)
	r.POST("/process", h.Process)
	r.POST("/process/llm", h.ProcessLLM)
	return r, analyzer, discover, reader, lifecycle
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProcessMissingPath(t *testing.T) {
	r, _, _, _, _ := processRouter(t, nil)
	w := postJSON(r, "/process", gin.H{"recursive": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "INVALID_REQUEST", resp.Error.Code)
}

func TestProcessMalformedBody(t *testing.T) {
	r, _, _, _, _ := processRouter(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/process", bytes.NewReader([]byte("{")))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcessHappyPath(t *testing.T) {
	repo := new(mocks.MockDocumentRepository)
	repo.On("UpsertBatch", mock.Anything, mock.Anything).Return(nil)

	r, analyzer, discover, reader, lifecycle := processRouter(t, repo)
	uri := "file:///inbox/a.pdf"
	discover.On("Discover", mock.Anything, "/inbox", false).Return([]string{uri}, nil)
	reader.On("ReadBytes", mock.Anything, uri).Return(&port.FileContent{
		Data: []byte("pdf"), ContentType: "application/pdf", FileName: "a.pdf", SourceURI: uri,
	}, nil)
	analyzer.On("Analyze", mock.Anything, mock.Anything).Return(&port.AnalyzeResult{
		Documents: []port.AnalyzedDocument{{
			Confidence: fp(0.9),
			Fields: map[string]port.Field{
				"InvoiceId": {ValueString: "INV-1"},
			},
		}},
	}, nil)
	lifecycle.On("MarkProcessed", mock.Anything, uri).Return("file:///inbox/processed/a.pdf", true, nil)

	w := postJSON(r, "/process", gin.H{"path": "/inbox"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool               `json:"success"`
		Data    pipeline.RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Data.TotalFiles)
	assert.Equal(t, 1, resp.Data.FilesHandled)
	require.Len(t, resp.Data.Results, 1)
	assert.Equal(t, "a.pdf", resp.Data.Results[0].FileName)
	repo.AssertCalled(t, "UpsertBatch", mock.Anything, mock.Anything)
}

func TestProcessPersistFailureStillReturnsResults(t *testing.T) {
	repo := new(mocks.MockDocumentRepository)
	repo.On("UpsertBatch", mock.Anything, mock.Anything).Return(assertableError{})

	r, _, discover, reader, _ := processRouter(t, repo)
	uri := "file:///inbox/a.pdf"
	discover.On("Discover", mock.Anything, "/inbox", false).Return([]string{uri}, nil)
	reader.On("ReadBytes", mock.Anything, uri).Return(nil, assertableError{})

	w := postJSON(r, "/process", gin.H{"path": "/inbox"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProcessLLMWithoutExtractor(t *testing.T) {
	r, _, discover, _, _ := processRouter(t, nil)
	discover.On("Discover", mock.Anything, "/inbox", false).Return([]string{}, nil)

	w := postJSON(r, "/process/llm", gin.H{"path": "/inbox"})
	// The runner was wired without an extractor, so hybrid mode is rejected.
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

type assertableError struct{}

func (assertableError) Error() string { return "boom" }
