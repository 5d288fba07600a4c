package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invodex/internal/config"
	"invodex/mocks"
)

func fileRouter(storage *mocks.MockObjectStorage) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := &config.S3Config{Bucket: "intake", PresignExpiry: 3600}
	var h *FileHandler
	if storage != nil {
		h = NewFileHandler(storage, cfg)
	} else {
		h = NewFileHandler(nil, cfg)
	}
	r.GET("/file/view", h.View)
	r.POST("/upload/presigned-url", h.PresignedUpload)
	return r
}

func TestViewMissingPath(t *testing.T) {
	r := fileRouter(nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/file/view", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestViewLocalFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.pdf")
	require.NoError(t, os.WriteFile(file, []byte("%PDF-1.4"), 0o644))

	r := fileRouter(nil)
	w := httptest.NewRecorder()
	target := "/file/view?path=" + url.QueryEscape("file://"+file)
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.4", w.Body.String())
}

func TestViewLocalFileNotFound(t *testing.T) {
	r := fileRouter(nil)
	w := httptest.NewRecorder()
	target := "/file/view?path=" + url.QueryEscape("file:///no/such/a.pdf")
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestViewUnsupportedExtension(t *testing.T) {
	r := fileRouter(nil)
	w := httptest.NewRecorder()
	target := "/file/view?path=" + url.QueryEscape("file:///etc/passwd")
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestViewS3Redirects(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	storage.On("GetPresignedURL", mock.Anything, "bucket", "2025/a.pdf", int64(3600)).
		Return("https://signed.example.com/a.pdf", nil)

	r := fileRouter(storage)
	w := httptest.NewRecorder()
	target := "/file/view?path=" + url.QueryEscape("s3://bucket/2025/a.pdf")
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "https://signed.example.com/a.pdf", w.Header().Get("Location"))
}

func TestViewS3WithoutStorage(t *testing.T) {
	r := fileRouter(nil)
	w := httptest.NewRecorder()
	target := "/file/view?path=" + url.QueryEscape("s3://bucket/a.pdf")
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPresignedUpload(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	storage.On("GetPresignedUploadURL", mock.Anything, "intake",
		mock.MatchedBy(func(key string) bool { return filepath.Base(key) == "inv.pdf" }),
		"application/pdf", int64(3600)).
		Return("https://signed.example.com/put", nil)

	r := fileRouter(storage)
	body, _ := json.Marshal(gin.H{"file_name": "inv.pdf"})
	req := httptest.NewRequest(http.MethodPost, "/upload/presigned-url", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data struct {
			UploadURL string `json:"upload_url"`
			SourceURI string `json:"source_uri"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://signed.example.com/put", resp.Data.UploadURL)
	assert.Contains(t, resp.Data.SourceURI, "s3://intake/uploads/")
	assert.Contains(t, resp.Data.SourceURI, "inv.pdf")
}

func TestPresignedUploadUnsupportedType(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	r := fileRouter(storage)
	body, _ := json.Marshal(gin.H{"file_name": "malware.exe"})
	req := httptest.NewRequest(http.MethodPost, "/upload/presigned-url", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	storage.AssertNotCalled(t, "GetPresignedUploadURL",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPresignedUploadWithoutStorage(t *testing.T) {
	r := fileRouter(nil)
	body, _ := json.Marshal(gin.H{"file_name": "inv.pdf"})
	req := httptest.NewRequest(http.MethodPost, "/upload/presigned-url", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
