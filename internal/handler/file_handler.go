package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"invodex/internal/config"
	"invodex/internal/discovery"
	"invodex/internal/port"
)

// FileHandler serves source files back to reviewers and issues presigned
// upload URLs for the S3 intake bucket.
type FileHandler struct {
	storage port.ObjectStorage
	s3cfg   *config.S3Config
}

// NewFileHandler creates a new FileHandler. storage may be nil when no bucket
// is configured; S3-backed endpoints then return 503.
func NewFileHandler(storage port.ObjectStorage, s3cfg *config.S3Config) *FileHandler {
	return &FileHandler{storage: storage, s3cfg: s3cfg}
}

// View handles GET /file/view?path=...
// Local files are served directly; S3 URIs redirect to a presigned URL.
func (h *FileHandler) View(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_PATH", "path query parameter is required")
		return
	}

	if strings.HasPrefix(path, "s3://") {
		h.viewS3(c, path)
		return
	}

	local := strings.TrimPrefix(path, "file://")
	if !discovery.Supported(local) {
		RespondError(c, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "file type is not viewable")
		return
	}
	abs, err := filepath.Abs(local)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_PATH", "cannot resolve path")
		return
	}
	if _, err := os.Stat(abs); err != nil {
		RespondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "file not found")
		return
	}
	c.Header("Content-Type", discovery.ContentTypeFor(abs))
	c.File(abs)
}

func (h *FileHandler) viewS3(c *gin.Context, uri string) {
	if h.storage == nil {
		RespondError(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "object storage is not configured")
		return
	}
	bucket, key, err := discovery.ParseS3URI(uri)
	if err != nil {
		HandleError(c, err)
		return
	}
	url, err := h.storage.GetPresignedURL(c.Request.Context(), bucket, key, h.s3cfg.PresignExpiry)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// PresignedUploadRequest is the body for POST /upload/presigned-url.
type PresignedUploadRequest struct {
	FileName string `json:"file_name" binding:"required"`
}

// PresignedUpload handles POST /upload/presigned-url. The client PUTs the
// file bytes directly to the returned URL.
func (h *FileHandler) PresignedUpload(c *gin.Context) {
	if h.storage == nil || h.s3cfg.Bucket == "" {
		RespondError(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "object storage is not configured")
		return
	}

	var req PresignedUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if !discovery.Supported(req.FileName) {
		RespondError(c, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf, jpg, jpeg, png, tif, tiff, heic")
		return
	}

	key := "uploads/" + uuid.New().String() + "/" + filepath.Base(req.FileName)
	url, err := h.storage.GetPresignedUploadURL(
		c.Request.Context(),
		h.s3cfg.Bucket,
		key,
		discovery.ContentTypeFor(req.FileName),
		h.s3cfg.PresignExpiry,
	)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{
		"upload_url": url,
		"source_uri": "s3://" + h.s3cfg.Bucket + "/" + key,
	})
}
