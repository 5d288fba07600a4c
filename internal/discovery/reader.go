package discovery

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/heic"

	"invodex/internal/domain"
	"invodex/internal/port"
)

// Reader reads a discovered URI into memory, transparently converting HEIC
// images (the common iPhone capture format) to JPEG so every downstream
// consumer sees a universally supported raster format.
type Reader struct {
	storage port.ObjectStorage
}

// NewReader creates a Reader. storage may be nil when only local paths are
// used.
func NewReader(storage port.ObjectStorage) *Reader {
	return &Reader{storage: storage}
}

func (r *Reader) ReadBytes(ctx context.Context, uri string) (*port.FileContent, error) {
	if strings.HasPrefix(uri, "s3://") {
		return r.readS3(ctx, uri)
	}
	return r.readLocal(uri)
}

func (r *Reader) readLocal(uri string) (*port.FileContent, error) {
	path := strings.TrimPrefix(uri, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	content := &port.FileContent{
		Data:        data,
		ContentType: ContentTypeFor(name),
		FileName:    name,
		SourceURI:   "file://" + abs,
	}
	return convertIfHEIC(content)
}

func (r *Reader) readS3(ctx context.Context, uri string) (*port.FileContent, error) {
	if r.storage == nil {
		return nil, fmt.Errorf("%w: object storage not configured for %s", domain.ErrInvalidURI, uri)
	}
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	data, contentType, err := r.storage.Download(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", uri, err)
	}
	name := filepath.Base(key)
	if contentType == "" {
		contentType = ContentTypeFor(name)
	}
	content := &port.FileContent{
		Data:        data,
		ContentType: contentType,
		FileName:    name,
		SourceURI:   uri,
	}
	return convertIfHEIC(content)
}

// convertIfHEIC decodes HEIC data and re-encodes it as JPEG, rewriting the
// content type and file name to match the converted bytes. Other formats
// pass through untouched.
func convertIfHEIC(content *port.FileContent) (*port.FileContent, error) {
	if !strings.Contains(strings.ToLower(content.ContentType), "heic") &&
		!strings.Contains(strings.ToLower(content.ContentType), "heif") {
		return content, nil
	}
	img, err := heic.Decode(bytes.NewReader(content.Data))
	if err != nil {
		return nil, fmt.Errorf("decoding HEIC image %s: %w", content.FileName, err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encoding JPEG for %s: %w", content.FileName, err)
	}
	content.Data = buf.Bytes()
	content.ContentType = "image/jpeg"
	content.FileName = jpegName(content.FileName)
	return content, nil
}

// jpegName swaps a file name's extension for .jpg.
func jpegName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
}
