package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"invodex/internal/domain"
	"invodex/internal/port"
)

// supportedExtensions is the fixed allow-list of document file types.
var supportedExtensions = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".heic": "image/heic",
}

// Discovery lists candidate files under a local directory or an s3:// prefix.
// The returned list is sorted so repeated calls within one logical run see a
// stable order; files previously moved into the processed directory are
// naturally excluded because that directory is never descended into.
type Discovery struct {
	storage      port.ObjectStorage
	processedDir string
}

// NewDiscovery creates a Discovery. storage may be nil when only local paths
// are used; processedDir is the directory name the lifecycle moves finished
// files into.
func NewDiscovery(storage port.ObjectStorage, processedDir string) *Discovery {
	if processedDir == "" {
		processedDir = "processed"
	}
	return &Discovery{storage: storage, processedDir: processedDir}
}

func (d *Discovery) Discover(ctx context.Context, path string, recursive bool) ([]string, error) {
	if strings.HasPrefix(path, "s3://") {
		return d.discoverS3(ctx, path, recursive)
	}
	return d.discoverLocal(path, recursive)
}

func (d *Discovery) discoverLocal(path string, recursive bool) ([]string, error) {
	path = strings.TrimPrefix(path, "file://")
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidPath, path)
	}
	if !info.IsDir() {
		if !supported(path) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, path)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		return []string{"file://" + abs}, nil
	}

	var uris []string
	walk := func(p string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if entry.Name() == d.processedDir {
				return filepath.SkipDir
			}
			if !recursive && p != path {
				return filepath.SkipDir
			}
			return nil
		}
		if !supported(p) {
			return nil
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		uris = append(uris, "file://"+abs)
		return nil
	}
	if err := filepath.WalkDir(path, walk); err != nil {
		return nil, fmt.Errorf("walking %s: %w", path, err)
	}
	sort.Strings(uris)
	return uris, nil
}

func (d *Discovery) discoverS3(ctx context.Context, uri string, recursive bool) ([]string, error) {
	if d.storage == nil {
		return nil, fmt.Errorf("%w: object storage not configured for %s", domain.ErrInvalidURI, uri)
	}
	bucket, prefix, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	objects, err := d.storage.List(ctx, bucket, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing s3://%s/%s: %w", bucket, prefix, err)
	}
	var uris []string
	for _, obj := range objects {
		if !supported(obj.Key) {
			continue
		}
		// A separator past the prefix means the key sits in a sub-folder.
		rel := strings.TrimPrefix(strings.TrimPrefix(obj.Key, prefix), "/")
		if !recursive && strings.Contains(rel, "/") {
			continue
		}
		uris = append(uris, fmt.Sprintf("s3://%s/%s", bucket, obj.Key))
	}
	sort.Strings(uris)
	return uris, nil
}

// ParseS3URI splits s3://bucket/key into its parts.
func ParseS3URI(uri string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(uri, "s3://")
	if rest == uri {
		return "", "", fmt.Errorf("%w: %s", domain.ErrInvalidURI, uri)
	}
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %s", domain.ErrInvalidURI, uri)
	}
	return parts[0], parts[1], nil
}

func supported(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Supported reports whether the file's extension is in the processing
// allow-list.
func Supported(path string) bool {
	return supported(path)
}

// ContentTypeFor returns the content type for a file name based on its
// extension, defaulting to application/octet-stream.
func ContentTypeFor(name string) string {
	if ct, ok := supportedExtensions[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}
