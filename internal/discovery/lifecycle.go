package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Lifecycle moves successfully processed local files into a sibling
// processed directory so later windows do not rediscover them. Object-store
// URIs are left in place. The move is a single rename, never copy-then-
// delete, so a crash cannot leave a half-moved file.
type Lifecycle struct {
	processedDir string
}

// NewLifecycle creates a Lifecycle using the given processed directory name.
func NewLifecycle(processedDir string) *Lifecycle {
	if processedDir == "" {
		processedDir = "processed"
	}
	return &Lifecycle{processedDir: processedDir}
}

func (l *Lifecycle) MarkProcessed(_ context.Context, uri string) (string, bool, error) {
	if !strings.HasPrefix(uri, "file://") {
		return "", false, nil
	}
	src := strings.TrimPrefix(uri, "file://")

	destDir := filepath.Join(filepath.Dir(src), l.processedDir)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", false, fmt.Errorf("creating %s: %w", destDir, err)
	}

	dest := nextFreeName(destDir, filepath.Base(src))
	if err := os.Rename(src, dest); err != nil {
		return "", false, fmt.Errorf("moving %s to %s: %w", src, dest, err)
	}
	return "file://" + dest, true, nil
}

// nextFreeName resolves collisions in the processed directory by appending a
// numeric suffix before the extension, incrementing until a free name is
// found. An existing file is never overwritten.
func nextFreeName(dir, name string) string {
	dest := filepath.Join(dir, name)
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return dest
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		dest = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			return dest
		}
	}
}
