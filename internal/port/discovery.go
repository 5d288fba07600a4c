package port

import "context"

// FileDiscovery lists candidate document files under a path. The returned
// URIs (file:// or s3://) are deterministically ordered so that repeated
// calls within one logical run see a stable list.
type FileDiscovery interface {
	Discover(ctx context.Context, path string, recursive bool) ([]string, error)
}

// FileContent is the result of reading one document's bytes. Legacy image
// containers (HEIC) are transparently converted to JPEG before return, with
// ContentType rewritten accordingly.
type FileContent struct {
	Data        []byte
	ContentType string
	FileName    string
	// SourceURI is the normalized form of the input URI (absolute file://
	// path, or the s3:// URI unchanged).
	SourceURI string
}

// ByteReader reads a discovered URI into memory.
type ByteReader interface {
	ReadBytes(ctx context.Context, uri string) (*FileContent, error)
}

// FileLifecycle moves successfully processed source files out of the
// discovery set so repeated windows do not reprocess them. When a file is
// moved, movedURI is its new location; callers must re-point any record
// keyed on the old URI. Object-store URIs are left in place and reported
// as not moved.
type FileLifecycle interface {
	MarkProcessed(ctx context.Context, uri string) (movedURI string, moved bool, err error)
}
