// Package storage contains object storage abstractions for S3-compatible backends.
// Implementations avoid local disk and rely on streaming I/O only.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known, or -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every object whose key starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// DocumentPrefix is the key prefix holding every object of a document.
func DocumentPrefix(documentID string) string {
	return path.Join("documents", documentID)
}

// SourceKey is where the uploaded PDF is kept.
func SourceKey(prefix string) string {
	return path.Join(prefix, "source.pdf")
}

// PageKey is the rendered PNG for a 1-based page number.
func PageKey(prefix string, page int) string {
	return path.Join(prefix, "pages", fmt.Sprintf("%d.png", page))
}

// ThumbnailKey is the downscaled PNG for a 1-based page number.
func ThumbnailKey(prefix string, page int) string {
	return path.Join(prefix, "thumbs", fmt.Sprintf("%d.png", page))
}
