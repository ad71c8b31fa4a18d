package model

import "time"

// Document represents an uploaded PDF and its rendered pages.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
//
// StoragePath is the object key prefix under which the source PDF, page images
// and thumbnails live (e.g. "documents/<id>").
type Document struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	PageCount   int       `json:"page_count"`
	StoragePath string    `json:"storage_path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}
