package source

import (
	"context"
	"io"
	"time"

	"pdfviewer/internal/storage"
)

const defaultPageContentType = "image/png"

// storageSource serves pages rendered at upload time from object storage.
type storageSource struct {
	store       storage.Storage
	thumbExpiry time.Duration
}

// NewStorage returns a Source reading rendered pages from store.
// Thumbnails are handed out as presigned URLs valid for thumbExpiry.
func NewStorage(store storage.Storage, thumbExpiry time.Duration) Source {
	return &storageSource{store: store, thumbExpiry: thumbExpiry}
}

func (s *storageSource) FetchPage(ctx context.Context, documentID string, page int) (Page, error) {
	rc, info, err := s.store.Get(ctx, storage.PageKey(storage.DocumentPrefix(documentID), page))
	if err != nil {
		return Page{}, fetchErr(documentID, page, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return Page{}, fetchErr(documentID, page, err)
	}

	ct := info.ContentType
	if ct == "" {
		ct = defaultPageContentType
	}
	return Page{Data: data, ContentType: ct}, nil
}

func (s *storageSource) FetchThumbnail(ctx context.Context, documentID string, page int) (string, error) {
	u, err := s.store.PresignGet(ctx, storage.ThumbnailKey(storage.DocumentPrefix(documentID), page), s.thumbExpiry)
	if err != nil {
		return "", fetchErr(documentID, page, err)
	}
	return u, nil
}
