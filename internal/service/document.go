package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"pdfviewer/internal/model"
	"pdfviewer/internal/render"
	"pdfviewer/internal/repository"
	"pdfviewer/internal/storage"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("document not found")
	ErrReaderNil  = errors.New("reader is nil")
	ErrInvalidPDF = render.ErrInvalidPDF
)

const pdfContentType = "application/pdf"

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload validates a PDF, stores it with one rendered image and one thumbnail per page,
	// then saves its metadata. Storage is rolled back if any later step fails.
	// An empty title falls back to the original filename without its extension.
	Upload(ctx context.Context, r io.Reader, originalFilename string, title string, size int64) (*model.Document, error)

	// List returns documents using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*DocumentListResult, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Delete removes a document by ID from both storage and repository.
	Delete(ctx context.Context, id string) error
}

// RenderOptions control page images produced on upload.
type RenderOptions struct {
	DPI            float64
	ThumbnailWidth int
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store  storage.Storage
	repo   repository.DocumentRepository
	raster render.Rasterizer
	opts   RenderOptions
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, raster render.Rasterizer, opts RenderOptions) DocumentService {
	if opts.DPI <= 0 {
		opts.DPI = 110
	}
	if opts.ThumbnailWidth <= 0 {
		opts.ThumbnailWidth = 160
	}
	return &documentService{store: store, repo: repo, raster: raster, opts: opts}
}

func (s *documentService) Upload(ctx context.Context, r io.Reader, originalFilename string, title string, size int64) (*model.Document, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if size > 0 && int64(len(data)) != size {
		return nil, fmt.Errorf("read upload: got %d bytes, want %d", len(data), size)
	}

	pages, err := render.CountPages(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	prefix := storage.DocumentPrefix(id)

	// Upload the source PDF first so rendered pages never exist without it
	objInfo, err := s.store.Put(ctx, storage.SourceKey(prefix), bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: pdfContentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	rendered := 0
	err = s.raster.Rasterize(ctx, data, s.opts.DPI, func(page int, img []byte) error {
		rendered = page
		return s.putPage(ctx, prefix, page, img)
	})
	if err == nil && rendered != pages {
		err = fmt.Errorf("%w: rendered %d of %d pages", ErrInvalidPDF, rendered, pages)
	}
	if err != nil {
		return nil, s.rollback(ctx, prefix, "render pages", err)
	}

	doc := &model.Document{
		ID:          id,
		Title:       documentTitle(title, originalFilename),
		PageCount:   pages,
		StoragePath: prefix,
		Size:        objInfo.Size,
		ContentType: pdfContentType,
		CreatedAt:   time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, s.rollback(ctx, prefix, "db save failed", err)
	}
	return stored, nil
}

func (s *documentService) putPage(ctx context.Context, prefix string, page int, img []byte) error {
	if _, err := s.store.Put(ctx, storage.PageKey(prefix, page), bytes.NewReader(img), storage.PutObjectOptions{
		Size:        int64(len(img)),
		ContentType: "image/png",
	}); err != nil {
		return fmt.Errorf("store page %d: %w", page, err)
	}

	thumb, err := render.Thumbnail(img, s.opts.ThumbnailWidth)
	if err != nil {
		return fmt.Errorf("thumbnail page %d: %w", page, err)
	}
	if _, err := s.store.Put(ctx, storage.ThumbnailKey(prefix, page), bytes.NewReader(thumb), storage.PutObjectOptions{
		Size:        int64(len(thumb)),
		ContentType: "image/png",
	}); err != nil {
		return fmt.Errorf("store thumbnail %d: %w", page, err)
	}
	return nil
}

// rollback removes everything stored under prefix after a failed upload.
func (s *documentService) rollback(ctx context.Context, prefix, step string, cause error) error {
	if delErr := s.store.DeletePrefix(context.WithoutCancel(ctx), prefix); delErr != nil {
		return fmt.Errorf("%s: %v; rollback delete failed: %v", step, cause, delErr)
	}
	return fmt.Errorf("%s: %w", step, cause)
}

func documentTitle(title, filename string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	base := filepath.Base(filename)
	if t := strings.TrimSuffix(base, filepath.Ext(base)); t != "" && t != "." {
		return t
	}
	return "Untitled"
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// Delete removes every stored object of a document, then deletes its record.
func (s *documentService) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	// Delete from storage first; if this fails, keep DB row so the objects stay reachable for a retry
	if err := s.store.DeletePrefix(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, id)
}
