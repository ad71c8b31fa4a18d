// Package source defines the Document Source contract consumed by viewer
// sessions and its concrete backings.
//
// A source supplies rendered page bytes and thumbnail references for a
// document. Network, HTTP and storage failures are reported as
// ErrTransientFetch so callers can retry by issuing the fetch again.
package source

import (
	"context"
	"errors"
	"fmt"
)

// ErrTransientFetch marks a failed page or thumbnail fetch that may succeed on retry.
var ErrTransientFetch = errors.New("transient fetch failure")

// Page is the rendered image content of one page.
type Page struct {
	Data        []byte
	ContentType string
}

// Source supplies page content and thumbnail references for documents.
// Page numbers are 1-based.
type Source interface {
	// FetchPage returns the rendered bytes of a page.
	FetchPage(ctx context.Context, documentID string, page int) (Page, error)
	// FetchThumbnail returns a displayable image reference (URL or data URI).
	FetchThumbnail(ctx context.Context, documentID string, page int) (string, error)
}

// FetchError describes a failed fetch. It matches ErrTransientFetch with errors.Is.
type FetchError struct {
	DocumentID string
	Page       int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch document %s page %d: %v", e.DocumentID, e.Page, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrTransientFetch, e.Err}
}

func fetchErr(documentID string, page int, err error) error {
	if err == nil || errors.Is(err, ErrTransientFetch) {
		return err
	}
	return &FetchError{DocumentID: documentID, Page: page, Err: err}
}
