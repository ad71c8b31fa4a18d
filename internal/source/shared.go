package source

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
)

// Shared collapses concurrent fetches of the same (document, page) into one
// underlying request whose result every waiter receives.
//
// The shared request runs detached from any single caller's cancellation and
// is bounded by timeout instead; a caller that gives up stops waiting without
// failing the others.
type Shared struct {
	src     Source
	timeout time.Duration
	group   singleflight.Group
}

// NewShared wraps src. A non-positive timeout leaves shared fetches unbounded.
func NewShared(src Source, timeout time.Duration) *Shared {
	return &Shared{src: src, timeout: timeout}
}

func (s *Shared) FetchPage(ctx context.Context, documentID string, page int) (Page, error) {
	key := documentID + "#" + strconv.Itoa(page)
	ch := s.group.DoChan(key, func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		if s.timeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(fctx, s.timeout)
			defer cancel()
		}
		return s.src.FetchPage(fctx, documentID, page)
	})

	select {
	case <-ctx.Done():
		return Page{}, fetchErr(documentID, page, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return Page{}, fetchErr(documentID, page, res.Err)
		}
		return res.Val.(Page), nil
	}
}

func (s *Shared) FetchThumbnail(ctx context.Context, documentID string, page int) (string, error) {
	return s.src.FetchThumbnail(ctx, documentID, page)
}
