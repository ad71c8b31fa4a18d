package source

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"
)

// placeholderSource generates SVG pages locally. It backs demos and tests where
// no rendered documents exist.
type placeholderSource struct {
	delay time.Duration
}

// NewPlaceholder returns a Source producing generated SVG pages after an artificial delay.
func NewPlaceholder(delay time.Duration) Source {
	return &placeholderSource{delay: delay}
}

func (s *placeholderSource) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *placeholderSource) FetchPage(ctx context.Context, documentID string, page int) (Page, error) {
	if err := s.wait(ctx); err != nil {
		return Page{}, fetchErr(documentID, page, err)
	}
	return Page{Data: placeholderSVG(612, 792, page, 48), ContentType: "image/svg+xml"}, nil
}

func (s *placeholderSource) FetchThumbnail(ctx context.Context, documentID string, page int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fetchErr(documentID, page, err)
	}
	svg := placeholderSVG(120, 160, page, 24)
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svg), nil
}

func placeholderSVG(w, h, page, fontSize int) []byte {
	return []byte(fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
			`<rect width="100%%" height="100%%" fill="#f8f9fa" stroke="#dee2e6"/>`+
			`<text x="50%%" y="50%%" font-family="sans-serif" font-size="%d" fill="#6c757d" text-anchor="middle" dominant-baseline="middle">Page %d</text>`+
			`</svg>`,
		w, h, w, h, fontSize, page))
}
