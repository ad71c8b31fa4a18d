// Package render validates uploaded PDFs and turns their pages into images.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"golang.org/x/image/draw"
)

// ErrInvalidPDF is returned for input that is not a readable PDF with at least one page.
var ErrInvalidPDF = errors.New("invalid pdf")

// CountPages parses the PDF trailer and page tree and returns the page count.
func CountPages(r io.ReaderAt, size int64) (n int, err error) {
	// the parser panics on some malformed cross-reference tables
	defer func() {
		if rec := recover(); rec != nil {
			n, err = 0, fmt.Errorf("%w: %v", ErrInvalidPDF, rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	n = reader.NumPage()
	if n < 1 {
		return 0, fmt.Errorf("%w: no pages", ErrInvalidPDF)
	}
	return n, nil
}

// PageFunc receives one rendered page. Pages are numbered from 1.
type PageFunc func(page int, png []byte) error

// Rasterizer renders every page of a PDF to PNG.
type Rasterizer interface {
	Rasterize(ctx context.Context, data []byte, dpi float64, fn PageFunc) error
}

// Fitz rasterizes with MuPDF.
type Fitz struct{}

// NewFitz returns a MuPDF-backed Rasterizer.
func NewFitz() Rasterizer { return Fitz{} }

func (Fitz) Rasterize(ctx context.Context, data []byte, dpi float64, fn PageFunc) error {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	defer doc.Close()

	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := doc.ImagePNG(i, dpi)
		if err != nil {
			return fmt.Errorf("render page %d: %w", i+1, err)
		}
		if err := fn(i+1, img); err != nil {
			return err
		}
	}
	return nil
}

// Thumbnail scales a PNG down to width pixels, keeping the aspect ratio.
// Images already narrower than width are re-encoded unscaled.
func Thumbnail(src []byte, width int) ([]byte, error) {
	if width <= 0 {
		return nil, errors.New("thumbnail width must be positive")
	}
	img, err := png.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("decode page image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > width {
		height := b.Dy() * width / b.Dx()
		if height < 1 {
			height = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
