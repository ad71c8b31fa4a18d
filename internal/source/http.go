package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// defaultMaxPageBytes bounds a single page download unless HTTPOptions overrides it.
const defaultMaxPageBytes = 64 << 20

var errPageTooLarge = errors.New("page exceeds size limit")

// HTTPOptions configures a remote page server source.
type HTTPOptions struct {
	// BaseURL is the page server root, e.g. https://pages.example.com.
	BaseURL string
	// Rate is the number of requests per second allowed; Burst the bucket size.
	Rate  float64
	Burst int
	// Client overrides the default instrumented client.
	Client *http.Client
	// MaxPageBytes rejects larger page bodies. Zero means 64 MiB.
	MaxPageBytes int64
}

type httpSource struct {
	base     *url.URL
	client   *http.Client
	limiter  *rate.Limiter
	maxBytes int64
}

// NewHTTP returns a Source that fetches pages from a remote page server laid out as
// {base}/documents/{id}/pages/{n} and {base}/documents/{id}/thumbnails/{n}.
func NewHTTP(opts HTTPOptions) (Source, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("http source base url is required")
	}
	base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	limit := rate.Inf
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	maxBytes := opts.MaxPageBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxPageBytes
	}

	return &httpSource{
		base:     base,
		client:   client,
		limiter:  rate.NewLimiter(limit, burst),
		maxBytes: maxBytes,
	}, nil
}

func (s *httpSource) resourceURL(documentID, kind string, page int) string {
	return s.base.JoinPath("documents", url.PathEscape(documentID), kind, strconv.Itoa(page)).String()
}

func (s *httpSource) FetchPage(ctx context.Context, documentID string, page int) (Page, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return Page{}, fetchErr(documentID, page, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.resourceURL(documentID, "pages", page), nil)
	if err != nil {
		return Page{}, fetchErr(documentID, page, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return Page{}, fetchErr(documentID, page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Page{}, fetchErr(documentID, page, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return Page{}, fetchErr(documentID, page, err)
	}
	if int64(len(data)) > s.maxBytes {
		return Page{}, fetchErr(documentID, page, errPageTooLarge)
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return Page{Data: data, ContentType: ct}, nil
}

// FetchThumbnail returns the page server's thumbnail URL; the client loads it directly.
func (s *httpSource) FetchThumbnail(_ context.Context, documentID string, page int) (string, error) {
	return s.resourceURL(documentID, "thumbnails", page), nil
}
