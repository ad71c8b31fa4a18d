package source

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pdfviewer/internal/storage"
	storeMocks "pdfviewer/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFetchError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fetchErr("doc", 2, cause)

	assert.ErrorIs(t, err, ErrTransientFetch)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "fetch document doc page 2: connection refused", err.Error())

	// already transient errors are not wrapped twice
	assert.Same(t, err, fetchErr("doc", 2, err))
	assert.NoError(t, fetchErr("doc", 2, nil))
}

func TestStorageSource_FetchPage(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		store := new(storeMocks.MockStorage)
		store.On("Get", ctx, "documents/doc-1/pages/3.png").
			Return(io.NopCloser(strings.NewReader("png")), storage.ObjectInfo{ContentType: "image/png"}, nil)

		p, err := NewStorage(store, time.Minute).FetchPage(ctx, "doc-1", 3)

		require.NoError(t, err)
		assert.Equal(t, []byte("png"), p.Data)
		assert.Equal(t, "image/png", p.ContentType)
		store.AssertExpectations(t)
	})

	t.Run("default content type", func(t *testing.T) {
		store := new(storeMocks.MockStorage)
		store.On("Get", ctx, mock.Anything).
			Return(io.NopCloser(strings.NewReader("png")), storage.ObjectInfo{}, nil)

		p, err := NewStorage(store, time.Minute).FetchPage(ctx, "doc-1", 1)

		require.NoError(t, err)
		assert.Equal(t, "image/png", p.ContentType)
	})

	t.Run("storage error is transient", func(t *testing.T) {
		store := new(storeMocks.MockStorage)
		store.On("Get", ctx, mock.Anything).Return(nil, storage.ObjectInfo{}, errors.New("no such key"))

		_, err := NewStorage(store, time.Minute).FetchPage(ctx, "doc-1", 9)

		assert.ErrorIs(t, err, ErrTransientFetch)
	})
}

func TestStorageSource_FetchThumbnail(t *testing.T) {
	ctx := context.Background()
	store := new(storeMocks.MockStorage)
	store.On("PresignGet", ctx, "documents/doc-1/thumbs/2.png", 5*time.Minute).
		Return("https://minio/thumb?sig=1", nil).Once()
	store.On("PresignGet", ctx, "documents/doc-1/thumbs/3.png", 5*time.Minute).
		Return("", errors.New("denied")).Once()

	src := NewStorage(store, 5*time.Minute)

	u, err := src.FetchThumbnail(ctx, "doc-1", 2)
	require.NoError(t, err)
	assert.Equal(t, "https://minio/thumb?sig=1", u)

	_, err = src.FetchThumbnail(ctx, "doc-1", 3)
	assert.ErrorIs(t, err, ErrTransientFetch)
	store.AssertExpectations(t)
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/documents/doc-1/pages/1":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("page-one"))
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	src, err := NewHTTP(HTTPOptions{BaseURL: srv.URL + "/", Rate: 100, Burst: 5, Client: srv.Client()})
	require.NoError(t, err)

	ctx := context.Background()

	p, err := src.FetchPage(ctx, "doc-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "page-one", string(p.Data))
	assert.Equal(t, "image/png", p.ContentType)

	_, err = src.FetchPage(ctx, "doc-1", 2)
	assert.ErrorIs(t, err, ErrTransientFetch)
	assert.ErrorContains(t, err, "unexpected status 404")

	thumb, err := src.FetchThumbnail(ctx, "doc-1", 4)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/documents/doc-1/thumbnails/4", thumb)
}

func TestHTTPSource_RejectsOversizedPage(t *testing.T) {
	const limit = 16
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := limit
		if r.URL.Path == "/documents/doc-1/pages/2" {
			n = limit + 10
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte(strings.Repeat("x", n)))
	}))
	defer srv.Close()

	src, err := NewHTTP(HTTPOptions{BaseURL: srv.URL, Client: srv.Client(), MaxPageBytes: limit})
	require.NoError(t, err)

	p, err := src.FetchPage(context.Background(), "doc-1", 1)
	require.NoError(t, err)
	assert.Len(t, p.Data, limit, "body exactly at the limit is accepted")

	p, err = src.FetchPage(context.Background(), "doc-1", 2)
	assert.ErrorIs(t, err, ErrTransientFetch)
	assert.ErrorIs(t, err, errPageTooLarge)
	assert.Empty(t, p.Data)
}

func TestNewHTTP_RequiresBaseURL(t *testing.T) {
	_, err := NewHTTP(HTTPOptions{})
	assert.Error(t, err)
}

func TestPlaceholderSource(t *testing.T) {
	src := NewPlaceholder(0)
	ctx := context.Background()

	p, err := src.FetchPage(ctx, "any", 7)
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", p.ContentType)
	assert.Contains(t, string(p.Data), "Page 7")

	thumb, err := src.FetchThumbnail(ctx, "any", 7)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(thumb, "data:image/svg+xml;base64,"))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = NewPlaceholder(time.Second).FetchPage(cancelled, "any", 1)
	assert.ErrorIs(t, err, ErrTransientFetch)
	assert.ErrorIs(t, err, context.Canceled)
}

// gatedSource blocks every FetchPage until release is closed.
type gatedSource struct {
	calls   atomic.Int32
	release chan struct{}
}

func (g *gatedSource) FetchPage(ctx context.Context, documentID string, page int) (Page, error) {
	g.calls.Add(1)
	select {
	case <-g.release:
		return Page{Data: []byte(documentID), ContentType: "image/png"}, nil
	case <-ctx.Done():
		return Page{}, ctx.Err()
	}
}

func (g *gatedSource) FetchThumbnail(context.Context, string, int) (string, error) {
	return "thumb", nil
}

func TestShared_DeduplicatesInFlight(t *testing.T) {
	g := &gatedSource{release: make(chan struct{})}
	shared := NewShared(g, time.Second)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]Page, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := shared.FetchPage(ctx, "doc-1", 1)
			assert.NoError(t, err)
			results[i] = p
		}(i)
	}

	require.Eventually(t, func() bool { return g.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(g.release)
	wg.Wait()

	assert.Equal(t, int32(1), g.calls.Load())
	for _, p := range results {
		assert.Equal(t, "doc-1", string(p.Data))
	}

	// a settled key is fetched again
	_, err := shared.FetchPage(ctx, "doc-1", 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), g.calls.Load())
}

func TestShared_CallerCancelDoesNotFailOthers(t *testing.T) {
	g := &gatedSource{release: make(chan struct{})}
	shared := NewShared(g, time.Second)

	cctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := shared.FetchPage(cctx, "doc-1", 1)
		errCh <- err
	}()
	require.Eventually(t, func() bool { return g.calls.Load() == 1 }, time.Second, time.Millisecond)

	done := make(chan Page, 1)
	go func() {
		p, err := shared.FetchPage(context.Background(), "doc-1", 1)
		assert.NoError(t, err)
		done <- p
	}()

	cancel()
	err := <-errCh
	assert.ErrorIs(t, err, context.Canceled)

	time.Sleep(20 * time.Millisecond)
	close(g.release)
	p := <-done
	assert.Equal(t, "doc-1", string(p.Data))
	assert.Equal(t, int32(1), g.calls.Load())
}

func TestShared_Timeout(t *testing.T) {
	g := &gatedSource{release: make(chan struct{})}
	shared := NewShared(g, 20*time.Millisecond)

	_, err := shared.FetchPage(context.Background(), "doc-1", 1)
	assert.ErrorIs(t, err, ErrTransientFetch)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	thumb, err := shared.FetchThumbnail(context.Background(), "doc-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "thumb", thumb)
}
