// Package viewer implements server-side viewer sessions: the page cache and
// navigation controller, its input guard, and the session manager.
package viewer

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pdfviewer/internal/events"
	"pdfviewer/internal/handle"
	"pdfviewer/internal/logging"
	"pdfviewer/internal/model"
	"pdfviewer/internal/source"
)

// Zoom is held in tenths so repeated steps land exactly on the bounds.
const (
	zoomMinSteps     = 5
	zoomMaxSteps     = 20
	zoomDefaultSteps = 10
	rotationStep     = 90
)

var tracer = otel.Tracer("pdfviewer/internal/viewer")

// Options configure a Controller. Handles is required; the rest have defaults.
type Options struct {
	Handles      *handle.Registry
	Host         Host
	Publisher    events.Publisher
	Metrics      *Metrics
	Log          *logging.Logger
	FetchTimeout time.Duration
}

// fetchCall is one outstanding page fetch. err is valid once done is closed.
type fetchCall struct {
	done chan struct{}
	err  error
}

// Controller is the page cache and navigation state of one open document.
//
// Fetches run on background goroutines scoped to the controller; state is
// guarded by mu, which is never held across I/O. At most one fetch per page
// is outstanding at a time.
type Controller struct {
	id      string
	doc     model.Document
	src     source.Source
	handles *handle.Registry
	host    Host
	pub     events.Publisher
	metrics *Metrics
	log     *logging.Logger
	timeout time.Duration
	guard   *Guard

	ctx    context.Context
	cancel context.CancelFunc
	bg     sync.WaitGroup

	lastActive atomic.Int64

	mu         sync.Mutex
	closed     bool
	current    int
	cache      map[int]handle.Handle
	inflight   map[int]*fetchCall
	zoomSteps  int
	rotation   int
	loading    bool
	fullscreen bool
	navSeq     uint64
	notices    []model.Notice
}

// NewController creates a controller positioned on page 1 with an empty cache
// and the default view transform. It does not fetch anything.
func NewController(doc model.Document, src source.Source, opts Options) *Controller {
	if opts.Host == nil {
		opts.Host = ClientHost{}
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Noop{}
	}
	if opts.Log == nil {
		opts.Log = logging.Discard()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		id:        uuid.NewString(),
		doc:       doc,
		src:       src,
		handles:   opts.Handles,
		host:      opts.Host,
		pub:       opts.Publisher,
		metrics:   opts.Metrics,
		log:       opts.Log,
		timeout:   opts.FetchTimeout,
		guard:     NewGuard(),
		ctx:       ctx,
		cancel:    cancel,
		current:   1,
		cache:     make(map[int]handle.Handle),
		inflight:  make(map[int]*fetchCall),
		zoomSteps: zoomDefaultSteps,
	}
	c.touch()
	return c
}

// ID returns the session identifier.
func (c *Controller) ID() string { return c.id }

// Document returns the open document.
func (c *Controller) Document() model.Document { return c.doc }

// LastActive reports when the last intent was received.
func (c *Controller) LastActive() time.Time {
	return time.Unix(0, c.lastActive.Load())
}

func (c *Controller) touch() {
	c.lastActive.Store(time.Now().UnixNano())
}

// GoToPage moves the cursor to target and loads it.
//
// Out-of-range targets are ignored. It returns once the target page has
// settled, or early with ctx's error; settling, and the prefetch of the
// neighbouring pages that follows a successful load, continue regardless.
// A failed load is reported as a Notice, not as an error.
func (c *Controller) GoToPage(ctx context.Context, target int) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrSessionClosed
	}
	c.touch()
	if target < 1 || target > c.doc.PageCount {
		c.mu.Unlock()
		return nil
	}

	c.current = target
	c.loading = true
	c.navSeq++
	seq := c.navSeq
	call := c.startFetchLocked(target, fetchPrimary)

	settled := make(chan struct{})
	c.bg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.bg.Done()
		defer close(settled)
		c.settle(seq, target, call)
	}()

	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NextPage is GoToPage(current+1).
func (c *Controller) NextPage(ctx context.Context) error {
	return c.GoToPage(ctx, c.currentPage()+1)
}

// PreviousPage is GoToPage(current-1).
func (c *Controller) PreviousPage(ctx context.Context) error {
	return c.GoToPage(ctx, c.currentPage()-1)
}

func (c *Controller) currentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// settle waits for a navigation's fetch, resolves the loading flag if the
// navigation is still the latest one, and prefetches neighbours on success.
// maxNotices bounds the notices a session keeps; the oldest go first.
const maxNotices = 10

// addNoticeLocked replaces any notice for the same page, so repeated failures
// of one page show as a single, most recent notice.
func (c *Controller) addNoticeLocked(n model.Notice) {
	kept := c.notices[:0]
	for _, old := range c.notices {
		if old.Page != n.Page {
			kept = append(kept, old)
		}
	}
	kept = append(kept, n)
	if len(kept) > maxNotices {
		kept = append(kept[:0:0], kept[len(kept)-maxNotices:]...)
	}
	c.notices = kept
}

func (c *Controller) settle(seq uint64, page int, call *fetchCall) {
	var err error
	if call != nil {
		<-call.done
		err = call.err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if seq == c.navSeq {
		c.loading = false
	}
	if err != nil {
		c.addNoticeLocked(model.Notice{
			ID:        uuid.NewString(),
			Level:     "error",
			Title:     "Error",
			Message:   "Failed to load page. Please try again.",
			Page:      page,
			CreatedAt: time.Now().UTC(),
		})
		c.mu.Unlock()
		c.log.Warn("page_load_failed", logging.Fields{
			"session_id":    c.id,
			"document_id":   c.doc.ID,
			"page":          page,
			"error_message": err.Error(),
		})
		return
	}
	for _, p := range [2]int{page - 1, page + 1} {
		if p >= 1 && p <= c.doc.PageCount {
			c.startFetchLocked(p, fetchPrefetch)
		}
	}
	c.mu.Unlock()

	if perr := c.pub.Publish(c.ctx, events.Event{
		Type:       events.TypePageViewed,
		SessionID:  c.id,
		DocumentID: c.doc.ID,
		Page:       page,
		At:         time.Now().UTC(),
	}); perr != nil {
		c.log.Warn("event_publish_failed", logging.Fields{"session_id": c.id, "error_message": perr.Error()})
	}
}

// startFetchLocked returns the outstanding fetch for page, starting one if the
// page is neither cached nor in flight. It returns nil for cached pages.
// c.mu must be held and c.closed must be false.
func (c *Controller) startFetchLocked(page int, kind string) *fetchCall {
	if _, ok := c.cache[page]; ok {
		if kind == fetchPrimary {
			c.metrics.cacheHit()
		}
		return nil
	}
	if call, ok := c.inflight[page]; ok {
		return call
	}

	call := &fetchCall{done: make(chan struct{})}
	c.inflight[page] = call
	c.bg.Add(1)
	go c.fetch(page, kind, call)
	return call
}

func (c *Controller) fetch(page int, kind string, call *fetchCall) {
	defer c.bg.Done()

	ctx := c.ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ctx, span := tracer.Start(ctx, "viewer.fetch_page", trace.WithAttributes(
		attribute.String("viewer.session_id", c.id),
		attribute.String("document.id", c.doc.ID),
		attribute.Int("document.page", page),
		attribute.String("viewer.fetch_kind", kind),
	))
	defer span.End()

	start := time.Now()
	p, err := c.src.FetchPage(ctx, c.doc.ID, page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "page fetch failed")
	}

	c.mu.Lock()
	delete(c.inflight, page)
	if err == nil && !c.closed {
		if _, ok := c.cache[page]; !ok {
			c.cache[page] = c.handles.Acquire(p.Data, p.ContentType)
		}
	}
	c.mu.Unlock()

	call.err = err
	close(call.done)
	c.metrics.observeFetch(kind, err, time.Since(start))
}

// WaitIdle blocks until every background fetch and settle has finished.
func (c *Controller) WaitIdle() {
	c.bg.Wait()
}

// ZoomIn raises zoom by 0.1 up to 2.0.
func (c *Controller) ZoomIn() error {
	return c.update(func() {
		if c.zoomSteps < zoomMaxSteps {
			c.zoomSteps++
		}
	})
}

// ZoomOut lowers zoom by 0.1 down to 0.5.
func (c *Controller) ZoomOut() error {
	return c.update(func() {
		if c.zoomSteps > zoomMinSteps {
			c.zoomSteps--
		}
	})
}

// Rotate turns the page by 90 degrees clockwise, wrapping at 360.
func (c *Controller) Rotate() error {
	return c.update(func() {
		c.rotation = (c.rotation + rotationStep) % 360
	})
}

// FullscreenChanged records a fullscreen change reported by the host.
func (c *Controller) FullscreenChanged(active bool) error {
	return c.update(func() {
		c.fullscreen = active
	})
}

func (c *Controller) update(fn func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrSessionClosed
	}
	c.touch()
	fn()
	return nil
}

// ToggleFullscreen asks the host for the opposite of the current fullscreen
// state and records what the host reports.
func (c *Controller) ToggleFullscreen(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrSessionClosed
	}
	want := !c.fullscreen
	c.mu.Unlock()

	got, err := c.host.SetFullscreen(ctx, want)
	if err != nil {
		return err
	}
	return c.FullscreenChanged(got)
}

// DismissNotice removes a notice by ID.
func (c *Controller) DismissNotice(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrSessionClosed
	}
	for i, n := range c.notices {
		if n.ID == id {
			c.notices = append(c.notices[:i], c.notices[i+1:]...)
			return nil
		}
	}
	return ErrNoticeNotFound
}

// DispatchKey classifies a client input event through the session's guard
// and applies the resulting intent.
func (c *Controller) DispatchKey(ctx context.Context, ev InputEvent) (Intent, error) {
	intent, err := c.guard.Classify(ev)
	if err != nil {
		return IntentNone, ErrSessionClosed
	}

	switch intent {
	case IntentPreviousPage:
		err = c.PreviousPage(ctx)
	case IntentNextPage:
		err = c.NextPage(ctx)
	case IntentZoomIn:
		err = c.ZoomIn()
	case IntentZoomOut:
		err = c.ZoomOut()
	case IntentToggleFullscreen:
		err = c.ToggleFullscreen(ctx)
	}
	return intent, err
}

// HandleFor returns the cached handle of page.
func (c *Controller) HandleFor(page int) (handle.Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.cache[page]
	return h, ok
}

// Thumbnail returns a displayable thumbnail reference for page.
func (c *Controller) Thumbnail(ctx context.Context, page int) (string, error) {
	if page < 1 || page > c.doc.PageCount {
		return "", ErrPageOutOfRange
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return "", ErrSessionClosed
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.src.FetchThumbnail(ctx, c.doc.ID, page)
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() model.ViewerState {
	c.mu.Lock()
	defer c.mu.Unlock()

	pages := make([]int, 0, len(c.cache))
	handles := make(map[int]string, len(c.cache))
	for p, h := range c.cache {
		pages = append(pages, p)
		handles[p] = handle.URL(h.ID)
	}
	sort.Ints(pages)

	notices := make([]model.Notice, len(c.notices))
	copy(notices, c.notices)

	return model.ViewerState{
		SessionID:    c.id,
		DocumentID:   c.doc.ID,
		Title:        c.doc.Title,
		CurrentPage:  c.current,
		PageCount:    c.doc.PageCount,
		Zoom:         float64(c.zoomSteps) / 10,
		Rotation:     c.rotation,
		IsLoading:    c.loading,
		IsFullscreen: c.fullscreen,
		CachedPages:  pages,
		Handles:      handles,
		Notices:      notices,
	}
}

// Close ends the session: in-flight fetches are cancelled, background work is
// drained, the guard is detached and every cached handle is released exactly
// once. Closing an already closed controller is a no-op.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.guard.Detach()
	c.cancel()
	c.bg.Wait()

	c.mu.Lock()
	cached := c.cache
	c.cache = make(map[int]handle.Handle)
	c.mu.Unlock()

	var errs []error
	for _, h := range cached {
		if err := c.handles.Release(h.ID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
