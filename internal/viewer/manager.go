package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pdfviewer/internal/events"
	"pdfviewer/internal/handle"
	"pdfviewer/internal/logging"
	"pdfviewer/internal/model"
	"pdfviewer/internal/source"
)

// DocumentLookup resolves a document's metadata.
type DocumentLookup interface {
	Get(ctx context.Context, id string) (*model.Document, error)
}

// ManagerOptions configure a Manager. Source and Handles are required.
type ManagerOptions struct {
	Source       source.Source
	Handles      *handle.Registry
	Host         Host
	Publisher    events.Publisher
	Metrics      *Metrics
	Log          *logging.Logger
	FetchTimeout time.Duration
	// IdleTTL closes sessions with no intent for this long. Zero disables expiry.
	IdleTTL time.Duration
}

// Manager owns the open viewer sessions.
type Manager struct {
	docs DocumentLookup
	opts ManagerOptions

	mu       sync.RWMutex
	sessions map[string]*Controller
}

// NewManager constructs a Manager.
func NewManager(docs DocumentLookup, opts ManagerOptions) (*Manager, error) {
	if docs == nil {
		return nil, errors.New("document lookup is required")
	}
	if opts.Source == nil {
		return nil, errors.New("source is required")
	}
	if opts.Handles == nil {
		return nil, errors.New("handle registry is required")
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Noop{}
	}
	if opts.Log == nil {
		opts.Log = logging.Discard()
	}
	return &Manager{docs: docs, opts: opts, sessions: make(map[string]*Controller)}, nil
}

// Open starts a session on docID and loads its first page.
func (m *Manager) Open(ctx context.Context, docID string) (*Controller, error) {
	doc, err := m.docs.Get(ctx, docID)
	if err != nil {
		return nil, err
	}

	c := NewController(*doc, m.opts.Source, Options{
		Handles:      m.opts.Handles,
		Host:         m.opts.Host,
		Publisher:    m.opts.Publisher,
		Metrics:      m.opts.Metrics,
		Log:          m.opts.Log,
		FetchTimeout: m.opts.FetchTimeout,
	})

	m.mu.Lock()
	m.sessions[c.ID()] = c
	m.mu.Unlock()
	m.opts.Metrics.sessionOpened()

	m.publish(ctx, events.TypeSessionOpened, c, 0)
	m.opts.Log.Info("session_opened", logging.Fields{
		"session_id":  c.ID(),
		"document_id": doc.ID,
		"page_count":  doc.PageCount,
		"request_id":  logging.RequestID(ctx),
	})

	if err := c.GoToPage(ctx, 1); err != nil {
		_ = m.Close(context.WithoutCancel(ctx), c.ID())
		return nil, fmt.Errorf("open session: %w", err)
	}
	return c, nil
}

// Get returns an open session.
func (m *Manager) Get(id string) (*Controller, error) {
	m.mu.RLock()
	c, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return c, nil
}

// Close ends a session and forgets it.
func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	c, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	return m.closeSession(ctx, c, "closed")
}

func (m *Manager) closeSession(ctx context.Context, c *Controller, reason string) error {
	err := c.Close()
	m.opts.Metrics.sessionClosed()
	m.publish(ctx, events.TypeSessionClosed, c, 0)

	fields := logging.Fields{"session_id": c.ID(), "document_id": c.Document().ID, "reason": reason}
	if err != nil {
		m.opts.Log.Error("session_close_failed", err, fields)
		return err
	}
	m.opts.Log.Info("session_closed", fields)
	return nil
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Reap closes sessions idle since before now-IdleTTL and returns how many it closed.
func (m *Manager) Reap(ctx context.Context, now time.Time) int {
	if m.opts.IdleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-m.opts.IdleTTL)

	var expired []*Controller
	m.mu.Lock()
	for id, c := range m.sessions {
		if c.LastActive().Before(cutoff) {
			expired = append(expired, c)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, c := range expired {
		_ = m.closeSession(ctx, c, "idle")
	}
	return len(expired)
}

// Run reaps idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || m.opts.IdleTTL <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := m.Reap(ctx, now); n > 0 {
				m.opts.Log.Info("sessions_reaped", logging.Fields{"count": n})
			}
		}
	}
}

// Shutdown closes every open session.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	all := make([]*Controller, 0, len(m.sessions))
	for id, c := range m.sessions {
		all = append(all, c)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	var errs []error
	for _, c := range all {
		if err := m.closeSession(ctx, c, "shutdown"); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) publish(ctx context.Context, typ string, c *Controller, page int) {
	err := m.opts.Publisher.Publish(ctx, events.Event{
		Type:       typ,
		SessionID:  c.ID(),
		DocumentID: c.Document().ID,
		Page:       page,
		At:         time.Now().UTC(),
	})
	if err != nil {
		m.opts.Log.Warn("event_publish_failed", logging.Fields{"session_id": c.ID(), "type": typ, "error_message": err.Error()})
	}
}
