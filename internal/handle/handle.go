// Package handle issues locally-addressable references to fetched page bytes.
//
// A handle is live from Acquire until Release. Releasing a handle that is
// unknown or already released returns ErrUnknownHandle, so callers can detect
// double releases instead of masking them.
package handle

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrUnknownHandle is returned for handles that were never issued or are already released.
var ErrUnknownHandle = errors.New("unknown or released handle")

// Handle identifies a live resource.
type Handle struct {
	ID          string
	ContentType string
	Size        int
}

// Resource is the content behind a handle.
type Resource struct {
	Handle
	Data []byte
}

// Registry stores live resources. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	items map[string]Resource

	live     prometheus.Gauge
	released prometheus.Counter
}

// NewRegistry creates a registry. Metrics are registered with reg when it is not nil.
func NewRegistry(reg prometheus.Registerer) (*Registry, error) {
	r := &Registry{
		items: make(map[string]Resource),
		live: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "viewer_handles_live",
			Help: "Number of page resource handles currently held.",
		}),
		released: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "viewer_handles_released_total",
			Help: "Total number of page resource handles released.",
		}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{r.live, r.released} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// Acquire stores data and returns a new live handle.
func (r *Registry) Acquire(data []byte, contentType string) Handle {
	h := Handle{ID: uuid.NewString(), ContentType: contentType, Size: len(data)}

	r.mu.Lock()
	r.items[h.ID] = Resource{Handle: h, Data: data}
	r.mu.Unlock()

	r.live.Inc()
	return h
}

// Open returns the resource behind a live handle.
func (r *Registry) Open(id string) (Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.items[id]
	if !ok {
		return Resource{}, ErrUnknownHandle
	}
	return res, nil
}

// Release frees a handle. A second release of the same handle fails.
func (r *Registry) Release(id string) error {
	r.mu.Lock()
	_, ok := r.items[id]
	delete(r.items, id)
	r.mu.Unlock()

	if !ok {
		return ErrUnknownHandle
	}
	r.live.Dec()
	r.released.Inc()
	return nil
}

// Len reports the number of live handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// URL is the HTTP path a client uses to read a handle's bytes.
func URL(id string) string {
	return "/handles/" + id
}
