package viewer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Fetch kinds used as the "kind" label.
const (
	fetchPrimary  = "primary"
	fetchPrefetch = "prefetch"
)

// Metrics holds viewer collectors. A nil *Metrics records nothing.
type Metrics struct {
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	cacheHits     prometheus.Counter
	sessions      prometheus.Gauge
}

// NewMetrics creates the viewer collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewer_page_fetches_total",
				Help: "Page fetches issued by viewer sessions.",
			},
			[]string{"kind", "result"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "viewer_page_fetch_duration_seconds",
				Help:    "Duration of page fetches.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "viewer_page_cache_hits_total",
			Help: "Navigations served from a session's page cache.",
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "viewer_sessions_active",
			Help: "Open viewer sessions.",
		}),
	}
	for _, c := range []prometheus.Collector{m.fetches, m.fetchDuration, m.cacheHits, m.sessions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeFetch(kind string, err error, d time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.fetches.WithLabelValues(kind, result).Inc()
	m.fetchDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *Metrics) cacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

func (m *Metrics) sessionOpened() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

func (m *Metrics) sessionClosed() {
	if m == nil {
		return
	}
	m.sessions.Dec()
}
