// Package metrics exposes Prometheus counters for HTTP traffic and for the
// directory's user actions.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered on one registry. A nil *Metrics
// records nothing, so handlers can be built without it in tests.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	actionsTotal        *prometheus.CounterVec
	trackedTotal        *prometheus.CounterVec
	trackingDropped     prometheus.CounterFunc
}

// New registers the collectors. droppedEvents reports the tracking queue's
// drop count and may be nil.
func New(droppedEvents func() int64) (*Metrics, error) {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)
	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Time taken for HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	m.actionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_actions_total",
			Help: "User actions by kind and outcome",
		},
		[]string{"action", "outcome"}, // action: bookmark, upvote, review, submit, subscribe; outcome: success, error, rejected
	)

	m.trackedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracking_events_total",
			Help: "Processed visit and click events by outcome",
		},
		[]string{"kind", "outcome"}, // outcome: stored, deduped, error
	)

	collectorsToRegister := []prometheus.Collector{
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.actionsTotal,
		m.trackedTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	if droppedEvents != nil {
		m.trackingDropped = prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Name: "tracking_events_dropped_total",
				Help: "Tracking events discarded because the queue was full",
			},
			func() float64 { return float64(droppedEvents()) },
		)
		collectorsToRegister = append(collectorsToRegister, m.trackingDropped)
	}

	for _, c := range collectorsToRegister {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Middleware counts requests by route pattern, not raw path, to keep
// label cardinality bounded.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Action records the outcome of a user action.
func (m *Metrics) Action(action, outcome string) {
	if m == nil {
		return
	}
	m.actionsTotal.WithLabelValues(action, outcome).Inc()
}

// Tracked records a processed tracking event. kind is "visit" or "click".
func (m *Metrics) Tracked(kind string, stored bool, err error) {
	if m == nil {
		return
	}
	outcome := "stored"
	switch {
	case err != nil:
		outcome = "error"
	case !stored:
		outcome = "deduped"
	}
	m.trackedTotal.WithLabelValues(kind, outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
