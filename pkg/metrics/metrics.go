package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	pagesRendered  *prometheus.CounterVec
	eventsTracked  *prometheus.CounterVec
	editorSubmits  *prometheus.CounterVec
	eventsIngested prometheus.Counter
}

func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		pagesRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "pages_rendered_total", Help: "Public pages rendered by page kind and theme.",
		}, []string{"page", "theme"}),
		eventsTracked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "analytics_events_tracked_total", Help: "Analytics events accepted by type.",
		}, []string{"event_type"}),
		editorSubmits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "editor_submissions_total", Help: "Case study editor submissions by mode and result.",
		}, []string{"mode", "result"}),
		eventsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "analytics_events_ingested_total", Help: "Analytics events persisted by the worker.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.pagesRendered, m.eventsTracked, m.editorSubmits, m.eventsIngested,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) PageRendered(page, theme string) {
	m.pagesRendered.WithLabelValues(page, theme).Inc()
}

func (m *Metrics) EventTracked(eventType string) {
	m.eventsTracked.WithLabelValues(eventType).Inc()
}

func (m *Metrics) EventIngested() {
	m.eventsIngested.Inc()
}

func (m *Metrics) EditorSubmitted(mode, result string) {
	m.editorSubmits.WithLabelValues(mode, result).Inc()
}

// Middleware records request counts and latency keyed by the matched route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
