// Package metrics exposes Prometheus counters for enrichment runs, platform calls and the status server
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "streamtags"

// Collector owns a private registry so tests and multiple processes never collide
// A nil *Collector is valid and records nothing
type Collector struct {
	registry *prometheus.Registry

	records         *prometheus.CounterVec
	runs            *prometheus.CounterVec
	platformTotal   *prometheus.CounterVec
	platformLatency *prometheus.HistogramVec
	httpTotal       *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
}

// New constructs a collector with all series registered
func New() (*Collector, error) {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "records_total",
			Help:      "Streamer records processed by outcome.",
		}, []string{"platform", "outcome"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "runs_total",
			Help:      "Enrichment and analysis runs by result.",
		}, []string{"mode", "result"}),
		platformTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "platform",
			Name:      "requests_total",
			Help:      "Outbound platform API requests by status code.",
		}, []string{"platform", "status"}),
		platformLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "platform",
			Name:      "request_duration_seconds",
			Help:      "Latency of outbound platform API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"platform"}),
		httpTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Inbound status server requests.",
		}, []string{"method", "path", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of inbound status server requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}

	for _, col := range []prometheus.Collector{
		c.records, c.runs, c.platformTotal, c.platformLatency, c.httpTotal, c.httpLatency,
	} {
		if err := c.registry.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordOutcome counts one processed record (updated, unchanged, skipped, error)
func (c *Collector) RecordOutcome(platform, outcome string) {
	if c == nil {
		return
	}
	c.records.WithLabelValues(platform, outcome).Inc()
}

// RecordRun counts a finished run; mode is enrich or analyze, result ok, cancelled or failed
func (c *Collector) RecordRun(mode, result string) {
	if c == nil {
		return
	}
	c.runs.WithLabelValues(mode, result).Inc()
}

// ObserveRequest records one outbound platform call. status 0 means a transport error
func (c *Collector) ObserveRequest(platform string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.platformTotal.WithLabelValues(platform, strconv.Itoa(status)).Inc()
	c.platformLatency.WithLabelValues(platform).Observe(d.Seconds())
}

// InstrumentHandler wraps the provided handler to record HTTP metrics
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	if c == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		status := strconv.Itoa(rw.status)
		c.httpTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		c.httpLatency.WithLabelValues(r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
