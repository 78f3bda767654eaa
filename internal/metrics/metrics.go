// Package metrics exposes Prometheus counters for the catalog service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what handlers and middleware report to.
type Recorder interface {
	RecordRequest(route string, statusCode int, duration time.Duration)
	RecordTokenIssued()
	RecordTokenRejected()
	RecordBookCreated()
	RecordDuplicateISBN()
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	tokensIssued    prometheus.Counter
	tokensRejected  prometheus.Counter
	booksCreated    prometheus.Counter
	duplicateISBNs  prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "library_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "status_code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "library_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "library_tokens_issued_total",
			Help: "Access tokens issued.",
		}),
		tokensRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "library_tokens_rejected_total",
			Help: "Token requests rejected for a wrong secret key.",
		}),
		booksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "library_books_created_total",
			Help: "Books persisted through the API.",
		}),
		duplicateISBNs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "library_books_duplicate_total",
			Help: "Add-book requests answered as already existing.",
		}),
	}

	reg.MustRegister(
		c.requests,
		c.requestDuration,
		c.tokensIssued,
		c.tokensRejected,
		c.booksCreated,
		c.duplicateISBNs,
	)
	return c
}

func (c *Collector) RecordRequest(route string, statusCode int, duration time.Duration) {
	c.requests.WithLabelValues(route, strconv.Itoa(statusCode)).Inc()
	c.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (c *Collector) RecordTokenIssued()   { c.tokensIssued.Inc() }
func (c *Collector) RecordTokenRejected() { c.tokensRejected.Inc() }
func (c *Collector) RecordBookCreated()   { c.booksCreated.Inc() }
func (c *Collector) RecordDuplicateISBN() { c.duplicateISBNs.Inc() }

// Handler serves the metrics in gatherer for Prometheus scraping.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. Used where metrics are not wired, mostly tests.
type Nop struct{}

func (Nop) RecordRequest(string, int, time.Duration) {}
func (Nop) RecordTokenIssued()                       {}
func (Nop) RecordTokenRejected()                     {}
func (Nop) RecordBookCreated()                       {}
func (Nop) RecordDuplicateISBN()                     {}
