// Package metrics provides Prometheus metrics for parseview.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service. Each instance owns its
// registry so tests can create as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Upload and vendor metrics
	UploadsTotal       *prometheus.CounterVec
	VendorCallsTotal   *prometheus.CounterVec
	VendorCallDuration prometheus.Histogram
	ElementsParsed     prometheus.Histogram

	// Store metrics
	StoreOperationsTotal *prometheus.CounterVec
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	m := &Metrics{registry: reg}

	m.HTTPRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parseview_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.HTTPRequestDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parseview_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	m.UploadsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parseview_uploads_total",
			Help: "Total number of uploads by outcome",
		},
		[]string{"outcome"},
	)

	m.VendorCallsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parseview_vendor_calls_total",
			Help: "Total number of vendor parse calls by outcome",
		},
		[]string{"outcome"},
	)

	// Vendor calls on large documents can take minutes.
	m.VendorCallDuration = f.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "parseview_vendor_call_duration_seconds",
			Help:    "Duration of vendor parse calls in seconds",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	m.ElementsParsed = f.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "parseview_elements_per_document",
			Help:    "Number of elements returned per parsed document",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	m.StoreOperationsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parseview_store_operations_total",
			Help: "Total number of result store operations",
		},
		[]string{"operation", "status"},
	)

	return m
}

// Handler returns the HTTP handler that exposes this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records a completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordUpload records the outcome of an upload: success, validation_error, vendor_error, conflict or error.
func (m *Metrics) RecordUpload(outcome string) {
	m.UploadsTotal.WithLabelValues(outcome).Inc()
}

// RecordVendorCall records one vendor call.
func (m *Metrics) RecordVendorCall(outcome string, duration time.Duration, elements int) {
	m.VendorCallsTotal.WithLabelValues(outcome).Inc()
	m.VendorCallDuration.Observe(duration.Seconds())
	if outcome == "success" {
		m.ElementsParsed.Observe(float64(elements))
	}
}

// RecordStoreOperation records a result store operation.
func (m *Metrics) RecordStoreOperation(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.StoreOperationsTotal.WithLabelValues(operation, status).Inc()
}
