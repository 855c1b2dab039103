package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "m2sync"

// Metrics holds the sync and HTTP collectors of one process.
type Metrics struct {
	registry *prometheus.Registry

	DeliveryFailures *prometheus.CounterVec
	SyncOutcomes     *prometheus.CounterVec
	DeliveryAttempts prometheus.Histogram

	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "delivery_failures_total",
		Help:      "Magento2 delivery failures by class and whether they were retried.",
	}, []string{"class", "retrying"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_outcomes_total",
		Help:      "Finished status syncs by outcome.",
	}, []string{"outcome"})
	attempts := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "delivery_attempts",
		Help:      "Delivery attempts per finished status sync.",
		Buckets:   []float64{1, 2, 3, 4, 5, 8},
	})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	reg := prometheus.NewRegistry()
	reg.MustRegister(failures, outcomes, attempts, requests, latency)

	return &Metrics{
		registry:         reg,
		DeliveryFailures: failures,
		SyncOutcomes:     outcomes,
		DeliveryAttempts: attempts,
		Requests:         requests,
		LatencyMS:        latency,
	}
}

// RecordFailure counts one failed delivery attempt.
func (m *Metrics) RecordFailure(class string, retrying bool) {
	m.DeliveryFailures.WithLabelValues(class, strconv.FormatBool(retrying)).Inc()
}

// RecordOutcome counts one finished delivery.
func (m *Metrics) RecordOutcome(outcome string, attempts int) {
	m.SyncOutcomes.WithLabelValues(outcome).Inc()
	m.DeliveryAttempts.Observe(float64(attempts))
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(handler string, status int, latencyMS float64) {
	m.Requests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
	m.LatencyMS.WithLabelValues(handler).Observe(latencyMS)
}

// Handler exposes the registry in the text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
