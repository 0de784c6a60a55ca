// Package metrics exposes Prometheus counters for the portal.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what services and middleware depend on.
type Recorder interface {
	RecordGateDecision(requirement, decision string)
	RecordProfileCreated()
	RecordCheckout(outcome string)
	RecordNotification(kind string, err error)
	RecordHTTPRequest(method string, status int, duration time.Duration)
}

type Collector struct {
	gateDecisions   *prometheus.CounterVec
	profilesCreated prometheus.Counter
	checkouts       *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpLatency     prometheus.Histogram
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_gate_decisions_total",
			Help: "Access gate decisions by route requirement and outcome.",
		}, []string{"requirement", "decision"}),
		profilesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_profiles_created_total",
			Help: "Profiles lazily created on first access.",
		}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_checkouts_total",
			Help: "Checkout attempts by outcome.",
		}, []string{"outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_notifications_total",
			Help: "Email notifications by kind and result.",
		}, []string{"kind", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_http_requests_total",
			Help: "HTTP requests by method and status.",
		}, []string{"method", "status"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "portal_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(c.gateDecisions, c.profilesCreated, c.checkouts, c.notifications, c.httpRequests, c.httpLatency)
	return c
}

func (c *Collector) RecordGateDecision(requirement, decision string) {
	c.gateDecisions.WithLabelValues(requirement, decision).Inc()
}

func (c *Collector) RecordProfileCreated() {
	c.profilesCreated.Inc()
}

func (c *Collector) RecordCheckout(outcome string) {
	c.checkouts.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordNotification(kind string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	c.notifications.WithLabelValues(kind, result).Inc()
}

func (c *Collector) RecordHTTPRequest(method string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.httpLatency.Observe(duration.Seconds())
}

// Handler serves the Prometheus scrape endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything; handy in tests.
type Nop struct{}

func (Nop) RecordGateDecision(string, string)            {}
func (Nop) RecordProfileCreated()                        {}
func (Nop) RecordCheckout(string)                        {}
func (Nop) RecordNotification(string, error)             {}
func (Nop) RecordHTTPRequest(string, int, time.Duration) {}
