package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector exported on /metrics.
var Registry = prometheus.NewRegistry()

var (
	vendorRequests = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rc_analytics",
		Subsystem: "vendor",
		Name:      "request_duration_seconds",
		Help:      "Latency of RingCentral API requests by endpoint and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint", "status"})

	webhookIngested = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rc_analytics",
		Subsystem: "webhook",
		Name:      "events_total",
		Help:      "Webhook deliveries by kind and outcome.",
	}, []string{"kind", "outcome"})

	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rc_analytics",
		Subsystem: "analytics",
		Name:      "cache_lookups_total",
		Help:      "Analytics cache lookups by result.",
	}, []string{"result"})

	reportsExported = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rc_analytics",
		Subsystem: "report",
		Name:      "exports_total",
		Help:      "Report exports by format.",
	}, []string{"format"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		vendorRequests,
		webhookIngested,
		cacheLookups,
		reportsExported,
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveVendorRequest records one vendor call. status 0 means the request never got a response.
func ObserveVendorRequest(endpoint string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	vendorRequests.WithLabelValues(endpoint, label).Observe(d.Seconds())
}

func WebhookIngested(kind, outcome string) {
	webhookIngested.WithLabelValues(kind, outcome).Inc()
}

func CacheLookup(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

func ReportExported(format string) {
	reportsExported.WithLabelValues(format).Inc()
}
