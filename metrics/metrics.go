package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "gosocial",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gosocial",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"route", "method", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gosocial",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"route", "method"},
	)

	rejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gosocial",
			Subsystem: "api",
			Name:      "rejections_total",
			Help:      "Requests rejected by account or message validation, by reason.",
		},
		[]string{"reason"},
	)
)

func init() {
	Registry.MustRegister(httpInFlight, httpRequests, httpDuration, rejections)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Instrument wraps next with request counting, timing and in-flight tracking
// labelled with the route pattern rather than the raw path.
func Instrument(route string, next http.Handler) http.Handler {
	labels := prometheus.Labels{"route": route}
	h := promhttp.InstrumentHandlerDuration(httpDuration.MustCurryWith(labels), next)
	h = promhttp.InstrumentHandlerCounter(httpRequests.MustCurryWith(labels), h)
	return promhttp.InstrumentHandlerInFlight(httpInFlight, h)
}

// RecordRejection counts a request refused with a client error. reason is a
// fixed snake_case key, never error text.
func RecordRejection(reason string) {
	rejections.WithLabelValues(reason).Inc()
}
