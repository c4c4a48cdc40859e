package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stockboard",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockboard",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stockboard",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		},
		[]string{"method", "path"},
	)

	itemsStored = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stockboard",
			Subsystem: "store",
			Name:      "items",
			Help:      "Number of items currently held by the store.",
		},
	)

	realtimeSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stockboard",
			Subsystem: "realtime",
			Name:      "subscribers",
			Help:      "Number of connected realtime subscribers.",
		},
	)

	realtimeEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockboard",
			Subsystem: "realtime",
			Name:      "events_published_total",
			Help:      "Total number of change events published.",
		},
		[]string{"event"},
	)

	realtimeDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stockboard",
			Subsystem: "realtime",
			Name:      "subscribers_dropped_total",
			Help:      "Subscribers disconnected because their send buffer was full.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		itemsStored,
		realtimeSubscribers,
		realtimeEvents,
		realtimeDropped,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// IncrementInFlight and DecrementInFlight track requests being served.
func IncrementInFlight() {
	httpInFlight.Inc()
}

func DecrementInFlight() {
	httpInFlight.Dec()
}

// RecordHTTPRequest records a completed request. path should be a route
// template; raw paths are reduced with CanonicalPath.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if !strings.Contains(path, "{") {
		path = CanonicalPath(path)
	}
	method = strings.ToUpper(method)
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SetItems records the current store size.
func SetItems(n int) {
	itemsStored.Set(float64(n))
}

// SubscriberConnected and SubscriberDisconnected track live websocket viewers.
func SubscriberConnected() {
	realtimeSubscribers.Inc()
}

func SubscriberDisconnected() {
	realtimeSubscribers.Dec()
}

// RecordEvent counts a published change event.
func RecordEvent(event string) {
	if event == "" {
		event = "unknown"
	}
	realtimeEvents.WithLabelValues(event).Inc()
}

// RecordDroppedSubscriber counts a subscriber evicted for falling behind.
func RecordDroppedSubscriber() {
	realtimeDropped.Inc()
}

// CanonicalPath collapses item ids so label cardinality stays bounded.
func CanonicalPath(raw string) string {
	if raw == "" || raw == "/" {
		return "/"
	}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] != "items" {
		return "/" + parts[0]
	}
	if len(parts) == 1 {
		return "/items"
	}
	return "/items/:id"
}
