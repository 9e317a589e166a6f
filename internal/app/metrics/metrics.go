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
			Namespace: "studio_platform",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studio_platform",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "studio_platform",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	storeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studio_platform",
			Subsystem: "store",
			Name:      "requests_total",
			Help:      "Total number of document store round trips.",
		},
		[]string{"table", "outcome"},
	)

	sessionSignIns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studio_platform",
			Subsystem: "session",
			Name:      "sign_ins_total",
			Help:      "Total number of sign-in attempts.",
		},
		[]string{"outcome"},
	)

	relayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studio_platform",
			Subsystem: "relay",
			Name:      "requests_total",
			Help:      "Total number of outbound relay calls.",
		},
		[]string{"relay", "success"},
	)

	relayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "studio_platform",
			Subsystem: "relay",
			Name:      "request_duration_seconds",
			Help:      "Duration of outbound relay calls.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"relay"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		storeRequests,
		sessionSignIns,
		relayRequests,
		relayDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordStoreRequest records a document store round trip per table.
func RecordStoreRequest(table, outcome string) {
	if table == "" {
		table = "unknown"
	}
	storeRequests.WithLabelValues(table, outcome).Inc()
}

// RecordSignIn records a sign-in attempt outcome.
func RecordSignIn(outcome string) {
	sessionSignIns.WithLabelValues(outcome).Inc()
}

// RecordRelayRequest records an outbound relay call.
func RecordRelayRequest(relay string, duration time.Duration, success bool) {
	if relay == "" {
		relay = "unknown"
	}
	if duration <= 0 {
		duration = time.Millisecond
	}
	result := "false"
	if success {
		result = "true"
	}
	relayRequests.WithLabelValues(relay, result).Inc()
	relayDuration.WithLabelValues(relay).Observe(duration.Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses ids so the path label stays low-cardinality.
func canonicalPath(raw string) string {
	if raw == "" || raw == "/" {
		return "/"
	}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] != "api" {
		return "/" + parts[0]
	}
	if len(parts) == 1 {
		return "/api"
	}
	resource := parts[1]
	if len(parts) == 2 {
		return "/api/" + resource
	}
	if parts[2] == "reorder" {
		return "/api/" + resource + "/reorder"
	}
	return "/api/" + resource + "/:id"
}
