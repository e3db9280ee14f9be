package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	analysisRequestsTotal *prometheus.CounterVec
	analysisDuration      *prometheus.HistogramVec
	strategySourceTotal   *prometheus.CounterVec
	strategyAngles        *prometheus.HistogramVec
	gateDenialsTotal      *prometheus.CounterVec
	recommendationsTotal  *prometheus.CounterVec
	cacheLookupsTotal     *prometheus.CounterVec
	fallbackRunsTotal     *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "casecore",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "casecore",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "casecore",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	analysisRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "casecore",
			Subsystem: "analysis",
			Name:      "requests_total",
			Help:      "Total successful analysis requests.",
		},
		[]string{"service", "endpoint"},
	)
	analysisDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "casecore",
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Analysis execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	strategySourceTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "casecore",
			Subsystem: "analysis",
			Name:      "strategy_source_total",
			Help:      "Total strategy reports served by derivation source.",
		},
		[]string{"service", "endpoint", "source"},
	)
	strategyAngles := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "casecore",
			Subsystem: "analysis",
			Name:      "strategy_angles",
			Help:      "Distribution of derived angles per strategy report.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service", "endpoint"},
	)
	gateDenialsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "casecore",
			Subsystem: "analysis",
			Name:      "gate_denials_total",
			Help:      "Total analysis requests denied by the admission gate.",
		},
		[]string{"service", "endpoint"},
	)
	recommendationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "casecore",
			Subsystem: "analysis",
			Name:      "option_recommendations_total",
			Help:      "Total recommended dispositive options by risk level.",
		},
		[]string{"service", "endpoint", "risk"},
	)
	cacheLookupsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "casecore",
			Subsystem: "analysis",
			Name:      "cache_lookups_total",
			Help:      "Total fallback cache lookups by outcome.",
		},
		[]string{"service", "outcome"},
	)
	fallbackRunsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "casecore",
			Subsystem: "analysis",
			Name:      "fallback_runs_total",
			Help:      "Total generative fallback invocations by report source.",
		},
		[]string{"service", "source"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		analysisRequestsTotal,
		analysisDuration,
		strategySourceTotal,
		strategyAngles,
		gateDenialsTotal,
		recommendationsTotal,
		cacheLookupsTotal,
		fallbackRunsTotal,
	)

	return &HTTPServerMetrics{
		registry:              registry,
		requestTotal:          requestTotal,
		requestDuration:       requestDuration,
		requestInFlight:       requestInFlight,
		analysisRequestsTotal: analysisRequestsTotal,
		analysisDuration:      analysisDuration,
		strategySourceTotal:   strategySourceTotal,
		strategyAngles:        strategyAngles,
		gateDenialsTotal:      gateDenialsTotal,
		recommendationsTotal:  recommendationsTotal,
		cacheLookupsTotal:     cacheLookupsTotal,
		fallbackRunsTotal:     fallbackRunsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/v1/cases/") {
		return path
	}
	rest := strings.TrimPrefix(path, "/v1/cases/")
	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return "/v1/cases/{case_id}"
	}
	return "/v1/cases/{case_id}" + rest[slash:]
}

func (m *HTTPServerMetrics) RecordStrategyObservation(service, endpoint, source string, angleCount int, duration time.Duration) {
	if source == "" {
		source = "unknown"
	}
	m.analysisRequestsTotal.WithLabelValues(service, endpoint).Inc()
	m.analysisDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())
	m.strategySourceTotal.WithLabelValues(service, endpoint, source).Inc()
	m.strategyAngles.WithLabelValues(service, endpoint).Observe(float64(angleCount))
}

func (m *HTTPServerMetrics) RecordGateDenial(service, endpoint string) {
	m.gateDenialsTotal.WithLabelValues(service, endpoint).Inc()
}

func (m *HTTPServerMetrics) RecordOptionRecommendation(service, endpoint, risk string) {
	if risk == "" {
		risk = "unknown"
	}
	m.recommendationsTotal.WithLabelValues(service, endpoint, risk).Inc()
}

func (m *HTTPServerMetrics) RecordCacheLookup(service string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookupsTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordFallbackRun(service, source string) {
	if source == "" {
		source = "unknown"
	}
	m.fallbackRunsTotal.WithLabelValues(service, source).Inc()
}

// EngineMeter binds the engine's measurement hooks to this process's
// registry under the given service label.
func (m *HTTPServerMetrics) EngineMeter(service string) *EngineMeter {
	return &EngineMeter{
		recordCacheLookup: func(hit bool) { m.RecordCacheLookup(service, hit) },
		recordFallbackRun: func(source string) { m.RecordFallbackRun(service, source) },
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
