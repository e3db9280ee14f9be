package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	queueLag        *prometheus.HistogramVec

	cacheLookupsTotal *prometheus.CounterVec
	fallbackRunsTotal *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "casecore",
			Subsystem: "worker",
			Name:      "case_process_total",
			Help:      "Total processed case analyses by status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "casecore",
			Subsystem: "worker",
			Name:      "case_process_duration_seconds",
			Help:      "Case analysis duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "casecore",
			Subsystem: "worker",
			Name:      "case_process_in_flight",
			Help:      "Number of in-flight case analyses.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "casecore",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between documents-updated publication and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
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

	registry.MustRegister(processTotal, processDuration, processInFlight, queueLag, cacheLookupsTotal, fallbackRunsTotal)

	return &WorkerMetrics{
		registry:          registry,
		processTotal:      processTotal,
		processDuration:   processDuration,
		processInFlight:   processInFlight,
		queueLag:          queueLag,
		cacheLookupsTotal: cacheLookupsTotal,
		fallbackRunsTotal: fallbackRunsTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartCase() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishCase(service string, duration time.Duration, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.processTotal.WithLabelValues(service, status).Inc()
	m.processDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}

func (m *WorkerMetrics) RecordCacheLookup(service string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookupsTotal.WithLabelValues(service, outcome).Inc()
}

func (m *WorkerMetrics) RecordFallbackRun(service, source string) {
	if source == "" {
		source = "unknown"
	}
	m.fallbackRunsTotal.WithLabelValues(service, source).Inc()
}

// EngineMeter binds the engine's measurement hooks to this process's
// registry under the given service label.
func (m *WorkerMetrics) EngineMeter(service string) *EngineMeter {
	return &EngineMeter{
		recordCacheLookup: func(hit bool) { m.RecordCacheLookup(service, hit) },
		recordFallbackRun: func(source string) { m.RecordFallbackRun(service, source) },
	}
}
