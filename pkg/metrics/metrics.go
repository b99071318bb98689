package metrics

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "faque"

// knownMethods bounds the method label; anything else is reported as "other".
var knownMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}

// Metrics holds faque's collectors and their registry.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	requests       *prometheus.CounterVec
	saves          *prometheus.CounterVec
	saveDuration   prometheus.Histogram
	historyDropped prometheus.Counter
	historyErrors  prometheus.Counter
}

// New creates Metrics with a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of captured requests.",
		}, []string{"method", "matched"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_saves_total",
			Help:      "Total number of route snapshot writes.",
		}, []string{"result"}),
		saveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_save_duration_seconds",
			Help:      "Duration in seconds of a route snapshot write.",
			Buckets:   prometheus.DefBuckets,
		}),
		historyDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_dropped_total",
			Help:      "Total number of recorded requests not handed to the history writer.",
		}),
		historyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_write_errors_total",
			Help:      "Total number of failed request history writes.",
		}),
	}

	start := time.Now()
	m.registry.MustRegister(
		m.requests,
		m.saves,
		m.saveDuration,
		m.historyDropped,
		m.historyErrors,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Seconds since the metrics were created.",
		}, func() float64 { return time.Since(start).Seconds() }),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// Handler returns the exposition handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return m.handler
}

// TrackRoutes reports the route count through fn at scrape time.
func (m *Metrics) TrackRoutes(fn func() int) {
	m.gaugeFunc("routes", "Number of routes in the table.", fn)
}

// TrackRecorded reports the history size through fn at scrape time.
func (m *Metrics) TrackRecorded(fn func() int) {
	m.gaugeFunc("recorded_requests", "Number of requests held in the history.", fn)
}

func (m *Metrics) gaugeFunc(name, help string, fn func() int) {
	if m == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, func() float64 { return float64(fn()) }))
}

// ObserveRequest counts one captured request.
func (m *Metrics) ObserveRequest(method string, matched bool) {
	if m == nil {
		return
	}
	method = strings.ToUpper(method)
	if !slices.Contains(knownMethods, method) {
		method = "other"
	}
	m.requests.WithLabelValues(method, strconv.FormatBool(matched)).Inc()
}

// ObserveSave records one route snapshot write attempt.
func (m *Metrics) ObserveSave(err error, took time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.saves.WithLabelValues(result).Inc()
	m.saveDuration.Observe(took.Seconds())
}

// HistoryDropped counts a record the history writer missed.
func (m *Metrics) HistoryDropped() {
	if m == nil {
		return
	}
	m.historyDropped.Inc()
}

// HistoryWriteFailed counts a failed history write.
func (m *Metrics) HistoryWriteFailed() {
	if m == nil {
		return
	}
	m.historyErrors.Inc()
}
