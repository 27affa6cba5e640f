package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface, the solver poll loop and the layout/detection pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	pollTotal       *prometheus.CounterVec
	layoutDuration  prometheus.Observer
	conflictGauge   *prometheus.GaugeVec
	rosterHits      prometheus.Counter
	rosterMisses    prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	pollTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solver_polls_total",
		Help: "Total number of solver status polls",
	}, []string{"outcome"})

	layoutDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_layout_duration_seconds",
		Help:    "Duration of grid layout passes",
		Buckets: prometheus.DefBuckets,
	})

	conflictGauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schedule_conflicts",
		Help: "Conflicts detected in the current schedule by type",
	}, []string{"type"})

	rosterHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roster_cache_hits_total",
		Help: "Total roster cache hits",
	})

	rosterMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roster_cache_misses_total",
		Help: "Total roster cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, pollTotal, layoutDuration, conflictGauge, rosterHits, rosterMisses, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		pollTotal:       pollTotal,
		layoutDuration:  layoutDuration,
		conflictGauge:   conflictGauge,
		rosterHits:      rosterHits,
		rosterMisses:    rosterMisses,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordSolverPoll counts one poll attempt by outcome.
func (m *MetricsService) RecordSolverPoll(ok bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.pollTotal.WithLabelValues(outcome).Inc()
}

// ObserveLayout records the duration of one grid layout pass.
func (m *MetricsService) ObserveLayout(duration time.Duration) {
	if m == nil || m.layoutDuration == nil {
		return
	}
	m.layoutDuration.Observe(duration.Seconds())
}

// SetConflictCounts publishes hard/soft conflict totals for the current
// schedule.
func (m *MetricsService) SetConflictCounts(conflicts []models.Conflict) {
	if m == nil {
		return
	}
	hard, soft := 0, 0
	for _, c := range conflicts {
		if c.Type == models.ConflictTypeHard {
			hard++
		} else {
			soft++
		}
	}
	m.conflictGauge.WithLabelValues(string(models.ConflictTypeHard)).Set(float64(hard))
	m.conflictGauge.WithLabelValues(string(models.ConflictTypeSoft)).Set(float64(soft))
}

// RecordRosterLookup counts a roster cache hit or miss.
func (m *MetricsService) RecordRosterLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.rosterHits.Inc()
	} else {
		m.rosterMisses.Inc()
	}
}
