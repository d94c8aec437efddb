// Package metrics exposes Prometheus instrumentation for the HTTP layer,
// session resolution and the request workflow.
//
// Every method is nil-safe so packages can be built and tested without a
// registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	handler http.Handler

	requestDuration *prometheus.HistogramVec
	workflowOps     *prometheus.CounterVec
	inconsistencies *prometheus.CounterVec
	sessions        *prometheus.CounterVec
	signIns         *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clubhub_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		workflowOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubhub_workflow_operations_total",
			Help: "Request workflow operations by outcome",
		}, []string{"op", "outcome"}),
		inconsistencies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubhub_workflow_inconsistencies_total",
			Help: "Non-fatal workflow inconsistencies (orphaned accounts, missing clubs)",
		}, []string{"kind"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubhub_session_resolutions_total",
			Help: "Session resolution outcomes",
		}, []string{"outcome"}),
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubhub_sign_ins_total",
			Help: "Sign-in attempts by outcome",
		}, []string{"outcome"}),
	}

	registry.MustRegister(
		m.requestDuration,
		m.workflowOps,
		m.inconsistencies,
		m.sessions,
		m.signIns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return m.handler
}

// WorkflowOp counts one workflow operation.
func (m *Metrics) WorkflowOp(op, outcome string) {
	if m == nil {
		return
	}
	m.workflowOps.WithLabelValues(op, outcome).Inc()
}

// Inconsistency counts one non-fatal workflow inconsistency.
func (m *Metrics) Inconsistency(kind string) {
	if m == nil {
		return
	}
	m.inconsistencies.WithLabelValues(kind).Inc()
}

// SessionResolved counts one session resolution outcome.
func (m *Metrics) SessionResolved(outcome string) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(outcome).Inc()
}

// SignIn counts one sign-in attempt outcome.
func (m *Metrics) SignIn(outcome string) {
	if m == nil {
		return
	}
	m.signIns.WithLabelValues(outcome).Inc()
}

// Middleware records request duration labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		m.requestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).
			Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
