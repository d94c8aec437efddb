package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.WorkflowOp("approve_club_join", "ok")
	m.Inconsistency("club_not_found")
	m.SessionResolved("established")
	m.SignIn("ok")

	called := false
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if !called {
		t.Error("nil middleware should pass through")
	}
}

func TestCounters(t *testing.T) {
	m := New()
	m.WorkflowOp("approve_club_join", "ok")
	m.WorkflowOp("approve_club_join", "ok")
	m.Inconsistency("club_not_found")

	if got := testutil.ToFloat64(m.workflowOps.WithLabelValues("approve_club_join", "ok")); got != 2 {
		t.Errorf("workflow ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.inconsistencies.WithLabelValues("club_not_found")); got != 1 {
		t.Errorf("inconsistencies = %v, want 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.SessionResolved("pending_approval")

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/clubs", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	r.Handle("/metrics", m.Handler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/clubs", nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{
		`clubhub_session_resolutions_total{outcome="pending_approval"} 1`,
		`clubhub_http_request_duration_seconds_count{method="GET",route="/clubs",status="418"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
