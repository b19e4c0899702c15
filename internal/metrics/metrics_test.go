package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest(http.MethodPost, "/api/quiz/submit", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest(http.MethodPost, "/api/quiz/submit", http.StatusOK, 30*time.Millisecond)
	m.ObserveSubmission("ok", 7)
	m.ObserveSubmission("already_attempted", 0)
	m.ObserveAssignment("ok")

	if got := counterValue(t, reg, "http_requests_total", map[string]string{"method": "POST", "endpoint": "/api/quiz/submit", "status": "200"}); got != 2 {
		t.Fatalf("expected 2 requests, got %v", got)
	}
	if got := counterValue(t, reg, "quiz_submissions_total", map[string]string{"outcome": "already_attempted"}); got != 1 {
		t.Fatalf("expected 1 rejected submission, got %v", got)
	}
	if got := counterValue(t, reg, "quiz_assignments_total", map[string]string{"outcome": "ok"}); got != 1 {
		t.Fatalf("expected 1 assignment, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest(http.MethodGet, "/healthz", http.StatusOK, time.Millisecond)
	m.ObserveAssignment("ok")
	m.ObserveSubmission("ok", 1)
}
