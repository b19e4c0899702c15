package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors for the quiz service. A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	assignments *prometheus.CounterVec
	submissions *prometheus.CounterVec
	scores      prometheus.Histogram
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		assignments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_assignments_total",
				Help: "Question assignments by outcome",
			},
			[]string{"outcome"},
		),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_submissions_total",
				Help: "Quiz submissions by outcome",
			},
			[]string{"outcome"},
		),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quiz_submission_score",
			Help:    "Scores of accepted submissions",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.assignments, m.submissions, m.scores)
	return m
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, endpoint string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}

// ObserveAssignment counts an assignment attempt.
func (m *Metrics) ObserveAssignment(outcome string) {
	if m == nil {
		return
	}
	m.assignments.WithLabelValues(outcome).Inc()
}

// ObserveSubmission counts a submission and, when accepted, its score.
func (m *Metrics) ObserveSubmission(outcome string, score int) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		m.scores.Observe(float64(score))
	}
}
