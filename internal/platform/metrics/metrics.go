// Package metrics exposes the Prometheus instruments recorded by the
// review engine, the reminder sweep and the HTTP layer.
//
// All methods are safe to call on a nil *Metrics, so components can be
// constructed without instrumentation in tests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "scrywords"

// Metrics holds all Prometheus metrics for scry-words.
// Pass to components that need to record metrics.
type Metrics struct {
	SessionsStarted     *prometheus.CounterVec
	ActiveSessions      prometheus.Gauge
	Answers             *prometheus.CounterVec
	ReviewsRecorded     prometheus.Counter
	PersistenceFailures prometheus.Counter
	RemindersSent       prometheus.Counter
	SweepFailures       prometheus.Counter
	SweepDuration       prometheus.Histogram
	RequestsTotal       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
}

// New creates and registers all metrics with the given registry.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		SessionsStarted: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "review_sessions_started_total",
				Help:      "Review sessions started, by mode",
			},
			[]string{"mode"}, // mode=due/shuffle
		),
		ActiveSessions: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "review_sessions_active",
				Help:      "Number of owners with an open review session",
			},
		),
		Answers: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "review_answers_total",
				Help:      "Graded answers, by result",
			},
			[]string{"result"}, // result=correct/incorrect
		),
		ReviewsRecorded: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reviews_recorded_total",
				Help:      "Successful reviews persisted to the card store",
			},
		),
		PersistenceFailures: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "review_persistence_failures_total",
				Help:      "Reviews that could not be persisted",
			},
		),
		RemindersSent: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reminders_sent_total",
				Help:      "Due reminders delivered by the sweep",
			},
		),
		SweepFailures: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sweep_owner_failures_total",
				Help:      "Owners skipped by a sweep because of an error",
			},
		),
		SweepDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sweep_duration_seconds",
				Help:      "Duration of a full reminder sweep",
				Buckets:   prometheus.DefBuckets,
			},
		),
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// SessionStarted records a new review session in the given mode.
func (m *Metrics) SessionStarted(mode string) {
	if m == nil {
		return
	}
	m.SessionsStarted.WithLabelValues(mode).Inc()
}

// SetActiveSessions records the number of open sessions.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

// AnswerGraded records the outcome of a typed answer.
func (m *Metrics) AnswerGraded(correct bool) {
	if m == nil {
		return
	}
	result := "incorrect"
	if correct {
		result = "correct"
	}
	m.Answers.WithLabelValues(result).Inc()
}

// ReviewRecorded counts a persisted successful review.
func (m *Metrics) ReviewRecorded() {
	if m == nil {
		return
	}
	m.ReviewsRecorded.Inc()
}

// PersistenceFailed counts a review that could not be written.
func (m *Metrics) PersistenceFailed() {
	if m == nil {
		return
	}
	m.PersistenceFailures.Inc()
}

// SweepFinished records the outcome of one sweep run.
func (m *Metrics) SweepFinished(notified, failed int, took time.Duration) {
	if m == nil {
		return
	}
	m.RemindersSent.Add(float64(notified))
	m.SweepFailures.Add(float64(failed))
	m.SweepDuration.Observe(took.Seconds())
}

// RequestServed records one HTTP request.
func (m *Metrics) RequestServed(method, route string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, statusClass(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
