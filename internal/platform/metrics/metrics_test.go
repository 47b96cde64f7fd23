package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())

	m.SessionStarted("due")
	m.SessionStarted("due")
	m.SessionStarted("shuffle")
	m.SetActiveSessions(2)
	m.AnswerGraded(true)
	m.AnswerGraded(false)
	m.AnswerGraded(false)
	m.ReviewRecorded()
	m.PersistenceFailed()
	m.SweepFinished(4, 1, 250*time.Millisecond)
	m.RequestServed("GET", "/api/owners/{ownerID}/stats", 200, time.Millisecond)
	m.RequestServed("POST", "/api/owners/{ownerID}/cards", 409, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionsStarted.WithLabelValues("due")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsStarted.WithLabelValues("shuffle")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ActiveSessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Answers.WithLabelValues("correct")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Answers.WithLabelValues("incorrect")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReviewsRecorded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistenceFailures))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.RemindersSent))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SweepFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.RequestsTotal.WithLabelValues("POST", "/api/owners/{ownerID}/cards", "4xx")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SweepDuration))
}

func TestMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.SessionStarted("due")
		m.SetActiveSessions(1)
		m.AnswerGraded(true)
		m.ReviewRecorded()
		m.PersistenceFailed()
		m.SweepFinished(1, 0, time.Second)
		m.RequestServed("GET", "/health", 200, time.Second)
	})
}

func TestStatusClass(t *testing.T) {
	t.Parallel()

	tests := map[int]string{200: "2xx", 204: "2xx", 302: "3xx", 404: "4xx", 503: "5xx"}
	for status, want := range tests {
		assert.Equal(t, want, statusClass(status), "status %d", status)
	}
}
