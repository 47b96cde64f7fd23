package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-words/internal/events"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReminder(t *testing.T) *events.Event {
	t.Helper()
	event, err := events.NewEvent(events.TypeDueReminder, events.DueReminder{
		OwnerID:  7,
		DueCount: 2,
		RunID:    uuid.New(),
	}, time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return event
}

func TestHandleEvent_Delivers(t *testing.T) {
	t.Parallel()

	received := make(chan *http.Request, 1)
	var payload events.Event
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		received <- r
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	event := newReminder(t)
	ctx := logger.WithRequestID(context.Background(), "req-123")

	err := NewHandler(server.URL, time.Second, nil).HandleEvent(ctx, event)
	require.NoError(t, err)

	r := <-received
	assert.Equal(t, http.MethodPost, r.Method)
	assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
	assert.Equal(t, event.ID.String(), r.Header.Get("X-Event-ID"))
	assert.Equal(t, events.TypeDueReminder, r.Header.Get("X-Event-Type"))
	assert.Equal(t, "req-123", r.Header.Get("X-Request-ID"))

	assert.Equal(t, event.ID, payload.ID)
	var reminder events.DueReminder
	require.NoError(t, payload.UnmarshalPayload(&reminder))
	assert.Equal(t, int64(7), reminder.OwnerID)
	assert.Equal(t, 2, reminder.DueCount)
}

func TestHandleEvent_Failures(t *testing.T) {
	t.Parallel()

	t.Run("non-2xx status", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		log, logBuf := logger.GetTestLogger(t)
		err := NewHandler(server.URL, time.Second, log).HandleEvent(context.Background(), newReminder(t))
		assert.ErrorIs(t, err, ErrDeliveryFailed)
		assert.Contains(t, err.Error(), "502")
		logger.AssertLogContains(t, logBuf, "webhook rejected event")
	})

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		err := NewHandler(url, time.Second, nil).HandleEvent(context.Background(), newReminder(t))
		assert.ErrorIs(t, err, ErrDeliveryFailed)
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		err := NewHandler(server.URL, 20*time.Millisecond, nil).HandleEvent(context.Background(), newReminder(t))
		assert.ErrorIs(t, err, ErrDeliveryFailed)
	})
}

func TestNewHandler(t *testing.T) {
	t.Parallel()

	h := NewHandler("http://example.invalid/hook", 0, nil)
	assert.Equal(t, DefaultTimeout, h.client.Timeout)

	assert.Panics(t, func() { NewHandler("", time.Second, nil) })
}
