// Package webhook delivers events to an external HTTP endpoint as JSON.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/scry-words/internal/events"
	"github.com/phrazzld/scry-words/internal/platform/logger"
)

// DefaultTimeout bounds a single delivery when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// ErrDeliveryFailed is returned when the endpoint cannot be reached or
// answers with a non-2xx status.
var ErrDeliveryFailed = errors.New("webhook delivery failed")

// Handler posts every event it receives to a fixed URL.
type Handler struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

var _ events.EventHandler = (*Handler)(nil)

// NewHandler creates a Handler posting to url.
func NewHandler(url string, timeout time.Duration, logger *slog.Logger) *Handler {
	if url == "" {
		panic("url cannot be empty")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger.With(slog.String("component", "webhook")),
	}
}

// HandleEvent implements events.EventHandler.
func (h *Handler) HandleEvent(ctx context.Context, event *events.Event) error {
	log := logger.FromContextOrDefault(ctx, h.logger).With(
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type))

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-ID", event.ID.String())
	req.Header.Set("X-Event-Type", event.Type)
	if requestID := logger.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		log.Warn("webhook unreachable", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn("webhook rejected event", slog.Int("status", resp.StatusCode))
		return fmt.Errorf("%w: status %d", ErrDeliveryFailed, resp.StatusCode)
	}

	log.Debug("event delivered", slog.Int("status", resp.StatusCode))
	return nil
}
