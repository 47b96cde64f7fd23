package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-words/internal/platform/logger"
)

// ReminderNotifier turns due-card notifications into TypeDueReminder events.
// It satisfies the sweep package's Notifier interface.
type ReminderNotifier struct {
	emitter EventEmitter
	clock   func() time.Time
}

// NewReminderNotifier creates a notifier publishing to emitter.
func NewReminderNotifier(emitter EventEmitter) *ReminderNotifier {
	if emitter == nil {
		panic("emitter cannot be nil")
	}
	return &ReminderNotifier{emitter: emitter, clock: time.Now}
}

type runIDKey struct{}

// WithRunID tags ctx with the sweep run that produced a reminder.
func WithRunID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the sweep run ID stored by WithRunID.
func RunIDFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(runIDKey{}).(uuid.UUID)
	return id
}

// NotifyDue emits a reminder that ownerID has dueCount cards to review.
func (n *ReminderNotifier) NotifyDue(ctx context.Context, ownerID int64, dueCount int) error {
	event, err := NewEvent(TypeDueReminder, DueReminder{
		OwnerID:  ownerID,
		DueCount: dueCount,
		RunID:    RunIDFromContext(ctx),
	}, n.clock())
	if err != nil {
		return fmt.Errorf("failed to build reminder event: %w", err)
	}

	return n.emitter.EmitEvent(ctx, event)
}

// LogHandler writes every due reminder as a structured log entry.
// It is always registered, so reminders are visible even without a webhook.
type LogHandler struct {
	logger *slog.Logger
}

// NewLogHandler creates a LogHandler.
func NewLogHandler(log *slog.Logger) *LogHandler {
	if log == nil {
		log = slog.Default()
	}
	return &LogHandler{logger: log.With(slog.String("component", "reminder_log"))}
}

// HandleEvent implements EventHandler.
func (h *LogHandler) HandleEvent(ctx context.Context, event *Event) error {
	if event.Type != TypeDueReminder {
		return nil
	}

	var reminder DueReminder
	if err := event.UnmarshalPayload(&reminder); err != nil {
		return fmt.Errorf("failed to decode reminder: %w", err)
	}

	logger.FromContextOrDefault(ctx, h.logger).Info("cards due for review",
		slog.String("event_id", event.ID.String()),
		slog.Int64("owner_id", reminder.OwnerID),
		slog.Int("due_count", reminder.DueCount),
		slog.String("run_id", reminder.RunID.String()))
	return nil
}
