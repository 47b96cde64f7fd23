package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/domain/srs"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/phrazzld/scry-words/internal/platform/metrics"
	"github.com/phrazzld/scry-words/internal/store"
)

// Mode selects which cards a session reviews and whether it reschedules them.
type Mode string

const (
	// ModeDueReview reviews the owner's due cards and records each success.
	ModeDueReview Mode = "due"
	// ModeFullShuffle repeats every card in random order without rescheduling.
	ModeFullShuffle Mode = "shuffle"
)

// ParseMode converts a mode name into a Mode.
func ParseMode(name string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(name))) {
	case ModeDueReview:
		return ModeDueReview, nil
	case ModeFullShuffle:
		return ModeFullShuffle, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, name)
}

// State is the externally visible state of an owner's session.
type State string

const (
	StateIdle       State = "idle"
	StatePresenting State = "presenting"
	StateCompleted  State = "completed"
)

// View is a read-only snapshot of an owner's session after an operation.
type View struct {
	State State
	Mode  Mode
	// Position is the zero-based index of the current card. It equals Total
	// once the session is completed.
	Position int
	Total    int
	// Card is the card being presented; nil unless State is StatePresenting.
	Card *domain.Card
	// Revealed reports whether the back of Card may be shown.
	Revealed bool
}

// Engine runs review sessions.
type Engine interface {
	// Start loads the owner's candidate cards and begins a session,
	// discarding any session the owner already had. Returns ErrEmptyQueue
	// with a completed view when there is nothing to review.
	Start(ctx context.Context, ownerID int64, mode Mode, now time.Time) (View, error)

	// StartWith begins a session over an explicit set of cards.
	StartWith(ctx context.Context, ownerID int64, mode Mode, cards []domain.Card) (View, error)

	// Reveal returns the back of the current card. It never changes the
	// card or moves the session.
	Reveal(ctx context.Context, ownerID int64) (string, View, error)

	// Advance moves past the current card after it was revealed or answered
	// wrongly. In ModeDueReview the card is rescheduled first; if that fails
	// ErrPersistence is returned and the session stays on the card. A card
	// already at the longest interval yields ErrScheduleLimit instead.
	Advance(ctx context.Context, ownerID int64, now time.Time) (View, error)

	// SubmitAnswer grades a typed answer against the current card.
	// A mismatch returns ErrGradingMismatch and keeps the card; a match
	// behaves like Advance.
	SubmitAnswer(ctx context.Context, ownerID int64, answer string, now time.Time) (View, error)

	// Cancel discards the owner's session, if any.
	Cancel(ctx context.Context, ownerID int64) View

	// Current reports the owner's session without changing it.
	Current(ctx context.Context, ownerID int64) View
}

type session struct {
	mode   Mode
	queue  []domain.Card
	cursor int
	// revealed is set by Reveal and by a wrong answer; it unlocks Advance.
	revealed bool
}

func (s *session) current() *domain.Card {
	return &s.queue[s.cursor]
}

// slot serializes the operations of one owner. refs counts the callers
// holding or waiting for mu and is guarded by engine.mu; a slot without
// callers and without a session is removed from engine.slots.
type slot struct {
	mu      sync.Mutex
	refs    int
	session *session
}

type engine struct {
	cards   store.CardStore
	srs     srs.Service
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu    sync.Mutex
	slots map[int64]*slot

	active atomic.Int64

	rngMu sync.Mutex
	rng   *rand.Rand
}

var _ Engine = (*engine)(nil)

// NewEngine creates a review engine backed by cards.
// A shuffleSeed of zero seeds the shuffle from the clock; any other value
// makes the FullShuffle order reproducible. m may be nil.
func NewEngine(
	cards store.CardStore,
	srsService srs.Service,
	shuffleSeed int64,
	m *metrics.Metrics,
	logger *slog.Logger,
) Engine {
	if cards == nil {
		panic("cards cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if shuffleSeed == 0 {
		shuffleSeed = time.Now().UnixNano()
	}

	return &engine{
		cards:   cards,
		srs:     srsService,
		metrics: m,
		logger:  logger.With(slog.String("component", "review_engine")),
		slots:   make(map[int64]*slot),
		rng:     rand.New(rand.NewPCG(uint64(shuffleSeed), 0)),
	}
}

// lock returns the owner's slot with its mutex held. Without create, an
// owner that has no slot yields nil. Every non-nil result must be passed to
// unlock.
func (e *engine) lock(ownerID int64, create bool) *slot {
	e.mu.Lock()
	s, ok := e.slots[ownerID]
	if !ok {
		if !create {
			e.mu.Unlock()
			return nil
		}
		s = &slot{}
		e.slots[ownerID] = s
	}
	s.refs++
	e.mu.Unlock()

	s.mu.Lock()
	return s
}

// unlock releases a slot returned by lock and drops it once it is unused.
func (e *engine) unlock(ownerID int64, s *slot) {
	s.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	s.refs--
	if s.refs == 0 && s.session == nil {
		delete(e.slots, ownerID)
	}
}

func (e *engine) setSession(s *slot, next *session) {
	switch {
	case s.session == nil && next != nil:
		e.active.Add(1)
	case s.session != nil && next == nil:
		e.active.Add(-1)
	}
	s.session = next
	e.metrics.SetActiveSessions(int(e.active.Load()))
}

// Start implements Engine.Start.
func (e *engine) Start(ctx context.Context, ownerID int64, mode Mode, now time.Time) (View, error) {
	log := logger.FromContextOrDefault(ctx, e.logger).With(
		slog.Int64("owner_id", ownerID),
		slog.String("mode", string(mode)))

	if ownerID <= 0 {
		return View{State: StateIdle}, domain.ErrInvalidOwner
	}

	var (
		cards []domain.Card
		err   error
	)
	switch mode {
	case ModeDueReview:
		cards, err = e.cards.DueCards(ctx, ownerID, now, 0)
	case ModeFullShuffle:
		cards, err = e.cards.AllCards(ctx, ownerID)
	default:
		return View{State: StateIdle}, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if err != nil {
		log.Error("failed to load review cards", slog.String("error", err.Error()))
		return View{State: StateIdle}, fmt.Errorf("%w: failed to load cards: %w", ErrPersistence, err)
	}

	return e.start(ctx, ownerID, mode, cards)
}

// StartWith implements Engine.StartWith.
func (e *engine) StartWith(ctx context.Context, ownerID int64, mode Mode, cards []domain.Card) (View, error) {
	if ownerID <= 0 {
		return View{State: StateIdle}, domain.ErrInvalidOwner
	}
	if mode != ModeDueReview && mode != ModeFullShuffle {
		return View{State: StateIdle}, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	return e.start(ctx, ownerID, mode, cards)
}

func (e *engine) start(ctx context.Context, ownerID int64, mode Mode, cards []domain.Card) (View, error) {
	log := logger.FromContextOrDefault(ctx, e.logger).With(
		slog.Int64("owner_id", ownerID),
		slog.String("mode", string(mode)))

	queue := make([]domain.Card, len(cards))
	copy(queue, cards)
	if mode == ModeFullShuffle {
		e.shuffle(queue)
	}

	s := e.lock(ownerID, true)
	defer e.unlock(ownerID, s)

	if len(queue) == 0 {
		e.setSession(s, nil)
		log.Debug("nothing to review")
		return View{State: StateCompleted, Mode: mode}, ErrEmptyQueue
	}

	next := &session{mode: mode, queue: queue}
	e.setSession(s, next)
	e.metrics.SessionStarted(string(mode))

	log.Info("review session started", slog.Int("cards", len(queue)))
	return next.view(), nil
}

func (e *engine) shuffle(cards []domain.Card) {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	e.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// Reveal implements Engine.Reveal.
func (e *engine) Reveal(ctx context.Context, ownerID int64) (string, View, error) {
	s := e.lock(ownerID, false)
	if s == nil {
		return "", View{State: StateIdle}, ErrInvalidState
	}
	defer e.unlock(ownerID, s)

	if s.session == nil {
		return "", View{State: StateIdle}, ErrInvalidState
	}

	s.session.revealed = true
	return s.session.current().Back, s.session.view(), nil
}

// Advance implements Engine.Advance.
func (e *engine) Advance(ctx context.Context, ownerID int64, now time.Time) (View, error) {
	s := e.lock(ownerID, false)
	if s == nil {
		return View{State: StateIdle}, ErrInvalidState
	}
	defer e.unlock(ownerID, s)

	if s.session == nil {
		return View{State: StateIdle}, ErrInvalidState
	}
	if !s.session.revealed {
		return s.session.view(), fmt.Errorf("%w: reveal or answer the card first", ErrInvalidState)
	}

	if err := e.recordSuccess(ctx, ownerID, s.session, now); err != nil {
		return s.session.view(), err
	}
	return e.moveOn(ctx, ownerID, s), nil
}

// SubmitAnswer implements Engine.SubmitAnswer.
func (e *engine) SubmitAnswer(ctx context.Context, ownerID int64, answer string, now time.Time) (View, error) {
	s := e.lock(ownerID, false)
	if s == nil {
		return View{State: StateIdle}, ErrInvalidState
	}
	defer e.unlock(ownerID, s)

	if s.session == nil {
		return View{State: StateIdle}, ErrInvalidState
	}

	if !Matches(answer, s.session.current().Back) {
		e.metrics.AnswerGraded(false)
		s.session.revealed = true
		return s.session.view(), ErrGradingMismatch
	}
	e.metrics.AnswerGraded(true)

	if err := e.recordSuccess(ctx, ownerID, s.session, now); err != nil {
		return s.session.view(), err
	}
	return e.moveOn(ctx, ownerID, s), nil
}

// Matches reports whether answer equals expected, ignoring case.
// Leading and trailing whitespace on either side is trimmed before the
// comparison, so a typed "кот " matches "кот"; inner whitespace must match
// exactly. An empty answer never matches a card, whose back is non-empty.
func Matches(answer, expected string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(expected))
}

// recordSuccess reschedules the current card of a DueReview session.
// FullShuffle sessions never touch the store.
func (e *engine) recordSuccess(ctx context.Context, ownerID int64, sess *session, now time.Time) error {
	if sess.mode != ModeDueReview {
		return nil
	}

	log := logger.FromContextOrDefault(ctx, e.logger)
	card := sess.current()

	updated, err := e.cards.UpdateSchedule(ctx, card.ID, func(current domain.Card) (*domain.Card, error) {
		return e.srs.RecordSuccess(&current, now)
	})
	if errors.Is(err, srs.ErrIntervalOverflow) {
		log.Warn("card reached the longest review interval",
			slog.Int64("owner_id", ownerID),
			slog.Int64("card_id", card.ID),
			slog.Int("repetition_step", int(card.RepetitionStep)))
		return fmt.Errorf("%w: card %d: %w", ErrScheduleLimit, card.ID, err)
	}
	if err != nil {
		e.metrics.PersistenceFailed()
		log.Error("failed to record review",
			slog.String("error", err.Error()),
			slog.Int64("owner_id", ownerID),
			slog.Int64("card_id", card.ID))
		return fmt.Errorf("%w: card %d: %w", ErrPersistence, card.ID, err)
	}

	e.metrics.ReviewRecorded()
	log.Debug("review recorded",
		slog.Int64("owner_id", ownerID),
		slog.Int64("card_id", card.ID),
		slog.Int("repetition_step", int(updated.RepetitionStep)),
		slog.Time("next_review", updated.NextReview))

	*card = *updated
	return nil
}

// moveOn advances the cursor, ending the session when the queue is exhausted.
func (e *engine) moveOn(ctx context.Context, ownerID int64, s *slot) View {
	sess := s.session
	sess.cursor++
	sess.revealed = false

	if sess.cursor < len(sess.queue) {
		return sess.view()
	}

	view := View{State: StateCompleted, Mode: sess.mode, Position: len(sess.queue), Total: len(sess.queue)}
	e.setSession(s, nil)
	logger.FromContextOrDefault(ctx, e.logger).Info("review session completed",
		slog.Int64("owner_id", ownerID),
		slog.String("mode", string(sess.mode)),
		slog.Int("cards", len(sess.queue)))
	return view
}

// Cancel implements Engine.Cancel.
func (e *engine) Cancel(ctx context.Context, ownerID int64) View {
	s := e.lock(ownerID, false)
	if s == nil {
		return View{State: StateIdle}
	}
	defer e.unlock(ownerID, s)

	if s.session != nil {
		logger.FromContextOrDefault(ctx, e.logger).Debug("review session cancelled",
			slog.Int64("owner_id", ownerID),
			slog.Int("position", s.session.cursor))
		e.setSession(s, nil)
	}
	return View{State: StateIdle}
}

// Current implements Engine.Current.
func (e *engine) Current(ctx context.Context, ownerID int64) View {
	s := e.lock(ownerID, false)
	if s == nil {
		return View{State: StateIdle}
	}
	defer e.unlock(ownerID, s)

	if s.session == nil {
		return View{State: StateIdle}
	}
	return s.session.view()
}

func (s *session) view() View {
	card := *s.current()
	return View{
		State:    StatePresenting,
		Mode:     s.mode,
		Position: s.cursor,
		Total:    len(s.queue),
		Card:     &card,
		Revealed: s.revealed,
	}
}
