// Package sweep periodically finds owners with due cards and asks a
// Notifier to remind them. A sweep only reads the card store.
package sweep

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-words/internal/events"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/phrazzld/scry-words/internal/platform/metrics"
	"github.com/phrazzld/scry-words/internal/store"
)

// DefaultPerOwnerLimit caps the due cards counted per owner in one sweep.
const DefaultPerOwnerLimit = 3

// DefaultInterval is the time between two sweeps.
const DefaultInterval = 24 * time.Hour

// Notifier delivers a due reminder to an owner.
type Notifier interface {
	NotifyDue(ctx context.Context, ownerID int64, dueCount int) error
}

// Config holds configuration for the sweeper
type Config struct {
	// Interval between sweeps. If zero, defaults to DefaultInterval.
	Interval time.Duration

	// PerOwnerLimit caps the due count reported per owner.
	// If zero, defaults to DefaultPerOwnerLimit.
	PerOwnerLimit int
}

// Report summarizes one sweep run.
type Report struct {
	RunID    uuid.UUID
	Owners   int
	Notified int
	Failed   int
}

// Sweeper runs the due-reminder sweep on a fixed interval.
type Sweeper struct {
	cards    store.CardStore
	notifier Notifier
	config   Config
	metrics  *metrics.Metrics
	logger   *slog.Logger
	clock    func() time.Time

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewSweeper creates a new Sweeper. m may be nil.
func NewSweeper(
	cards store.CardStore,
	notifier Notifier,
	config Config,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Sweeper {
	if cards == nil {
		panic("cards cannot be nil")
	}
	if notifier == nil {
		panic("notifier cannot be nil")
	}
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.PerOwnerLimit <= 0 {
		config.PerOwnerLimit = DefaultPerOwnerLimit
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Sweeper{
		cards:    cards,
		notifier: notifier,
		config:   config,
		metrics:  m,
		logger:   logger.With(slog.String("component", "sweeper")),
		clock:    time.Now,
	}
}

// RunOnce performs a single sweep at now. Failures for one owner are logged
// and counted but never stop the sweep for the others.
func (s *Sweeper) RunOnce(ctx context.Context, now time.Time) Report {
	started := time.Now()
	report := Report{RunID: uuid.New()}
	ctx = events.WithRunID(ctx, report.RunID)
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("run_id", report.RunID.String()))

	owners, err := s.cards.DistinctOwners(ctx)
	if err != nil {
		log.Error("failed to list owners", slog.String("error", err.Error()))
		report.Failed++
		s.metrics.SweepFinished(0, report.Failed, time.Since(started))
		return report
	}
	report.Owners = len(owners)

	for i, ownerID := range owners {
		if ctx.Err() != nil {
			log.Warn("sweep interrupted", slog.Int("remaining_owners", len(owners)-i))
			break
		}

		notified, err := s.sweepOwner(ctx, ownerID, now)
		if err != nil {
			report.Failed++
			log.Error("failed to remind owner",
				slog.Int64("owner_id", ownerID),
				slog.String("error", err.Error()))
			continue
		}
		if notified {
			report.Notified++
		}
	}

	s.metrics.SweepFinished(report.Notified, report.Failed, time.Since(started))
	log.Info("sweep finished",
		slog.Int("owners", report.Owners),
		slog.Int("notified", report.Notified),
		slog.Int("failed", report.Failed))
	return report
}

func (s *Sweeper) sweepOwner(ctx context.Context, ownerID int64, now time.Time) (notified bool, err error) {
	due, err := s.cards.DueCards(ctx, ownerID, now, s.config.PerOwnerLimit)
	if err != nil {
		return false, err
	}
	if len(due) == 0 {
		return false, nil
	}
	if err := s.notifier.NotifyDue(ctx, ownerID, len(due)); err != nil {
		return false, err
	}
	return true, nil
}

// Run sweeps every configured interval until ctx is cancelled.
// The first sweep happens after one full interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.logger.Info("sweeper started", slog.Duration("interval", s.config.Interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx, s.clock())
		}
	}
}

// Start runs the sweeper in a background goroutine.
// Calling Start on a running sweeper does nothing.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelFunc != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancelFunc = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run(ctx)
	}()
}

// Stop cancels a started sweeper and waits for its goroutine to exit.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel := s.cancelFunc
	s.cancelFunc = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}
