package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/phrazzld/scry-words/internal/store"
)

// Welcome card seeded for new owners.
const (
	WelcomeFront = "welcome"
	WelcomeBack  = "добро пожаловать"
)

// CardService provides vocabulary management operations outside of review sessions.
type CardService interface {
	// Onboard prepares a new owner: when the owner has no cards yet, the
	// welcome card is added. Calling it again is harmless.
	// Returns the owner's card count after onboarding.
	Onboard(ctx context.Context, ownerID int64, now time.Time) (int, error)

	// AddWord adds a due-immediately card for the owner.
	// Returns domain.ErrDuplicateWord if the owner already has the front text.
	AddWord(ctx context.Context, ownerID int64, front, back string, now time.Time) (*domain.Card, error)

	// Stats summarizes the owner's vocabulary at now.
	Stats(ctx context.Context, ownerID int64, now time.Time) (domain.Stats, error)

	// SetLearned updates the advisory learned flag of one of the owner's cards.
	// Returns store.ErrCardNotFound or ErrNotOwned.
	SetLearned(ctx context.Context, ownerID, cardID int64, learned bool) (*domain.Card, error)
}

// cardServiceImpl implements the CardService interface
type cardServiceImpl struct {
	cards  store.CardStore
	logger *slog.Logger
}

var _ CardService = (*cardServiceImpl)(nil)

// NewCardService creates a new CardService.
// It returns an error if the card store is nil.
func NewCardService(cards store.CardStore, logger *slog.Logger) (CardService, error) {
	if cards == nil {
		return nil, fmt.Errorf("%w: card store cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &cardServiceImpl{
		cards:  cards,
		logger: logger.With(slog.String("component", "card_service")),
	}, nil
}

// Onboard implements CardService.Onboard
func (s *cardServiceImpl) Onboard(ctx context.Context, ownerID int64, now time.Time) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.Int64("owner_id", ownerID))

	if ownerID <= 0 {
		return 0, domain.ErrInvalidOwner
	}

	total, _, err := s.cards.CountCards(ctx, ownerID)
	if err != nil {
		log.Error("failed to count cards", slog.String("error", err.Error()))
		return 0, NewServiceError("card", "onboard", "failed to count cards", err)
	}
	if total > 0 {
		return total, nil
	}

	if _, err := s.cards.AddCard(ctx, ownerID, WelcomeFront, WelcomeBack, now); err != nil {
		// Two concurrent onboardings race on the unique front; the loser is fine.
		if errors.Is(err, domain.ErrDuplicateWord) {
			return 1, nil
		}
		log.Error("failed to add welcome card", slog.String("error", err.Error()))
		return 0, NewServiceError("card", "onboard", "failed to add welcome card", err)
	}

	log.Info("owner onboarded")
	return 1, nil
}

// AddWord implements CardService.AddWord
func (s *cardServiceImpl) AddWord(
	ctx context.Context,
	ownerID int64,
	front, back string,
	now time.Time,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.Int64("owner_id", ownerID))

	if ownerID <= 0 {
		return nil, domain.ErrInvalidOwner
	}

	card, err := s.cards.AddCard(ctx, ownerID, front, back, now)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateWord):
			log.Debug("word already exists")
			return nil, err
		case errors.Is(err, domain.ErrValidation):
			return nil, err
		default:
			log.Error("failed to add word", slog.String("error", err.Error()))
			return nil, NewServiceError("card", "add_word", "failed to add card", err)
		}
	}

	log.Info("word added", slog.Int64("card_id", card.ID))
	return card, nil
}

// Stats implements CardService.Stats
func (s *cardServiceImpl) Stats(ctx context.Context, ownerID int64, now time.Time) (domain.Stats, error) {
	if ownerID <= 0 {
		return domain.Stats{}, domain.ErrInvalidOwner
	}

	total, learned, err := s.cards.CountCards(ctx, ownerID)
	if err != nil {
		return domain.Stats{}, NewServiceError("card", "stats", "failed to count cards", err)
	}

	due, err := s.cards.DueCards(ctx, ownerID, now, 0)
	if err != nil {
		return domain.Stats{}, NewServiceError("card", "stats", "failed to count due cards", err)
	}

	return domain.NewStats(total, learned, len(due)), nil
}

// SetLearned implements CardService.SetLearned
func (s *cardServiceImpl) SetLearned(
	ctx context.Context,
	ownerID, cardID int64,
	learned bool,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.Int64("owner_id", ownerID),
		slog.Int64("card_id", cardID),
	)

	if ownerID <= 0 {
		return nil, domain.ErrInvalidOwner
	}

	var notOwned bool
	card, err := s.cards.UpdateSchedule(ctx, cardID, func(current domain.Card) (*domain.Card, error) {
		if current.OwnerID != ownerID {
			notOwned = true
			return nil, ErrNotOwned
		}
		current.Learned = learned
		return &current, nil
	})
	if err != nil {
		if notOwned {
			log.Warn("attempt to modify a card owned by someone else")
			return nil, fmt.Errorf("%w: %w", ErrNotOwned, domain.ErrCardNotOwned)
		}
		if store.IsNotFoundError(err) {
			return nil, err
		}
		log.Error("failed to update learned flag", slog.String("error", err.Error()))
		return nil, NewServiceError("card", "set_learned", "failed to update card", err)
	}

	log.Debug("learned flag updated", slog.Bool("learned", learned))
	return card, nil
}
