package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
)

// Common errors
var (
	ErrNilCard          = errors.New("card cannot be nil")
	ErrNegativeStep     = errors.New("repetition step cannot be negative")
	ErrIntervalOverflow = errors.New("next review interval cannot be represented")
)

// Service defines the interface for review schedule operations.
// Implementations are stateless; every method depends only on its arguments.
type Service interface {
	// IsDue reports whether a card should be reviewed at now.
	// The boundary is inclusive: a card whose NextReview equals now is due.
	IsDue(card *domain.Card, now time.Time) bool

	// SelectDue filters cards down to those due at now, preserving input order.
	SelectDue(cards []domain.Card, now time.Time) []domain.Card

	// RecordSuccess computes the card's schedule after a successful review:
	// the repetition step is incremented and NextReview becomes
	// now + 2^step' days. The input card is not modified.
	RecordSuccess(card *domain.Card, now time.Time) (*domain.Card, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new schedule service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new schedule service with custom parameters
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// IsDue implements Service.IsDue.
func (s *defaultService) IsDue(card *domain.Card, now time.Time) bool {
	return IsDue(card, now)
}

// SelectDue implements Service.SelectDue.
func (s *defaultService) SelectDue(cards []domain.Card, now time.Time) []domain.Card {
	return SelectDue(cards, now)
}

// RecordSuccess implements Service.RecordSuccess.
func (s *defaultService) RecordSuccess(card *domain.Card, now time.Time) (*domain.Card, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	if card.RepetitionStep < 0 {
		return nil, ErrNegativeStep
	}

	if card.RepetitionStep >= s.params.MaxRepresentableStep {
		return nil, fmt.Errorf("%w: step %d", ErrIntervalOverflow, card.RepetitionStep+1)
	}

	return calculateNextCard(card, now), nil
}

// IsDue reports whether the card is due at now (NextReview <= now).
// A nil card is never due.
func IsDue(card *domain.Card, now time.Time) bool {
	if card == nil {
		return false
	}
	return isDue(card, now)
}

// SelectDue returns the cards due at now in their original order.
// It never returns nil, so callers can range over or encode the result directly.
func SelectDue(cards []domain.Card, now time.Time) []domain.Card {
	due := make([]domain.Card, 0, len(cards))
	for i := range cards {
		if isDue(&cards[i], now) {
			due = append(due, cards[i])
		}
	}
	return due
}

// RecordSuccess applies a successful review with default parameters.
func RecordSuccess(card *domain.Card, now time.Time) (*domain.Card, error) {
	return NewDefaultService().RecordSuccess(card, now)
}

// IntervalDays returns the interval in days that a card reaches once its
// repetition step equals step.
func IntervalDays(step int32) int {
	return intervalDays(step)
}
