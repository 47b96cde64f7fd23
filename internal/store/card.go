package store

import (
	"context"
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
)

// ScheduleFn computes a card's new schedule from its current persisted state.
// Returning an error aborts the update without writing anything.
type ScheduleFn func(current domain.Card) (*domain.Card, error)

// CardStore defines the interface for card data persistence.
//
// Every implementation returns cards with NextReview in UTC at whole-second
// precision, and lists cards in ascending ID (insertion) order.
type CardStore interface {
	// AddCard creates a due-immediately card for the owner.
	// Returns ErrDuplicateWord (wrapping ErrDuplicate) when the owner already
	// has a card with the same front text, and a validation error when the
	// texts are empty.
	AddCard(ctx context.Context, ownerID int64, front, back string, now time.Time) (*domain.Card, error)

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Card, error)

	// DueCards lists the owner's cards with NextReview <= now.
	// A limit of zero or less returns every due card.
	DueCards(ctx context.Context, ownerID int64, now time.Time, limit int) ([]domain.Card, error)

	// AllCards lists every card of the owner.
	AllCards(ctx context.Context, ownerID int64) ([]domain.Card, error)

	// Persist writes the mutable fields of a card (Learned, NextReview,
	// RepetitionStep). Returns ErrCardNotFound if the card does not exist.
	Persist(ctx context.Context, card *domain.Card) error

	// UpdateSchedule atomically re-reads the card, applies fn to its current
	// state and writes the result. Concurrent updates of the same card are
	// serialized, so two successful reviews always yield two increments.
	// If fn or the write fails nothing is persisted.
	UpdateSchedule(ctx context.Context, id int64, fn ScheduleFn) (*domain.Card, error)

	// DistinctOwners lists every owner that has at least one card, ascending.
	DistinctOwners(ctx context.Context) ([]int64, error)

	// CountCards returns the owner's total and learned card counts.
	CountCards(ctx context.Context, ownerID int64) (total int, learned int, err error)
}
