// Package memory provides an in-process implementation of store.CardStore.
// It backs tests and the "memory" database driver; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/store"
)

type ownerWord struct {
	ownerID int64
	front   string
}

// CardStore keeps cards in maps guarded by a single mutex.
// Every method copies cards in and out, so callers never share memory with the store.
type CardStore struct {
	mu     sync.Mutex
	nextID int64
	cards  map[int64]domain.Card
	fronts map[ownerWord]int64
}

var _ store.CardStore = (*CardStore)(nil)

// NewCardStore returns an empty store.
func NewCardStore() *CardStore {
	return &CardStore{
		cards:  make(map[int64]domain.Card),
		fronts: make(map[ownerWord]int64),
	}
}

// AddCard implements store.CardStore.
func (s *CardStore) AddCard(
	ctx context.Context,
	ownerID int64,
	front, back string,
	now time.Time,
) (*domain.Card, error) {
	card, err := domain.NewCard(ownerID, front, back, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := ownerWord{ownerID: card.OwnerID, front: card.Front}
	if _, exists := s.fronts[key]; exists {
		return nil, store.ErrDuplicateWord
	}

	s.nextID++
	card.ID = s.nextID
	s.cards[card.ID] = *card
	s.fronts[key] = card.ID

	out := *card
	return &out, nil
}

// GetByID implements store.CardStore.
func (s *CardStore) GetByID(ctx context.Context, id int64) (*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return &card, nil
}

// DueCards implements store.CardStore.
func (s *CardStore) DueCards(
	ctx context.Context,
	ownerID int64,
	now time.Time,
	limit int,
) ([]domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := make([]domain.Card, 0)
	for _, card := range s.sortedLocked(ownerID) {
		if card.NextReview.After(now) {
			continue
		}
		due = append(due, card)
		if limit > 0 && len(due) == limit {
			break
		}
	}
	return due, nil
}

// AllCards implements store.CardStore.
func (s *CardStore) AllCards(ctx context.Context, ownerID int64) ([]domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sortedLocked(ownerID), nil
}

// Persist implements store.CardStore.
func (s *CardStore) Persist(ctx context.Context, card *domain.Card) error {
	if card == nil {
		return fmt.Errorf("%w: card is nil", store.ErrInvalidEntity)
	}
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeLocked(card)
}

// UpdateSchedule implements store.CardStore. The mutex is held across fn,
// which serializes concurrent read-modify-write cycles.
func (s *CardStore) UpdateSchedule(
	ctx context.Context,
	id int64,
	fn store.ScheduleFn,
) (*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}

	updated, err := fn(current)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: schedule function returned no card", store.ErrInvalidEntity)
	}
	if err := updated.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	updated.ID = current.ID
	if err := s.writeLocked(updated); err != nil {
		return nil, err
	}

	out := s.cards[id]
	return &out, nil
}

// DistinctOwners implements store.CardStore.
func (s *CardStore) DistinctOwners(ctx context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int64]struct{})
	owners := make([]int64, 0)
	for _, card := range s.cards {
		if _, ok := seen[card.OwnerID]; ok {
			continue
		}
		seen[card.OwnerID] = struct{}{}
		owners = append(owners, card.OwnerID)
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })
	return owners, nil
}

// CountCards implements store.CardStore.
func (s *CardStore) CountCards(ctx context.Context, ownerID int64) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total, learned int
	for _, card := range s.cards {
		if card.OwnerID != ownerID {
			continue
		}
		total++
		if card.Learned {
			learned++
		}
	}
	return total, learned, nil
}

// writeLocked copies the mutable fields of card onto the stored row.
// Identity fields (owner, texts) are never changed by an update.
func (s *CardStore) writeLocked(card *domain.Card) error {
	stored, ok := s.cards[card.ID]
	if !ok {
		return store.ErrCardNotFound
	}

	stored.Learned = card.Learned
	stored.NextReview = domain.TruncateTime(card.NextReview)
	stored.RepetitionStep = card.RepetitionStep
	s.cards[card.ID] = stored
	return nil
}

func (s *CardStore) sortedLocked(ownerID int64) []domain.Card {
	cards := make([]domain.Card, 0)
	for _, card := range s.cards {
		if card.OwnerID == ownerID {
			cards = append(cards, card)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	return cards
}

