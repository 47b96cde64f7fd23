package mocks

import (
	"context"
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockCardStore is a mock of store.CardStore for use with testify/mock
type MockCardStore struct {
	mock.Mock
}

var _ store.CardStore = (*MockCardStore)(nil)

// AddCard is a mock implementation of store.CardStore.AddCard
func (m *MockCardStore) AddCard(
	ctx context.Context,
	ownerID int64,
	front, back string,
	now time.Time,
) (*domain.Card, error) {
	args := m.Called(ctx, ownerID, front, back, now)
	if card, ok := args.Get(0).(*domain.Card); ok {
		return card, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetByID is a mock implementation of store.CardStore.GetByID
func (m *MockCardStore) GetByID(ctx context.Context, id int64) (*domain.Card, error) {
	args := m.Called(ctx, id)
	if card, ok := args.Get(0).(*domain.Card); ok {
		return card, args.Error(1)
	}
	return nil, args.Error(1)
}

// DueCards is a mock implementation of store.CardStore.DueCards
func (m *MockCardStore) DueCards(ctx context.Context, ownerID int64, now time.Time, limit int) ([]domain.Card, error) {
	args := m.Called(ctx, ownerID, now, limit)
	if cards, ok := args.Get(0).([]domain.Card); ok {
		return cards, args.Error(1)
	}
	return nil, args.Error(1)
}

// AllCards is a mock implementation of store.CardStore.AllCards
func (m *MockCardStore) AllCards(ctx context.Context, ownerID int64) ([]domain.Card, error) {
	args := m.Called(ctx, ownerID)
	if cards, ok := args.Get(0).([]domain.Card); ok {
		return cards, args.Error(1)
	}
	return nil, args.Error(1)
}

// Persist is a mock implementation of store.CardStore.Persist
func (m *MockCardStore) Persist(ctx context.Context, card *domain.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

// UpdateSchedule is a mock implementation of store.CardStore.UpdateSchedule.
// When the first return value is a *domain.Card, fn is applied to it the way
// a real store would and its result is returned.
func (m *MockCardStore) UpdateSchedule(ctx context.Context, id int64, fn store.ScheduleFn) (*domain.Card, error) {
	args := m.Called(ctx, id, fn)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	current, ok := args.Get(0).(*domain.Card)
	if !ok || current == nil {
		return nil, store.ErrCardNotFound
	}
	return fn(*current)
}

// DistinctOwners is a mock implementation of store.CardStore.DistinctOwners
func (m *MockCardStore) DistinctOwners(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if owners, ok := args.Get(0).([]int64); ok {
		return owners, args.Error(1)
	}
	return nil, args.Error(1)
}

// CountCards is a mock implementation of store.CardStore.CountCards
func (m *MockCardStore) CountCards(ctx context.Context, ownerID int64) (int, int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Int(1), args.Error(2)
}
