package mocks

import (
	"context"
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/service"
)

// MockCardService implements service.CardService for testing
type MockCardService struct {
	// Custom behavior functions
	OnboardFn    func(ctx context.Context, ownerID int64, now time.Time) (int, error)
	AddWordFn    func(ctx context.Context, ownerID int64, front, back string, now time.Time) (*domain.Card, error)
	StatsFn      func(ctx context.Context, ownerID int64, now time.Time) (domain.Stats, error)
	SetLearnedFn func(ctx context.Context, ownerID, cardID int64, learned bool) (*domain.Card, error)

	// Default return values
	Card         *domain.Card
	CardStats    domain.Stats
	DefaultError error
}

var _ service.CardService = (*MockCardService)(nil)

// Onboard implements the CardService.Onboard method
func (m *MockCardService) Onboard(ctx context.Context, ownerID int64, now time.Time) (int, error) {
	if m.OnboardFn != nil {
		return m.OnboardFn(ctx, ownerID, now)
	}
	return 1, m.DefaultError
}

// AddWord implements the CardService.AddWord method
func (m *MockCardService) AddWord(
	ctx context.Context,
	ownerID int64,
	front, back string,
	now time.Time,
) (*domain.Card, error) {
	if m.AddWordFn != nil {
		return m.AddWordFn(ctx, ownerID, front, back, now)
	}
	return m.Card, m.DefaultError
}

// Stats implements the CardService.Stats method
func (m *MockCardService) Stats(ctx context.Context, ownerID int64, now time.Time) (domain.Stats, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx, ownerID, now)
	}
	return m.CardStats, m.DefaultError
}

// SetLearned implements the CardService.SetLearned method
func (m *MockCardService) SetLearned(ctx context.Context, ownerID, cardID int64, learned bool) (*domain.Card, error) {
	if m.SetLearnedFn != nil {
		return m.SetLearnedFn(ctx, ownerID, cardID, learned)
	}
	return m.Card, m.DefaultError
}
