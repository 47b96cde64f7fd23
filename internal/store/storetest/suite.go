// Package storetest holds a behavioral test suite shared by every
// store.CardStore implementation.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/domain/srs"
	"github.com/phrazzld/scry-words/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store for a single subtest.
type Factory func(t *testing.T) store.CardStore

// Epoch is the fixed clock used by the suite.
var Epoch = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

// RunCardStoreTests exercises the full store.CardStore contract against newStore.
func RunCardStoreTests(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("AddCard", func(t *testing.T) { testAddCard(t, newStore(t)) })
	t.Run("AddCardDuplicate", func(t *testing.T) { testAddCardDuplicate(t, newStore(t)) })
	t.Run("AddCardInvalid", func(t *testing.T) { testAddCardInvalid(t, newStore(t)) })
	t.Run("GetByIDNotFound", func(t *testing.T) { testGetByIDNotFound(t, newStore(t)) })
	t.Run("DueCards", func(t *testing.T) { testDueCards(t, newStore(t)) })
	t.Run("AllCards", func(t *testing.T) { testAllCards(t, newStore(t)) })
	t.Run("Persist", func(t *testing.T) { testPersist(t, newStore(t)) })
	t.Run("UpdateSchedule", func(t *testing.T) { testUpdateSchedule(t, newStore(t)) })
	t.Run("UpdateScheduleAbort", func(t *testing.T) { testUpdateScheduleAbort(t, newStore(t)) })
	t.Run("UpdateScheduleConcurrent", func(t *testing.T) { testUpdateScheduleConcurrent(t, newStore(t)) })
	t.Run("DistinctOwnersAndCounts", func(t *testing.T) { testDistinctOwnersAndCounts(t, newStore(t)) })
}

func mustAdd(t *testing.T, s store.CardStore, owner int64, front, back string, now time.Time) *domain.Card {
	t.Helper()
	card, err := s.AddCard(context.Background(), owner, front, back, now)
	require.NoError(t, err)
	return card
}

func ids(cards []domain.Card) []int64 {
	out := make([]int64, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID)
	}
	return out
}

func testAddCard(t *testing.T, s store.CardStore) {
	ctx := context.Background()
	now := Epoch.Add(123 * time.Millisecond)

	card := mustAdd(t, s, 42, " cat ", "кот", now)

	assert.NotZero(t, card.ID)
	assert.Equal(t, int64(42), card.OwnerID)
	assert.Equal(t, "cat", card.Front)
	assert.Equal(t, "кот", card.Back)
	assert.False(t, card.Learned)
	assert.Equal(t, int32(0), card.RepetitionStep)
	assert.True(t, card.NextReview.Equal(Epoch), "new card should be due at creation time, truncated")

	fetched, err := s.GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, card.ID, fetched.ID)
	assert.Equal(t, "кот", fetched.Back)
	assert.True(t, fetched.NextReview.Equal(Epoch))
	assert.Equal(t, time.UTC, fetched.NextReview.Location())
}

func testAddCardDuplicate(t *testing.T, s store.CardStore) {
	ctx := context.Background()
	mustAdd(t, s, 1, "cat", "кот", Epoch)

	_, err := s.AddCard(ctx, 1, "cat", "кошка", Epoch)
	assert.ErrorIs(t, err, domain.ErrDuplicateWord)
	assert.ErrorIs(t, err, store.ErrDuplicate)

	// The same front for another owner is fine.
	other, err := s.AddCard(ctx, 2, "cat", "кот", Epoch)
	require.NoError(t, err)
	assert.Equal(t, int64(2), other.OwnerID)
}

func testAddCardInvalid(t *testing.T, s store.CardStore) {
	_, err := s.AddCard(context.Background(), 1, "   ", "кот", Epoch)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func testGetByIDNotFound(t *testing.T, s store.CardStore) {
	_, err := s.GetByID(context.Background(), 9999)
	assert.ErrorIs(t, err, store.ErrCardNotFound)
	assert.True(t, store.IsNotFoundError(err))
}

func testDueCards(t *testing.T, s store.CardStore) {
	ctx := context.Background()

	a := mustAdd(t, s, 7, "one", "один", Epoch.Add(-time.Hour))
	b := mustAdd(t, s, 7, "two", "два", Epoch.Add(time.Hour))
	c := mustAdd(t, s, 7, "three", "три", Epoch)
	d := mustAdd(t, s, 7, "four", "четыре", Epoch.Add(-48*time.Hour))
	mustAdd(t, s, 8, "five", "пять", Epoch.Add(-time.Hour))

	due, err := s.DueCards(ctx, 7, Epoch, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, c.ID, d.ID}, ids(due), "due cards in id order, boundary inclusive")

	limited, err := s.DueCards(ctx, 7, Epoch, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, c.ID}, ids(limited))

	later, err := s.DueCards(ctx, 7, Epoch.Add(2*time.Hour), -1)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID, c.ID, d.ID}, ids(later))

	none, err := s.DueCards(ctx, 99, Epoch, 0)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func testAllCards(t *testing.T, s store.CardStore) {
	ctx := context.Background()

	first := mustAdd(t, s, 3, "sun", "солнце", Epoch.AddDate(0, 0, 10))
	second := mustAdd(t, s, 3, "moon", "луна", Epoch)
	mustAdd(t, s, 4, "star", "звезда", Epoch)

	all, err := s.AllCards(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{first.ID, second.ID}, ids(all))

	empty, err := s.AllCards(ctx, 5)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func testPersist(t *testing.T, s store.CardStore) {
	ctx := context.Background()
	card := mustAdd(t, s, 1, "tree", "дерево", Epoch)

	card.Learned = true
	card.RepetitionStep = 3
	card.NextReview = Epoch.AddDate(0, 0, 8).Add(500 * time.Millisecond)
	card.Back = "ignored"
	require.NoError(t, s.Persist(ctx, card))

	stored, err := s.GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.True(t, stored.Learned)
	assert.Equal(t, int32(3), stored.RepetitionStep)
	assert.True(t, stored.NextReview.Equal(Epoch.AddDate(0, 0, 8)))
	assert.Equal(t, "дерево", stored.Back, "identity fields are not rewritten")

	missing := *card
	missing.ID = 123456
	assert.ErrorIs(t, s.Persist(ctx, &missing), store.ErrCardNotFound)

	invalid := *card
	invalid.RepetitionStep = -1
	assert.ErrorIs(t, s.Persist(ctx, &invalid), domain.ErrValidation)
}

func testUpdateSchedule(t *testing.T, s store.CardStore) {
	ctx := context.Background()
	card := mustAdd(t, s, 1, "cat", "кот", Epoch)

	updated, err := s.UpdateSchedule(ctx, card.ID, func(current domain.Card) (*domain.Card, error) {
		return srs.RecordSuccess(&current, Epoch)
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), updated.RepetitionStep)
	assert.True(t, updated.NextReview.Equal(Epoch.AddDate(0, 0, 2)))

	stored, err := s.GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(1), stored.RepetitionStep)
	assert.True(t, stored.NextReview.Equal(Epoch.AddDate(0, 0, 2)))

	_, err = s.UpdateSchedule(ctx, 424242, func(current domain.Card) (*domain.Card, error) {
		return &current, nil
	})
	assert.ErrorIs(t, err, store.ErrCardNotFound)
}

func testUpdateScheduleAbort(t *testing.T, s store.CardStore) {
	ctx := context.Background()
	card := mustAdd(t, s, 1, "cat", "кот", Epoch)
	abort := errors.New("abort")

	_, err := s.UpdateSchedule(ctx, card.ID, func(current domain.Card) (*domain.Card, error) {
		return nil, abort
	})
	assert.ErrorIs(t, err, abort)

	stored, err := s.GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(0), stored.RepetitionStep, "aborted update must not write")
	assert.True(t, stored.NextReview.Equal(Epoch))
}

func testUpdateScheduleConcurrent(t *testing.T, s store.CardStore) {
	ctx := context.Background()
	card := mustAdd(t, s, 1, "cat", "кот", Epoch)

	const workers = 2
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UpdateSchedule(ctx, card.ID, func(current domain.Card) (*domain.Card, error) {
				return srs.RecordSuccess(&current, Epoch)
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := s.GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(workers), stored.RepetitionStep, "both successes must be applied")
	assert.True(t, stored.NextReview.Equal(Epoch.AddDate(0, 0, 4)))
}

func testDistinctOwnersAndCounts(t *testing.T, s store.CardStore) {
	ctx := context.Background()

	owners, err := s.DistinctOwners(ctx)
	require.NoError(t, err)
	assert.Empty(t, owners)

	mustAdd(t, s, 30, "a", "а", Epoch)
	learned := mustAdd(t, s, 30, "b", "б", Epoch)
	mustAdd(t, s, 10, "c", "в", Epoch)
	mustAdd(t, s, 20, "d", "г", Epoch)

	learned.Learned = true
	require.NoError(t, s.Persist(ctx, learned))

	owners, err = s.DistinctOwners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30}, owners)

	total, learnedCount, err := s.CountCards(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, learnedCount)

	total, learnedCount, err = s.CountCards(ctx, 99)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, learnedCount)
}
