package review

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/domain/srs"
	"github.com/phrazzld/scry-words/internal/platform/memory"
	"github.com/phrazzld/scry-words/internal/platform/metrics"
	"github.com/phrazzld/scry-words/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 4, 10, 18, 30, 0, 0, time.UTC)

const owner int64 = 42

// flakyStore fails UpdateSchedule while failWrites is set.
type flakyStore struct {
	store.CardStore
	mu         sync.Mutex
	failWrites bool
	writes     []int64
}

func (f *flakyStore) UpdateSchedule(ctx context.Context, id int64, fn store.ScheduleFn) (*domain.Card, error) {
	f.mu.Lock()
	fail := f.failWrites
	f.writes = append(f.writes, id)
	f.mu.Unlock()
	if fail {
		return nil, store.NewStoreError("card", "update_schedule", "connection refused", store.ErrTransactionFailed)
	}
	return f.CardStore.UpdateSchedule(ctx, id, fn)
}

func (f *flakyStore) setFailing(fail bool) {
	f.mu.Lock()
	f.failWrites = fail
	f.mu.Unlock()
}

func (f *flakyStore) writtenIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.writes...)
}

func newEngine(t *testing.T, seed int64) (Engine, *flakyStore) {
	t.Helper()
	cards := &flakyStore{CardStore: memory.NewCardStore()}
	return NewEngine(cards, srs.NewDefaultService(), seed, nil, nil), cards
}

func addWords(t *testing.T, cards store.CardStore, ownerID int64, pairs ...string) []domain.Card {
	t.Helper()
	require.Zero(t, len(pairs)%2, "pairs must be front/back")

	added := make([]domain.Card, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		card, err := cards.AddCard(context.Background(), ownerID, pairs[i], pairs[i+1], testNow)
		require.NoError(t, err)
		added = append(added, *card)
	}
	return added
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{input: "due", want: ModeDueReview},
		{input: " Shuffle ", want: ModeFullShuffle},
		{input: "random", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseMode(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMode)
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// Grading is a case-insensitive comparison after trimming leading and
// trailing whitespace from both sides; everything else must match exactly.
func TestMatches(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		answer   string
		expected string
		want     bool
	}{
		{name: "exact", answer: "hello", expected: "hello", want: true},
		{name: "case folded", answer: "Hello", expected: "hello", want: true},
		{name: "cyrillic case folded", answer: "КОТ", expected: "кот", want: true},
		{name: "surrounding whitespace trimmed", answer: "  HELLO\n", expected: "hello", want: true},
		{name: "inner whitespace significant", answer: "ice cream", expected: "icecream", want: false},
		{name: "prefix", answer: "hell", expected: "hello", want: false},
		{name: "empty answer", answer: "", expected: "hello", want: false},
		{name: "blank answer", answer: "   ", expected: "hello", want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Matches(tc.answer, tc.expected))
		})
	}
}

func TestNewEngine_NilDependencies(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewEngine(nil, srs.NewDefaultService(), 1, nil, nil) })
	assert.Panics(t, func() { NewEngine(memory.NewCardStore(), nil, 1, nil, nil) })
}

func TestScenario_CatKot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, cards := newEngine(t, 1)

	card, err := cards.AddCard(ctx, owner, "cat", "кот", testNow)
	require.NoError(t, err)
	assert.Equal(t, int32(0), card.RepetitionStep)
	assert.True(t, card.NextReview.Equal(testNow))

	view, err := engine.Start(ctx, owner, ModeDueReview, testNow)
	require.NoError(t, err)
	assert.Equal(t, StatePresenting, view.State)
	assert.Equal(t, 1, view.Total)
	assert.Equal(t, 0, view.Position)
	require.NotNil(t, view.Card)
	assert.Equal(t, "cat", view.Card.Front)

	view, err = engine.SubmitAnswer(ctx, owner, "кот", testNow)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, view.State)
	assert.Nil(t, view.Card)

	stored, err := cards.GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(1), stored.RepetitionStep)
	assert.True(t, stored.NextReview.Equal(testNow.AddDate(0, 0, 2)), "got %s", stored.NextReview)

	assert.Equal(t, StateIdle, engine.Current(ctx, owner).State, "completion is reported once")
}

func TestStart_Empty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, cards := newEngine(t, 1)

	view, err := engine.Start(ctx, owner, ModeDueReview, testNow)
	assert.ErrorIs(t, err, ErrEmptyQueue)
	assert.Equal(t, StateCompleted, view.State)
	assert.Equal(t, StateIdle, engine.Current(ctx, owner).State, "no session is retained")

	addWords(t, cards, owner, "later", "позже")
	_, err = engine.Start(ctx, owner, ModeDueReview, testNow.Add(-time.Second))
	assert.ErrorIs(t, err, ErrEmptyQueue, "cards due in the future are not reviewed")

	view, err = engine.Start(ctx, owner, ModeFullShuffle, testNow.Add(-time.Second))
	require.NoError(t, err, "shuffle mode repeats every card")
	assert.Equal(t, 1, view.Total)
}

func TestStart_EmptyDiscardsPreviousSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, _ := newEngine(t, 1)

	_, err := engine.StartWith(ctx, owner, ModeFullShuffle, []domain.Card{{ID: 1, OwnerID: owner, Front: "a", Back: "b"}})
	require.NoError(t, err)

	_, err = engine.StartWith(ctx, owner, ModeDueReview, nil)
	assert.ErrorIs(t, err, ErrEmptyQueue)
	assert.Equal(t, StateIdle, engine.Current(ctx, owner).State)
}

func TestStart_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, _ := newEngine(t, 1)

	_, err := engine.Start(ctx, 0, ModeDueReview, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidOwner)

	_, err = engine.Start(ctx, owner, Mode("sometimes"), testNow)
	assert.ErrorIs(t, err, ErrInvalidMode)

	_, err = engine.StartWith(ctx, owner, Mode(""), []domain.Card{{ID: 1}})
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestStart_ReplacesPreviousSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, cards := newEngine(t, 1)
	addWords(t, cards, owner, "one", "один", "two", "два")

	view, err := engine.Start(ctx, owner, ModeDueReview, testNow)
	require.NoError(t, err)
	_, _, err = engine.Reveal(ctx, owner)
	require.NoError(t, err)
	view, err = engine.Advance(ctx, owner, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Position)

	view, err = engine.Start(ctx, owner, ModeFullShuffle, testNow)
	require.NoError(t, err)
	assert.Equal(t, ModeFullShuffle, view.Mode)
	assert.Equal(t, 0, view.Position)
	assert.Equal(t, 2, view.Total)
	assert.False(t, view.Revealed)
}

func TestInvalidState_NoSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, cards := newEngine(t, 1)
	card := addWords(t, cards, owner, "sun", "солнце")[0]

	_, view, err := engine.Reveal(ctx, owner)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, StateIdle, view.State)

	_, err = engine.Advance(ctx, owner, testNow)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = engine.SubmitAnswer(ctx, owner, "солнце", testNow)
	assert.ErrorIs(t, err, ErrInvalidState)

	assert.Empty(t, cards.writtenIDs(), "invalid operations have no side effects")
	stored, err := cards.GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, card, *stored)
}

func TestAdvance_RequiresRevealOrFailedAnswer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, cards := newEngine(t, 1)
	addWords(t, cards, owner, "sea", "море", "sky", "небо")

	_, err := engine.Start(ctx, owner, ModeDueReview, testNow)
	require.NoError(t, err)

	view, err := engine.Advance(ctx, owner, testNow)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 0, view.Position)
	assert.Empty(t, cards.writtenIDs())

	_, err = engine.SubmitAnswer(ctx, owner, "озеро", testNow)
	assert.ErrorIs(t, err, ErrGradingMismatch)

	view, err = engine.Advance(ctx, owner, testNow)
	require.NoError(t, err, "a wrong answer unlocks advance")
	assert.Equal(t, 1, view.Position)
	assert.False(t, view.Revealed, "the next card starts hidden")
}

func TestReveal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, cards := newEngine(t, 1)
	card := addWords(t, cards, owner, "moon", "луна")[0]

	_, err := engine.Start(ctx, owner, ModeDueReview, testNow)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		back, view, err := engine.Reveal(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, "луна", back)
		assert.Equal(t, StatePresenting, view.State)
		assert.True(t, view.Revealed)
		assert.Equal(t, 0, view.Position)
	}

	stored, err := cards.GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, card, *stored, "reveal never mutates the card")
}

func TestSubmitAnswer_CaseInsensitive(t *testing.T) {
	t.Parallel()

	for _, answer := range []string{"Hello", "hello"} {
		t.Run(answer, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			engine, cards := newEngine(t, 1)
			addWords(t, cards, owner, "привет", "hello")

			_, err := engine.Start(ctx, owner, ModeDueReview, testNow)
			require.NoError(t, err)

			view, err := engine.SubmitAnswer(ctx, owner, answer, testNow)
			require.NoError(t, err)
			assert.Equal(t, StateCompleted, view.State)
		})
	}
}

func TestSubmitAnswer_MismatchRetries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, cards := newEngine(t, 1)
	card := addWords(t, cards, owner, "tree", "дерево")[0]

	_, err := engine.Start(ctx, owner, ModeDueReview, testNow)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		view, err := engine.SubmitAnswer(ctx, owner, "куст", testNow)
		assert.ErrorIs(t, err, ErrGradingMismatch)
		assert.Equal(t, StatePresenting, view.State)
		assert.Equal(t, 0, view.Position)
		assert.Equal(t, card.ID, view.Card.ID)
	}

	assert.Empty(t, cards.writtenIDs(), "a wrong answer never reschedules")

	view, err := engine.SubmitAnswer(ctx, owner, "Дерево", testNow)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, view.State)
	assert.Equal(t, []int64{card.ID}, cards.writtenIDs())
}

func TestDueReview_MutatesOnlyCurrentCard(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, cards := newEngine(t, 1)
	added := addWords(t, cards, owner, "a", "а", "b", "б", "c", "в")

	_, err := engine.Start(ctx, owner, ModeDueReview, testNow)
	require.NoError(t, err)

	for i, current := range added {
		view := engine.Current(ctx, owner)
		require.Equal(t, current.ID, view.Card.ID, "due review keeps store order")

		if i%2 == 0 {
			_, err = engine.SubmitAnswer(ctx, owner, current.Back, testNow)
		} else {
			_, _, err = engine.Reveal(ctx, owner)
			require.NoError(t, err)
			_, err = engine.Advance(ctx, owner, testNow)
		}
		require.NoError(t, err)

		for j, other := range added {
			stored, err := cards.GetByID(ctx, other.ID)
			require.NoError(t, err)
			if j <= i {
				assert.Equal(t, int32(1), stored.RepetitionStep, "card %d after step %d", j, i)
				assert.True(t, stored.NextReview.Equal(testNow.AddDate(0, 0, 2)))
			} else {
				assert.Equal(t, other, *stored, "card %d must be untouched after step %d", j, i)
			}
		}
	}

	assert.Equal(t, StateIdle, engine.Current(ctx, owner).State)
	assert.Equal(t, []int64{added[0].ID, added[1].ID, added[2].ID}, cards.writtenIDs())
}

func TestFullShuffle_NeverMutates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, cards := newEngine(t, 7)
	added := addWords(t, cards, owner, "red", "красный", "green", "зелёный", "blue", "синий", "black", "чёрный")

	_, err := engine.Start(ctx, owner, ModeFullShuffle, testNow)
	require.NoError(t, err)

	for i := 0; ; i++ {
		view := engine.Current(ctx, owner)
		if view.State != StatePresenting {
			break
		}
		switch i % 3 {
		case 0:
			_, err = engine.SubmitAnswer(ctx, owner, view.Card.Back, testNow)
			require.NoError(t, err)
		case 1:
			_, err = engine.SubmitAnswer(ctx, owner, "wrong", testNow)
			require.ErrorIs(t, err, ErrGradingMismatch)
			_, err = engine.Advance(ctx, owner, testNow)
			require.NoError(t, err)
		default:
			_, _, err = engine.Reveal(ctx, owner)
			require.NoError(t, err)
			_, err = engine.Advance(ctx, owner, testNow)
			require.NoError(t, err)
		}
	}

	assert.Empty(t, cards.writtenIDs())
	all, err := cards.AllCards(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, added, all)
}

func TestFullShuffle_Bijection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, _ := newEngine(t, 99)

	input := make([]domain.Card, 25)
	for i := range input {
		input[i] = domain.Card{ID: int64(i + 1), OwnerID: owner, Front: fmt.Sprintf("w%d", i), Back: "x"}
	}
	original := append([]domain.Card(nil), input...)

	view, err := engine.StartWith(ctx, owner, ModeFullShuffle, input)
	require.NoError(t, err)
	require.Equal(t, len(input), view.Total)
	assert.Equal(t, original, input, "the caller's slice is not reordered")

	var seen []int64
	for view.State == StatePresenting {
		seen = append(seen, view.Card.ID)
		_, view, err = engine.Reveal(ctx, owner)
		require.NoError(t, err)
		view, err = engine.Advance(ctx, owner, testNow)
		require.NoError(t, err)
	}

	sorted := append([]int64(nil), seen...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	want := make([]int64, len(input))
	for i := range want {
		want[i] = int64(i + 1)
	}
	assert.Equal(t, want, sorted)
}

func TestFullShuffle_SeedIsReproducible(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	input := make([]domain.Card, 12)
	for i := range input {
		input[i] = domain.Card{ID: int64(i + 1), OwnerID: owner, Front: fmt.Sprintf("w%d", i), Back: "x"}
	}

	order := func(seed int64) []int64 {
		engine, _ := newEngine(t, seed)
		view, err := engine.StartWith(ctx, owner, ModeFullShuffle, input)
		require.NoError(t, err)

		var ids []int64
		for view.State == StatePresenting {
			ids = append(ids, view.Card.ID)
			_, _, err = engine.Reveal(ctx, owner)
			require.NoError(t, err)
			view, err = engine.Advance(ctx, owner, testNow)
			require.NoError(t, err)
		}
		return ids
	}

	assert.Equal(t, order(2024), order(2024))
}

func TestPersistenceFailure_KeepsCursor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	cards := &flakyStore{CardStore: memory.NewCardStore()}
	engine := NewEngine(cards, srs.NewDefaultService(), 1, m, nil)
	added := addWords(t, cards, owner, "rain", "дождь", "snow", "снег")

	_, err := engine.Start(ctx, owner, ModeDueReview, testNow)
	require.NoError(t, err)

	cards.setFailing(true)
	view, err := engine.SubmitAnswer(ctx, owner, "дождь", testNow)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, store.ErrTransactionFailed)
	assert.Equal(t, 0, view.Position)
	assert.Equal(t, added[0].ID, view.Card.ID)

	_, _, err = engine.Reveal(ctx, owner)
	require.NoError(t, err)
	view, err = engine.Advance(ctx, owner, testNow)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, 0, view.Position)

	stored, err := cards.GetByID(ctx, added[0].ID)
	require.NoError(t, err)
	assert.Equal(t, added[0], *stored, "nothing is written on failure")

	cards.setFailing(false)
	view, err = engine.Advance(ctx, owner, testNow)
	require.NoError(t, err, "the step can be retried")
	assert.Equal(t, 1, view.Position)
	assert.Equal(t, added[1].ID, view.Card.ID)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PersistenceFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReviewsRecorded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveSessions))
}

func TestStart_LoadFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("database is locked")
	engine := NewEngine(&failingLoadStore{CardStore: memory.NewCardStore(), err: boom}, srs.NewDefaultService(), 1, nil, nil)

	view, err := engine.Start(context.Background(), owner, ModeDueReview, testNow)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateIdle, view.State)
}

type failingLoadStore struct {
	store.CardStore
	err error
}

func (f *failingLoadStore) DueCards(context.Context, int64, time.Time, int) ([]domain.Card, error) {
	return nil, f.err
}

func TestCancel(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, cards := newEngine(t, 1)
	card := addWords(t, cards, owner, "fire", "огонь")[0]

	assert.Equal(t, StateIdle, engine.Cancel(ctx, owner).State, "cancel without a session succeeds")

	_, err := engine.Start(ctx, owner, ModeDueReview, testNow)
	require.NoError(t, err)
	_, _, err = engine.Reveal(ctx, owner)
	require.NoError(t, err)

	assert.Equal(t, StateIdle, engine.Cancel(ctx, owner).State)
	assert.Equal(t, StateIdle, engine.Current(ctx, owner).State)

	_, err = engine.Advance(ctx, owner, testNow)
	assert.ErrorIs(t, err, ErrInvalidState)

	stored, err := cards.GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, card, *stored, "cancel never touches persisted cards")
}

func TestSessions_ArePerOwner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, cards := newEngine(t, 1)
	addWords(t, cards, 1, "one", "один")
	addWords(t, cards, 2, "two", "два")

	_, err := engine.Start(ctx, 1, ModeDueReview, testNow)
	require.NoError(t, err)

	assert.Equal(t, StateIdle, engine.Current(ctx, 2).State)
	_, err = engine.SubmitAnswer(ctx, 2, "один", testNow)
	assert.ErrorIs(t, err, ErrInvalidState)

	view := engine.Current(ctx, 1)
	assert.Equal(t, "one", view.Card.Front)
}

func TestConcurrentOperations_SameOwner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, cards := newEngine(t, 1)
	added := addWords(t, cards, owner, "a", "x", "b", "x", "c", "x", "d", "x")

	_, err := engine.Start(ctx, owner, ModeDueReview, testNow)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = engine.SubmitAnswer(ctx, owner, "x", testNow)
		}()
	}
	wg.Wait()

	assert.Equal(t, StateIdle, engine.Current(ctx, owner).State)
	for _, card := range added {
		stored, err := cards.GetByID(ctx, card.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(1), stored.RepetitionStep, "each card is reviewed exactly once")
	}
}

func slotCount(e Engine) int {
	impl := e.(*engine)
	impl.mu.Lock()
	defer impl.mu.Unlock()
	return len(impl.slots)
}

func TestSlots_OnlyHeldWhileSessionIsActive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, cards := newEngine(t, 1)
	addWords(t, cards, owner, "sea", "море", "sky", "небо")

	for id := int64(1); id <= 1000; id++ {
		engine.Current(ctx, id)
		_, _, _ = engine.Reveal(ctx, id)
		_, _ = engine.Advance(ctx, id, testNow)
		_, _ = engine.SubmitAnswer(ctx, id, "x", testNow)
		engine.Cancel(ctx, id)
	}
	assert.Zero(t, slotCount(engine), "lookups for owners without a session keep nothing")

	_, err := engine.Start(ctx, 777, ModeDueReview, testNow)
	assert.ErrorIs(t, err, ErrEmptyQueue)
	assert.Zero(t, slotCount(engine), "an empty start keeps nothing")

	_, err = engine.Start(ctx, owner, ModeDueReview, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, slotCount(engine))

	_, err = engine.SubmitAnswer(ctx, owner, "море", testNow)
	require.NoError(t, err)
	view, err := engine.SubmitAnswer(ctx, owner, "небо", testNow)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, view.State)
	assert.Zero(t, slotCount(engine), "a completed session is released")

	_, err = engine.Start(ctx, owner, ModeFullShuffle, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, slotCount(engine))
	engine.Cancel(ctx, owner)
	assert.Zero(t, slotCount(engine), "a cancelled session is released")
}

func TestSlots_ReleasedAfterConcurrentUse(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, cards := newEngine(t, 1)
	addWords(t, cards, owner, "a", "x", "b", "x", "c", "x")

	_, err := engine.Start(ctx, owner, ModeFullShuffle, testNow)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			engine.Current(ctx, owner)
			engine.Current(ctx, int64(1000+i))
			_, _ = engine.SubmitAnswer(ctx, owner, "x", testNow)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, StateIdle, engine.Current(ctx, owner).State, "sixteen answers exhaust three cards")
	assert.Zero(t, slotCount(engine))
}

func TestScheduleLimit_IsNotTransient(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	cards := &flakyStore{CardStore: memory.NewCardStore()}
	engine := NewEngine(cards, srs.NewDefaultService(), 1, m, nil)

	card := addWords(t, cards, owner, "forever", "навсегда")[0]
	card.RepetitionStep = srs.DefaultMaxRepresentableStep
	require.NoError(t, cards.Persist(ctx, &card))

	_, err := engine.Start(ctx, owner, ModeDueReview, testNow)
	require.NoError(t, err)

	view, err := engine.SubmitAnswer(ctx, owner, "навсегда", testNow)
	assert.ErrorIs(t, err, ErrScheduleLimit)
	assert.ErrorIs(t, err, srs.ErrIntervalOverflow)
	assert.NotErrorIs(t, err, ErrPersistence)
	assert.Equal(t, StatePresenting, view.State)
	assert.Equal(t, 0, view.Position)

	stored, err := cards.GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, card, *stored)
	assert.Zero(t, testutil.ToFloat64(m.PersistenceFailures))

	assert.Equal(t, StateIdle, engine.Cancel(ctx, owner).State, "the owner can still leave the session")
}
