package srs

import (
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
)

// intervalDays returns the review interval for a repetition step: 2^step days.
//
// The interval grows as an unbounded exponential of the number of successful
// reviews. Callers must keep step within Params.MaxRepresentableStep; negative
// steps are treated as zero.
func intervalDays(step int32) int {
	if step <= 0 {
		return 1
	}
	return 1 << uint(step)
}

// calculateNextReviewDate converts a repetition step into the next review
// timestamp: now + 2^step days, normalized to UTC and whole seconds.
//
// Days are added with AddDate rather than as a time.Duration so that large
// steps do not overflow the nanosecond representation of Duration.
func calculateNextReviewDate(step int32, now time.Time) time.Time {
	return domain.TruncateTime(now.AddDate(0, 0, intervalDays(step)))
}

// calculateNextCard creates the successor of a card after a successful review.
//
// The input card is left untouched; a copy is returned with the repetition
// step incremented by one and NextReview moved to now + 2^step' days. All
// other fields (ID, owner, texts, learned flag) are carried over unchanged.
func calculateNextCard(card *domain.Card, now time.Time) *domain.Card {
	next := *card
	next.RepetitionStep = card.RepetitionStep + 1
	next.NextReview = calculateNextReviewDate(next.RepetitionStep, now)
	return &next
}

// isDue reports whether the card's next review is at or before now.
func isDue(card *domain.Card, now time.Time) bool {
	return !card.NextReview.After(now)
}
