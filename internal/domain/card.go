package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Card-specific validation errors
var (
	// ErrCardOwnerEmpty is returned when a card has no owner.
	ErrCardOwnerEmpty = errors.New("card owner ID cannot be empty")

	// ErrCardFrontEmpty is returned when a card's source-language text is empty.
	ErrCardFrontEmpty = errors.New("card front cannot be empty")

	// ErrCardBackEmpty is returned when a card's target-language text is empty.
	ErrCardBackEmpty = errors.New("card back cannot be empty")

	// ErrNegativeRepetitionStep is returned when a card's repetition step is below zero.
	ErrNegativeRepetitionStep = errors.New("repetition step must be greater than or equal to 0")
)

// Card is a single vocabulary entry owned by one user.
//
// Front holds the source-language text and is unique per owner. Back holds the
// target-language text the user is asked to recall. NextReview and
// RepetitionStep form the card's review schedule and are only changed by a
// successful review (see package srs).
type Card struct {
	ID             int64     `json:"id"`
	OwnerID        int64     `json:"owner_id"`
	Front          string    `json:"front"`
	Back           string    `json:"back"`
	Learned        bool      `json:"learned"`
	NextReview     time.Time `json:"next_review"`
	RepetitionStep int32     `json:"repetition_step"`
}

// NewCard builds an unsaved card for the given owner. The card is due
// immediately: NextReview is set to now, truncated to whole seconds.
// Front and back are trimmed of surrounding whitespace before validation.
func NewCard(ownerID int64, front, back string, now time.Time) (*Card, error) {
	card := &Card{
		OwnerID:        ownerID,
		Front:          strings.TrimSpace(front),
		Back:           strings.TrimSpace(back),
		NextReview:     TruncateTime(now),
		RepetitionStep: 0,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// The ID is not checked because it is assigned by the store.
func (c *Card) Validate() error {
	if c.OwnerID == 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrCardOwnerEmpty)
	}

	if strings.TrimSpace(c.Front) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrCardFrontEmpty)
	}

	if strings.TrimSpace(c.Back) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrCardBackEmpty)
	}

	if c.RepetitionStep < 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrNegativeRepetitionStep)
	}

	return nil
}

// TruncateTime normalizes a timestamp to the persisted precision: UTC, whole seconds.
func TruncateTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
