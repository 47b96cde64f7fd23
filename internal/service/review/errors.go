package review

import (
	"errors"
	"fmt"

	"github.com/phrazzld/scry-words/internal/domain"
)

// Session errors. Callers check for them with errors.Is(); the API layer
// maps them to status codes.
var (
	// ErrEmptyQueue is returned by Start when there is nothing to review.
	// It is informational: the returned view is in StateCompleted.
	ErrEmptyQueue = errors.New("nothing to review")

	// ErrInvalidState is returned when an operation is addressed to an owner
	// without a session, or to a session that cannot accept it yet.
	ErrInvalidState = errors.New("operation not valid in the current session state")

	// ErrGradingMismatch is returned when a typed answer does not match the
	// current card. The session stays on the same card.
	ErrGradingMismatch = errors.New("answer does not match")

	// ErrPersistence is returned when a review could not be loaded from or
	// written to the card store. The session is left unchanged.
	ErrPersistence = errors.New("card store operation failed")

	// ErrScheduleLimit is returned when a successful review would push the
	// current card past the longest representable interval. Nothing is
	// written and the session stays on the card; retrying cannot succeed.
	ErrScheduleLimit = errors.New("card cannot be rescheduled further")

	// ErrInvalidMode is returned for an unknown review mode.
	ErrInvalidMode = fmt.Errorf("%w: unknown review mode", domain.ErrValidation)
)
