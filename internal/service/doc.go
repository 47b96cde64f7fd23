// Package service contains the application-specific use cases that sit next
// to the review engine: onboarding an owner, adding words, toggling the
// learned flag and computing statistics. It orchestrates the card store
// (defined in internal/store) and never depends on a specific database.
//
// The review session state machine lives in the review subpackage, and the
// periodic reminder sweep in the sweep subpackage.
//
// Error handling:
//   - Expected conditions are reported with sentinel errors
//     (domain.ErrDuplicateWord, domain.ErrValidation, ErrNotOwned, store.ErrCardNotFound)
//   - Unexpected failures are wrapped in ServiceError with the failing operation
//   - The API layer maps both to HTTP status codes
package service
