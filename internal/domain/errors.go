package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// It is wrapped together with a more specific error.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateWord is returned when an owner adds a word whose front text
	// already exists among their cards.
	ErrDuplicateWord = errors.New("word already exists")

	// ErrCardNotOwned is returned when an owner addresses a card that belongs
	// to somebody else.
	ErrCardNotOwned = errors.New("card not owned by owner")

	// ErrInvalidOwner is returned when an owner ID is missing or malformed.
	ErrInvalidOwner = errors.New("invalid owner ID")
)
