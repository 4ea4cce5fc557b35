package domain

import "errors"

// Domain errors shared by the entities in this package and by callers that
// validate input before building them.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidItemReference is returned when a learnable item reference does
	// not name exactly one flashcard, question or topic.
	ErrInvalidItemReference = errors.New("invalid item reference")

	// ErrInvalidItemKind is returned when an item kind string is not recognized.
	ErrInvalidItemKind = errors.New("invalid item kind")
)
