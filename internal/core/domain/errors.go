package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition indicates the requested transition is not legal
	// from the entity's current state.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrValidation indicates the transition payload is missing or carries
	// malformed required fields.
	ErrValidation = errors.New("validation failed")
)

// invalidTransition builds a displayable rejection for an illegal
// transition attempt.
func invalidTransition(kind EntityKind, from, action string) error {
	return fmt.Errorf("%w: %s in state %s does not allow %s", ErrInvalidTransition, kind, from, action)
}

// validationErr builds a displayable payload validation failure.
func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
