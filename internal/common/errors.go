// Package common defines sentinel errors and constants shared by the
// WasteHub server and its clients. Callers should use errors.Is to match
// the sentinels; detail is attached by wrapping with fmt.Errorf("%w: ...").
package common

import "errors"

var (
	// ErrValidation reports missing or malformed input.
	ErrValidation = errors.New("validation error")

	// ErrNotFound reports that a referenced deposit, user or hub does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState reports a lifecycle transition attempted from a state
	// that does not allow it (e.g. verifying an already decided deposit).
	ErrInvalidState = errors.New("invalid state")

	// ErrAlreadyExists reports a uniqueness conflict (e.g. duplicate email).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInternal is returned when an unexpected failure should not leak details.
	ErrInternal = errors.New("internal error")
)

// Kind returns a short, stable name for the error class err belongs to.
// It is used on the wire so callers can distinguish failures without
// parsing messages.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	default:
		return "internal"
	}
}

// FromKind is the inverse of Kind: it returns the sentinel for a wire kind.
// Unknown kinds map to ErrInternal.
func FromKind(kind string) error {
	switch kind {
	case "validation":
		return ErrValidation
	case "not_found":
		return ErrNotFound
	case "invalid_state":
		return ErrInvalidState
	case "already_exists":
		return ErrAlreadyExists
	default:
		return ErrInternal
	}
}
