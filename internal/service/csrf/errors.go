package csrf

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenMissing means the request carried no token or no usable user id.
	ErrTokenMissing = errors.New("csrf token missing")
	// ErrTokenInvalid means no stored token matches the user and token pair.
	ErrTokenInvalid = errors.New("csrf token invalid")
	// ErrTokenExpired means the token matched but its validity window has passed.
	// The record has been deleted by the time this is returned.
	ErrTokenExpired = errors.New("csrf token expired")
	// ErrStorageUnavailable wraps any failure of the backing token store.
	ErrStorageUnavailable = errors.New("csrf token storage unavailable")

	errTokenCollision = errors.New("csrf token collision")
)

// Outcome classifies the result of a gate check.
type Outcome string

const (
	OutcomeAllowed Outcome = "allowed"
	OutcomeMissing Outcome = "missing"
	OutcomeInvalid Outcome = "invalid"
	OutcomeExpired Outcome = "expired"
	OutcomeError   Outcome = "error"
)

// OutcomeOf maps a Verify result to its Outcome.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeAllowed
	case errors.Is(err, ErrTokenMissing):
		return OutcomeMissing
	case errors.Is(err, ErrTokenInvalid):
		return OutcomeInvalid
	case errors.Is(err, ErrTokenExpired):
		return OutcomeExpired
	default:
		return OutcomeError
	}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}
