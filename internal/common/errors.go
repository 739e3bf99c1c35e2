// Package common defines shared constants and sentinel errors used across
// the client and server layers of pointpool. Callers should use errors.Is
// and errors.As to match these values.
package common

import (
	"errors"
	"fmt"
	"time"
)

var (
	// Validation errors, detected before any storage access.
	ErrInvalidName    = errors.New("invalid user name")
	ErrMissingDetails = errors.New("missing details")
	ErrNameExists     = errors.New("user name already exists")
	ErrInvalidAmount  = errors.New("amount must be positive")

	// Authentication errors.
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDoesNotExist   = fmt.Errorf("%w: user does not exist", ErrInvalidCredentials)
	ErrWrongPassword      = fmt.Errorf("%w: wrong password", ErrInvalidCredentials)

	// Resource errors, raised inside a transaction and followed by rollback.
	ErrTooSoon           = errors.New("too soon")
	ErrPoolClosed        = errors.New("pool closed")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")

	// Consistency errors: a concurrent transaction won, retrying is safe.
	ErrConflict = errors.New("transaction conflict")

	ErrInternal = errors.New("internal error")
)

// TooSoonError reports a collect attempt made before the user's cooldown
// expired. It matches ErrTooSoon.
type TooSoonError struct {
	NextEligible time.Time
}

func (e *TooSoonError) Error() string {
	return fmt.Sprintf("too soon: next collect at %s", e.NextEligible.UTC().Format(time.RFC3339))
}

func (e *TooSoonError) Is(target error) bool {
	return target == ErrTooSoon
}

// Kind is the coarse error class used by transports to pick a response.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindResource
	KindConsistency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindResource:
		return "resource"
	case KindConsistency:
		return "consistency"
	default:
		return "internal"
	}
}

// KindOf classifies err. Unknown errors are internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrMissingDetails),
		errors.Is(err, ErrNameExists), errors.Is(err, ErrInvalidAmount):
		return KindValidation
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrInvalidCredentials):
		return KindAuthentication
	case errors.Is(err, ErrTooSoon), errors.Is(err, ErrPoolClosed),
		errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrNotFound):
		return KindResource
	case errors.Is(err, ErrConflict):
		return KindConsistency
	default:
		return KindInternal
	}
}

// PublicMessage returns the text that may be shown to a client. Credential
// failures collapse to one message and internal errors never leak detail.
func PublicMessage(err error) string {
	var tooSoon *TooSoonError
	switch {
	case errors.As(err, &tooSoon):
		return tooSoon.Error()
	case errors.Is(err, ErrInvalidCredentials):
		return ErrInvalidCredentials.Error()
	case errors.Is(err, ErrInvalidName):
		return ErrInvalidName.Error()
	case errors.Is(err, ErrMissingDetails):
		return ErrMissingDetails.Error()
	case errors.Is(err, ErrInvalidAmount):
		return ErrInvalidAmount.Error()
	case errors.Is(err, ErrNameExists):
		return ErrNameExists.Error()
	case errors.Is(err, ErrUnauthenticated):
		return ErrUnauthenticated.Error()
	case errors.Is(err, ErrPoolClosed):
		return ErrPoolClosed.Error()
	case errors.Is(err, ErrInsufficientFunds):
		return ErrInsufficientFunds.Error()
	case errors.Is(err, ErrNotFound):
		return ErrNotFound.Error()
	case errors.Is(err, ErrConflict):
		return ErrConflict.Error()
	default:
		return ErrInternal.Error()
	}
}
