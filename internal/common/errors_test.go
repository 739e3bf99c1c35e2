package common

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"invalid name", ErrInvalidName, KindValidation},
		{"wrapped name exists", fmt.Errorf("signup: %w", ErrNameExists), KindValidation},
		{"missing details", ErrMissingDetails, KindValidation},
		{"unauthenticated", ErrUnauthenticated, KindAuthentication},
		{"unknown user", ErrUserDoesNotExist, KindAuthentication},
		{"wrong password", ErrWrongPassword, KindAuthentication},
		{"too soon", &TooSoonError{NextEligible: time.Now()}, KindResource},
		{"pool closed", ErrPoolClosed, KindResource},
		{"insufficient funds", ErrInsufficientFunds, KindResource},
		{"not found", ErrNotFound, KindResource},
		{"conflict", fmt.Errorf("collect: %w", ErrConflict), KindConsistency},
		{"other", errors.New("disk on fire"), KindInternal},
		{"nil", nil, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestCredentialErrorsShareOneMessage(t *testing.T) {
	assert.True(t, errors.Is(ErrUserDoesNotExist, ErrInvalidCredentials))
	assert.True(t, errors.Is(ErrWrongPassword, ErrInvalidCredentials))
	assert.False(t, errors.Is(ErrWrongPassword, ErrUserDoesNotExist))

	assert.Equal(t, "invalid credentials", PublicMessage(ErrUserDoesNotExist))
	assert.Equal(t, "invalid credentials", PublicMessage(ErrWrongPassword))
}

func TestTooSoonError(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 12, 0, time.UTC)
	err := fmt.Errorf("collect: %w", &TooSoonError{NextEligible: at})

	assert.True(t, errors.Is(err, ErrTooSoon))

	var ts *TooSoonError
	if assert.True(t, errors.As(err, &ts)) {
		assert.Equal(t, at, ts.NextEligible)
	}
	assert.Equal(t, "too soon: next collect at 2024-05-01T12:00:12Z", PublicMessage(err))
}

func TestPublicMessage_HidesInternalDetail(t *testing.T) {
	assert.Equal(t, "internal error", PublicMessage(errors.New("pq: relation users does not exist")))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "consistency", KindConsistency.String())
	assert.Equal(t, "internal", Kind(42).String())
}
