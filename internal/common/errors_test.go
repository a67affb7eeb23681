package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", fmt.Errorf("%w: amount must be positive", ErrValidation), "validation"},
		{"not found", fmt.Errorf("deposit d1: %w", ErrNotFound), "not_found"},
		{"invalid state", fmt.Errorf("%w: deposit is verified", ErrInvalidState), "invalid_state"},
		{"already exists", ErrAlreadyExists, "already_exists"},
		{"other", errors.New("db is down"), "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestFromKind_RoundTrip(t *testing.T) {
	for _, sentinel := range []error{ErrValidation, ErrNotFound, ErrInvalidState, ErrAlreadyExists} {
		assert.ErrorIs(t, FromKind(Kind(sentinel)), sentinel)
	}
	assert.ErrorIs(t, FromKind("teapot"), ErrInternal)
	assert.ErrorIs(t, FromKind(""), ErrInternal)
}
