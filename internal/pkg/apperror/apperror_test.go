package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NotFound("Session not found"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.True(t, errors.Is(err, NotFound("Session not found")))
	assert.False(t, errors.Is(err, NotFound("User not found")))
}

func TestDependency_Unwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Dependency("Database unavailable", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrDependency)
	assert.Equal(t, "Database unavailable: connection refused", err.Error())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{Conflict("taken"), KindConflict},
		{fmt.Errorf("ctx: %w", Unauthorized("bad token")), KindUnauthorized},
		{Validation("bad"), KindValidation},
		{errors.New("plain"), ""},
		{nil, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err))
	}
}
