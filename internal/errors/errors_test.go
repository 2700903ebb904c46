package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	err := InvalidCredentials("email or password is incorrect")
	assert.Equal(t, "email or password is incorrect", err.Error())

	cause := errors.New("connection refused")
	wrapped := Wrap(cause, ErrCodeUnreachable, "backend unreachable")
	assert.Equal(t, "backend unreachable: connection refused", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := Wrap(cause, ErrCodeUnreachable, "verify call failed")

	assert.True(t, errors.Is(err, cause))

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrCodeUnreachable, appErr.Code)
}

func TestWrap_NilError(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeUnknown, "should not exist"))
	assert.Nil(t, Wrapf(nil, ErrCodeUnknown, "should not exist %d", 1))
}

func TestCodePredicates(t *testing.T) {
	cases := []struct {
		err  error
		pred func(error) bool
	}{
		{InvalidCredentials("x"), IsInvalidCredentials},
		{AccountNotFound("x"), IsAccountNotFound},
		{TooManyAttempts("x"), IsTooManyAttempts},
		{Forbidden("x"), IsForbidden},
		{Unreachable("x"), IsUnreachable},
		{NotFound("x"), IsNotFound},
		{Conflict("x"), IsConflict},
		{Validation("x"), IsValidation},
	}

	for _, tc := range cases {
		assert.True(t, tc.pred(tc.err), "predicate failed for %v", tc.err)
		assert.False(t, tc.pred(errors.New("plain")), "predicate matched plain error")
	}
}

func TestCodePredicates_WrappedChain(t *testing.T) {
	inner := TooManyAttempts("slow down")
	outer := fmt.Errorf("login: %w", inner)

	assert.True(t, IsTooManyAttempts(outer))
	assert.False(t, IsInvalidCredentials(outer))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeForbidden, GetCode(Forbidden("no")))
	assert.Equal(t, ErrorCode(""), GetCode(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), GetCode(nil))
}

func TestGetField(t *testing.T) {
	err := ValidationField("email", "email is required")
	assert.Equal(t, "email", GetField(err))
	assert.Equal(t, "", GetField(Validation("no field")))
}
