package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailExists is returned when attempting to create a user with a duplicate email.
	ErrEmailExists = errors.New("email already exists")
	// ErrResetTokenNotFound is returned when a reset token is missing or expired.
	ErrResetTokenNotFound = errors.New("reset token not found")
)
