package account

import "errors"

// Package-specific errors
var (
	// ErrAccountNotFound is returned when no account matches the given email
	ErrAccountNotFound = errors.New("no account found with that email")

	// ErrWrongPassword is returned when the account exists but the password is wrong
	ErrWrongPassword = errors.New("account found, but the password is incorrect")

	// ErrLoginFailed is returned for login rejections with no recognizable cause
	ErrLoginFailed = errors.New("unable to log in")

	// ErrInvalidSignupToken is returned when a registration link is invalid or expired
	ErrInvalidSignupToken = errors.New("invalid or expired registration link")

	// ErrRegistrationFailed is returned when the backend rejects a registration
	ErrRegistrationFailed = errors.New("registration failed")

	// ErrEmailNotRegistered is returned when a password reset is requested for an unknown email
	ErrEmailNotRegistered = errors.New("email not found or not registered")

	// ErrPasswordMismatch is returned when the password confirmation does not match
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrInvalidResetLink is returned when the reset link is missing its uid or token
	ErrInvalidResetLink = errors.New("missing or invalid reset link")

	// ErrResetFailed is returned when the backend rejects a password reset
	ErrResetFailed = errors.New("password reset failed")

	// ErrNotSuperadmin is returned when a superadmin login succeeds for a non-superadmin account
	ErrNotSuperadmin = errors.New("account is not a superadmin")
)
