package apiclient

import "errors"

var (
	ErrTransport      = errors.New("apiclient: transport failure")
	ErrRefreshFailed  = errors.New("apiclient: token refresh failed")
	ErrNoRefreshToken = errors.New("apiclient: no refresh token available")
	ErrInvalidBaseURL = errors.New("apiclient: invalid base URL")
)
