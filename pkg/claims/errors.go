package claims

import "errors"

var (
	ErrMalformedToken = errors.New("claims: malformed token")
	ErrExpiredToken   = errors.New("claims: token is expired")
	ErrMissingExpiry  = errors.New("claims: token has no expiry claim")
)
