package claims

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role identifies which portal a user belongs to.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// Identity is the decoded claim set of an access token. It is a read-only
// projection used for display and route gating; the backend remains the
// authorization boundary, so nothing here should be treated as a security
// control.
type Identity struct {
	UserID             string
	Email              string
	Role               Role
	SubscriptionStatus string
	IsCanceled         bool
	IsSuperuser        bool
	ExpiresAt          time.Time // zero if the token carries no exp claim
}

// ExpiredAt reports whether the identity's token is expired at the given
// instant. A missing exp claim counts as expired.
func (i Identity) ExpiredAt(now time.Time) bool {
	return i.ExpiresAt.IsZero() || !now.Before(i.ExpiresAt)
}

// Expired reports whether the identity's token is expired now.
func (i Identity) Expired() bool {
	return i.ExpiredAt(time.Now())
}

// wireClaims mirrors the claim names the backend embeds in access tokens.
type wireClaims struct {
	jwt.RegisteredClaims
	UserID             string `json:"user_id"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	SubscriptionStatus string `json:"subscription_status"`
	IsCanceled         bool   `json:"is_canceled"`
	IsSuperuser        bool   `json:"is_superuser"`
}

// Decode extracts the claim set from an access token without verifying its
// signature. The client never holds the signing key; validity is enforced by
// the backend on every request, so the decoded result is display-only.
// Returns ErrMalformedToken if the token cannot be parsed.
func Decode(token string) (Identity, error) {
	var wc wireClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &wc); err != nil {
		return Identity{}, errors.Join(ErrMalformedToken, err)
	}

	id := Identity{
		UserID:             wc.UserID,
		Email:              wc.Email,
		Role:               Role(wc.Role),
		SubscriptionStatus: wc.SubscriptionStatus,
		IsCanceled:         wc.IsCanceled,
		IsSuperuser:        wc.IsSuperuser,
	}
	if wc.ExpiresAt != nil {
		id.ExpiresAt = wc.ExpiresAt.Time
	}

	return id, nil
}

// DecodeValid decodes the token and additionally enforces the exp claim.
// Returns ErrMissingExpiry when no exp claim is present and ErrExpiredToken
// when the token has expired.
func DecodeValid(token string, now time.Time) (Identity, error) {
	id, err := Decode(token)
	if err != nil {
		return Identity{}, err
	}
	if id.ExpiresAt.IsZero() {
		return Identity{}, ErrMissingExpiry
	}
	if id.ExpiredAt(now) {
		return Identity{}, ErrExpiredToken
	}
	return id, nil
}
