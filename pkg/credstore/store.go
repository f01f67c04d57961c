package credstore

import "context"

// TokenPair holds the access and refresh credentials. The two fields are
// always written together so storage never holds a fresh access token next
// to a stale or missing refresh token.
type TokenPair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

// IsZero reports whether neither credential is present.
func (p TokenPair) IsZero() bool {
	return p.Access == "" && p.Refresh == ""
}

// Complete reports whether both credentials are present.
func (p TokenPair) Complete() bool {
	return p.Access != "" && p.Refresh != ""
}

// Store is the durable client-side credential storage. Implementations
// persist exactly three entries: the token pair and the locale preference.
type Store interface {
	// Pair returns the stored token pair. A missing pair is not an error;
	// it is returned as the zero value.
	Pair(ctx context.Context) (TokenPair, error)

	// SetPair stores both credentials atomically.
	SetPair(ctx context.Context, pair TokenPair) error

	// Clear removes both credentials. The locale preference survives.
	Clear(ctx context.Context) error

	// Locale returns the persisted locale preference, empty if unset.
	Locale(ctx context.Context) (string, error)

	// SetLocale persists the locale preference.
	SetLocale(ctx context.Context, locale string) error
}
