// Package claims decodes the backend-issued access token into an identity
// projection used by the session store and route guards.
//
// Tokens are parsed without signature verification because the client side
// never possesses the signing key. The decoded identity is a UX convenience:
// the backend re-validates the token on every authenticated request.
//
// Usage:
//
//	id, err := claims.Decode(accessToken)
//	if err != nil {
//	    // malformed token, treat the session as invalid
//	}
//	if id.Expired() {
//	    // hard logout, never silent refresh during rehydration
//	}
package claims
