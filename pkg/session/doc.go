// Package session implements the client-side session store: token
// persistence, claim decoding, rehydration on navigation, and logout
// signaling.
//
// The store owns the access/refresh token pair exclusively. Pages read the
// State projection through guards (see pkg/guard); they never touch storage
// directly. Decode failures and expiry are resolved here and never bubble to
// page code as panics or opaque failures.
package session
