// Package credstore owns the durable client-side credential storage: the
// access/refresh token pair and the user's locale preference.
//
// The pair is read and written as a unit. Both the session store (login,
// logout) and the API client (silent refresh write-back) mutate this storage,
// so implementations must be safe for concurrent use.
package credstore
