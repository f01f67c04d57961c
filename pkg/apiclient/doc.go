// Package apiclient is the HTTP layer between the portal and its backend.
//
// It attaches bearer credentials from the credential store, retries a request
// exactly once after a successful token refresh when the backend answers 401,
// and coalesces concurrent refresh attempts into a single wire call. Most
// refresh-token schemes invalidate the token on use, so uncoordinated
// concurrent refreshes would strand all but one caller.
//
// Non-2xx statuses are not errors here; callers inspect Result.Status.
// Network-level failures are returned as errors wrapping ErrTransport and are
// never retried at this layer.
package apiclient
