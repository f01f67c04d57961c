package apiclient

import (
	"fmt"

	"github.com/google/uuid"
)

type requestOptions struct {
	body                any
	headers             map[string]string
	auth                bool
	retryOnUnauthorized bool
	idempotencyKey      string
}

func defaultRequestOptions() *requestOptions {
	return &requestOptions{
		headers:             make(map[string]string),
		retryOnUnauthorized: true,
	}
}

// RequestOption configures a single request.
type RequestOption func(*requestOptions)

// WithBody sets the request body. Strings and byte slices are sent as-is;
// any other value is serialized to JSON with a matching Content-Type.
func WithBody(body any) RequestOption {
	return func(o *requestOptions) {
		o.body = body
	}
}

// WithHeader sets a request header, overriding any default.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.headers[key] = value
	}
}

// WithAuth attaches the current access token as a bearer credential. When no
// token is stored the request proceeds unauthenticated rather than failing.
func WithAuth() RequestOption {
	return func(o *requestOptions) {
		o.auth = true
	}
}

// WithoutUnauthorizedRetry disables the transparent refresh-and-retry on 401.
// Used by calls that must observe the raw 401, e.g. the logout path.
func WithoutUnauthorizedRetry() RequestOption {
	return func(o *requestOptions) {
		o.retryOnUnauthorized = false
	}
}

// WithIdempotencyKey attaches an Idempotency-Key header so the backend can
// deduplicate retried mutations.
func WithIdempotencyKey(key string) RequestOption {
	return func(o *requestOptions) {
		o.idempotencyKey = key
	}
}

// NewIdempotencyKey builds a scoped idempotency key for a mutating request.
func NewIdempotencyKey(scope string) string {
	if scope == "" {
		scope = "portal"
	}
	return fmt.Sprintf("%s:%s", scope, uuid.NewString())
}
