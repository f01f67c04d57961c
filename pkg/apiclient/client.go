package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nutriplan/portal/pkg/credstore"
)

const defaultRefreshPath = "/api/v1/auth/refresh"

// Client issues requests against the portal backend with uniform credential
// attachment and single-retry-on-401 semantics. A 401 on an authenticated
// request triggers at most one coordinated token refresh; concurrent callers
// share a single in-flight refresh so the refresh token is consumed once.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	creds       credstore.Store
	refreshPath string
	log         *slog.Logger

	refresh singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client, e.g. for tests or proxies.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the structured logger. Nil loggers are ignored.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithRefreshPath overrides the token refresh endpoint path.
func WithRefreshPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.refreshPath = path
		}
	}
}

// New creates a Client for the given backend base URL. The credential store
// is required: it supplies bearer tokens and receives refresh write-backs.
func New(baseURL string, creds credstore.Store, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	if creds == nil {
		panic("apiclient: credential store is required")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		creds:       creds,
		refreshPath: defaultRefreshPath,
		log:         slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Do issues a request and returns a uniform result. A non-2xx response is not
// an error at this layer: the result carries the status for the caller to
// interpret. The returned error is non-nil only for transport-level failures
// (wrapped in ErrTransport) and is never a retry signal for this layer.
func (c *Client) Do(ctx context.Context, method, path string, opts ...RequestOption) (Result, error) {
	options := defaultRequestOptions()
	for _, opt := range opts {
		opt(options)
	}

	payload, contentType, err := normalizeBody(options.body)
	if err != nil {
		return Result{}, err
	}
	if contentType != "" {
		if _, ok := options.headers["Content-Type"]; !ok {
			options.headers["Content-Type"] = contentType
		}
	}

	var token string
	if options.auth {
		pair, err := c.creds.Pair(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("apiclient: read credentials: %w", err)
		}
		// A missing token is not fatal: the request proceeds unauthenticated
		// and the backend answers 401 if the endpoint requires auth.
		token = pair.Access
	}

	result, err := c.send(ctx, method, path, payload, options, token)
	if err != nil {
		return Result{}, err
	}

	if result.Status == http.StatusUnauthorized && options.auth && options.retryOnUnauthorized {
		refreshed, refreshErr := c.refreshAccessToken(ctx)
		if refreshErr != nil {
			c.log.DebugContext(ctx, "token refresh failed, returning original 401",
				slog.String("path", path), slog.Any("error", refreshErr))
			return result, nil
		}
		return c.send(ctx, method, path, payload, options, refreshed)
	}

	return result, nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, options *requestOptions, token string) (Result, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return Result{}, fmt.Errorf("apiclient: build request: %w", err)
	}

	for k, v := range options.headers {
		req.Header.Set(k, v)
	}
	if options.idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", options.idempotencyKey)
	}
	if options.auth && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, errors.Join(ErrTransport, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, errors.Join(ErrTransport, err)
	}

	result := Result{
		OK:     resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status: resp.StatusCode,
		Header: resp.Header,
	}
	// Parse failures yield nil Data rather than an error so callers can
	// still inspect the status of non-JSON responses.
	if len(raw) > 0 && json.Valid(raw) {
		result.Data = raw
	}

	return result, nil
}

// refreshAccessToken exchanges the stored refresh token for a new access
// token. Concurrent callers are coalesced into a single wire call; every
// waiter observes the same outcome. On success the new pair is written back
// to durable storage before any waiter proceeds.
func (c *Client) refreshAccessToken(ctx context.Context) (string, error) {
	v, err, _ := c.refresh.Do("token-refresh", func() (any, error) {
		pair, err := c.creds.Pair(ctx)
		if err != nil {
			return "", fmt.Errorf("apiclient: read credentials: %w", err)
		}
		if pair.Refresh == "" {
			return "", ErrNoRefreshToken
		}

		payload, err := json.Marshal(map[string]string{"refresh": pair.Refresh})
		if err != nil {
			return "", fmt.Errorf("apiclient: marshal refresh request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.refreshPath, bytes.NewReader(payload))
		if err != nil {
			return "", fmt.Errorf("apiclient: build refresh request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return "", errors.Join(ErrTransport, err)
		}
		defer resp.Body.Close() //nolint:errcheck

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", errors.Join(ErrTransport, err)
		}

		// Any non-2xx answer means the refresh token is spent or revoked.
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return "", fmt.Errorf("%w: status %d", ErrRefreshFailed, resp.StatusCode)
		}

		var out struct {
			Access string `json:"access"`
		}
		if err := json.Unmarshal(raw, &out); err != nil || out.Access == "" {
			return "", ErrRefreshFailed
		}

		// Write both fields together so storage never holds a torn pair.
		if err := c.creds.SetPair(ctx, credstore.TokenPair{Access: out.Access, Refresh: pair.Refresh}); err != nil {
			return "", fmt.Errorf("apiclient: persist refreshed pair: %w", err)
		}

		c.log.DebugContext(ctx, "access token refreshed")
		return out.Access, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// normalizeBody serializes the request body. Strings and byte slices pass
// through untouched; anything else is marshaled to JSON.
func normalizeBody(body any) (payload []byte, contentType string, err error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case string:
		return []byte(b), "", nil
	case []byte:
		return b, "", nil
	case json.RawMessage:
		return b, "application/json", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("apiclient: marshal body: %w", err)
		}
		return data, "application/json", nil
	}
}
