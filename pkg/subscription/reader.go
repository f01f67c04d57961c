package subscription

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/nutriplan/portal/pkg/apiclient"
)

const statusPath = "/api/v1/account/status"

// ReadState is the terminal UI state of a snapshot fetch.
type ReadState int

const (
	StateLoading ReadState = iota
	StateOK
	StateBlocked
	StateError
)

func (s ReadState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateOK:
		return "ok"
	case StateBlocked:
		return "blocked"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Reader fetches and normalizes the authoritative subscription snapshot for
// the current identity.
type Reader struct {
	client           *apiclient.Client
	onSessionInvalid func(ctx context.Context)
	log              *slog.Logger
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithSessionInvalidHandler registers the hook invoked when the backend
// answers 401 after the client's refresh path is exhausted. The session
// store's logout is the usual target.
func WithSessionInvalidHandler(fn func(ctx context.Context)) ReaderOption {
	return func(r *Reader) {
		if fn != nil {
			r.onSessionInvalid = fn
		}
	}
}

// WithReaderLogger sets the structured logger. Nil loggers are ignored.
func WithReaderLogger(log *slog.Logger) ReaderOption {
	return func(r *Reader) {
		if log != nil {
			r.log = log
		}
	}
}

// NewReader creates a snapshot reader over the given API client.
func NewReader(client *apiclient.Client, opts ...ReaderOption) *Reader {
	if client == nil {
		panic("subscription: api client is required")
	}
	r := &Reader{
		client:           client,
		onSessionInvalid: func(context.Context) {},
		log:              slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fetch reads the account status and maps it to a terminal state:
//
//   - 2xx with a parseable body -> StateOK with the snapshot attached
//   - 403/404 -> StateBlocked (access terminated, e.g. trial ended)
//   - 401 -> session invalid: the registered handler fires and the state is
//     StateError with ErrSessionInvalid; a 401 is a broken session, never a
//     business restriction
//   - anything else -> StateError
func (r *Reader) Fetch(ctx context.Context) (ReadState, *Snapshot, error) {
	res, err := r.client.Do(ctx, http.MethodGet, statusPath, apiclient.WithAuth())
	if err != nil {
		return StateError, nil, err
	}

	switch {
	case res.Status == http.StatusUnauthorized:
		r.onSessionInvalid(ctx)
		return StateError, nil, ErrSessionInvalid
	case res.Status == http.StatusForbidden || res.Status == http.StatusNotFound:
		return StateBlocked, nil, nil
	case !res.OK:
		return StateError, nil, &BusinessError{Status: res.Status, Message: res.ErrorMessage()}
	}

	snap, err := decodeSnapshot(res.Data)
	if err != nil {
		r.log.WarnContext(ctx, "failed to decode account status", slog.Any("error", err))
		return StateError, nil, err
	}

	return StateOK, snap, nil
}
