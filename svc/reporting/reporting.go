package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/nutriplan/portal/pkg/apiclient"
)

const (
	dashboardPath = "/api/v1/superadmin/dashboard"
	analyticsPath = "/api/v1/superadmin/analytics"
)

// Package-specific errors
var (
	// ErrInvalidPeriod is returned for analytics periods outside day/week/month
	ErrInvalidPeriod = errors.New("reporting: invalid analytics period")

	// ErrForbidden is returned when the backend refuses superadmin access
	ErrForbidden = errors.New("reporting: superadmin access required")

	// ErrSessionInvalid is returned when the backend no longer accepts the session
	ErrSessionInvalid = errors.New("reporting: session invalid")

	// ErrMalformedReport is returned when a report body cannot be decoded
	ErrMalformedReport = errors.New("reporting: malformed report payload")
)

// Period is an analytics aggregation window.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Valid reports whether p is an accepted aggregation window.
func (p Period) Valid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	}
	return false
}

// AdminRow is one tenant admin on the operator dashboard.
type AdminRow struct {
	Email       string `json:"email"`
	Plan        string `json:"plan"`
	Price       string `json:"price"`
	NextBilling string `json:"next_billing"`
}

// Overview is the operator dashboard payload.
type Overview struct {
	Admins []AdminRow `json:"admins"`
}

// Point is one bucket of the revenue series.
type Point struct {
	Label       string  `json:"label"`
	Amount      float64 `json:"amount"`
	AmountCents int64   `json:"amount_cents"`
}

// Analytics is the revenue report for one aggregation window.
type Analytics struct {
	Period       Period  `json:"period"`
	TotalRevenue float64 `json:"total_revenue"`
	Transactions int     `json:"transactions"`
	Points       []Point `json:"points"`
}

// Service reads the operator reports. All calls require a superadmin
// session; the backend enforces the role and this layer maps its refusals.
type Service struct {
	client           *apiclient.Client
	log              *slog.Logger
	onSessionInvalid func(ctx context.Context)
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger. Nil loggers are ignored.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithSessionInvalidHandler registers the hook fired on 401 responses.
func WithSessionInvalidHandler(fn func(ctx context.Context)) Option {
	return func(s *Service) {
		if fn != nil {
			s.onSessionInvalid = fn
		}
	}
}

// New creates a reporting service over the given API client.
func New(client *apiclient.Client, opts ...Option) *Service {
	if client == nil {
		panic("reporting: api client is required")
	}
	s := &Service{
		client:           client,
		log:              slog.New(slog.DiscardHandler),
		onSessionInvalid: func(context.Context) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Overview fetches the operator dashboard: every tenant admin with their
// plan, price, and next billing date.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	var overview Overview
	if err := s.get(ctx, dashboardPath, &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

// Analytics fetches the revenue series for one aggregation window.
func (s *Service) Analytics(ctx context.Context, period Period) (*Analytics, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	var analytics Analytics
	path := analyticsPath + "?period=" + url.QueryEscape(string(period))
	if err := s.get(ctx, path, &analytics); err != nil {
		return nil, err
	}
	if analytics.Period == "" {
		analytics.Period = period
	}
	return &analytics, nil
}

func (s *Service) get(ctx context.Context, path string, v any) error {
	res, err := s.client.Do(ctx, http.MethodGet, path, apiclient.WithAuth())
	if err != nil {
		return err
	}

	switch {
	case res.Status == http.StatusUnauthorized:
		s.onSessionInvalid(ctx)
		return ErrSessionInvalid
	case res.Status == http.StatusForbidden:
		return ErrForbidden
	case !res.OK:
		if msg := res.ErrorMessage(); msg != "" {
			return fmt.Errorf("reporting: %s", msg)
		}
		return fmt.Errorf("reporting: unexpected status %d", res.Status)
	}

	if res.Data == nil {
		return ErrMalformedReport
	}
	if err := res.Decode(v); err != nil {
		return errors.Join(ErrMalformedReport, err)
	}
	return nil
}
