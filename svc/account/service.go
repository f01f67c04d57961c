package account

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/nutriplan/portal/pkg/apiclient"
	"github.com/nutriplan/portal/pkg/claims"
	"github.com/nutriplan/portal/pkg/credstore"
	"github.com/nutriplan/portal/pkg/session"
)

const (
	loginPath           = "/api/v1/auth/login"
	superadminLoginPath = "/api/v1/auth/superadmin_login"
	registerPath        = "/api/v1/auth/register"
	pendingSignupPath   = "/api/v1/auth/pending_signup/"
	forgotPasswordPath  = "/api/v1/auth/forgot_password"
	resetPasswordPath   = "/api/v1/auth/reset_password/confirm"
)

// Service implements the account flows: login, registration via invite
// token, and the password reset pair. Successful logins hand the issued
// token pair to the session manager; everything else is stateless.
type Service struct {
	client   *apiclient.Client
	sessions *session.Manager
	log      *slog.Logger
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

// New creates an account service. Both dependencies are required.
func New(client *apiclient.Client, sessions *session.Manager, opts ...Option) *Service {
	if client == nil {
		panic("account: api client is required")
	}
	if sessions == nil {
		panic("account: session manager is required")
	}
	s := &Service{
		client:   client,
		sessions: sessions,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// tokenResponse is the body of every successful authentication call.
type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login signs an admin in with email and password. Rejections distinguish an
// unknown account from a wrong password so the login screen can say which.
func (s *Service) Login(ctx context.Context, email, password string) error {
	res, err := s.client.Do(ctx, http.MethodPost, loginPath,
		apiclient.WithBody(map[string]string{"username": email, "password": password}),
	)
	if err != nil {
		return err
	}
	if !res.OK {
		return loginRejection(res)
	}
	return s.establishSession(ctx, res)
}

// SuperadminLogin signs a superadmin in. A valid credential pair whose
// claims lack the superadmin role is rejected and the session is torn down
// again, so a plain admin can never end up behind the operator screens.
func (s *Service) SuperadminLogin(ctx context.Context, username, password string) error {
	res, err := s.client.Do(ctx, http.MethodPost, superadminLoginPath,
		apiclient.WithBody(map[string]string{"username": username, "password": password}),
	)
	if err != nil {
		return err
	}
	if !res.OK {
		return loginRejection(res)
	}
	if err := s.establishSession(ctx, res); err != nil {
		return err
	}
	if id := s.sessions.Identity(); id.Role != claims.RoleSuperadmin && !id.IsSuperuser {
		s.sessions.Logout(ctx, session.SuperadminLoginPath)
		return ErrNotSuperadmin
	}
	return nil
}

// PendingSignup resolves an invite token to the email it was issued for,
// shown read-only on the registration form.
func (s *Service) PendingSignup(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidSignupToken
	}

	res, err := s.client.Do(ctx, http.MethodGet, pendingSignupPath+url.PathEscape(token))
	if err != nil {
		return "", err
	}
	if !res.OK {
		return "", ErrInvalidSignupToken
	}

	var out struct {
		Email string `json:"email"`
	}
	if err := res.Decode(&out); err != nil || out.Email == "" {
		return "", ErrInvalidSignupToken
	}
	return out.Email, nil
}

// Register creates the account behind an invite token and signs it in
// immediately, mirroring the register-then-login sequence of the signup
// screen.
func (s *Service) Register(ctx context.Context, email, password, token string) error {
	res, err := s.client.Do(ctx, http.MethodPost, registerPath,
		apiclient.WithBody(map[string]string{"email": email, "password": password, "token": token}),
	)
	if err != nil {
		return err
	}
	if !res.OK {
		if msg := rejectionMessage(res); msg != "" {
			return fmt.Errorf("%w: %s", ErrRegistrationFailed, msg)
		}
		return ErrRegistrationFailed
	}

	return s.Login(ctx, email, password)
}

// ForgotPassword requests a reset link for the given email.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	res, err := s.client.Do(ctx, http.MethodPost, forgotPasswordPath,
		apiclient.WithBody(map[string]string{"email": email}),
	)
	if err != nil {
		return err
	}
	if !res.OK {
		if msg := rejectionMessage(res); msg != "" {
			return fmt.Errorf("%w: %s", ErrEmailNotRegistered, msg)
		}
		return ErrEmailNotRegistered
	}
	return nil
}

// ResetPassword completes a reset link. The confirmation comparison and the
// link sanity check run locally before the wire call.
func (s *Service) ResetPassword(ctx context.Context, uid, token, newPassword, confirm string) error {
	if uid == "" || token == "" {
		return ErrInvalidResetLink
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}

	res, err := s.client.Do(ctx, http.MethodPost, resetPasswordPath,
		apiclient.WithBody(map[string]string{"uid": uid, "token": token, "new_password": newPassword}),
	)
	if err != nil {
		return err
	}
	if !res.OK {
		if msg := rejectionMessage(res); msg != "" {
			return fmt.Errorf("%w: %s", ErrResetFailed, msg)
		}
		return ErrResetFailed
	}
	return nil
}

// Logout tears down the local session. The backend keeps no session state
// beyond the refresh token, which is abandoned rather than revoked.
func (s *Service) Logout(ctx context.Context) {
	s.sessions.Logout(ctx)
}

func (s *Service) establishSession(ctx context.Context, res apiclient.Result) error {
	var tokens tokenResponse
	if err := res.Decode(&tokens); err != nil || tokens.Access == "" || tokens.Refresh == "" {
		return ErrLoginFailed
	}
	return s.sessions.Login(ctx, credstore.TokenPair{Access: tokens.Access, Refresh: tokens.Refresh})
}

// rejection is the backend's error envelope. Some endpoints nest the payload
// under "detail", others return it flat.
type rejection struct {
	Detail    json.RawMessage `json:"detail"`
	ErrorCode string          `json:"error_code"`
	Error     string          `json:"error"`
	Message   string          `json:"message"`
}

func decodeRejection(res apiclient.Result) rejection {
	var rej rejection
	if res.Data == nil {
		return rej
	}
	if err := json.Unmarshal(res.Data, &rej); err != nil {
		return rejection{}
	}
	if len(rej.Detail) > 0 && rej.Detail[0] == '{' {
		var nested rejection
		if err := json.Unmarshal(rej.Detail, &nested); err == nil {
			return nested
		}
	}
	return rej
}

func rejectionMessage(res apiclient.Result) string {
	rej := decodeRejection(res)
	if rej.Error != "" {
		return rej.Error
	}
	return rej.Message
}

// loginRejection maps a failed login to an error the screen can show
// verbatim: unknown account, wrong password, or a generic failure carrying
// the server message when one is present.
func loginRejection(res apiclient.Result) error {
	rej := decodeRejection(res)
	switch {
	case res.Status == http.StatusNotFound || rej.ErrorCode == "USER_NOT_FOUND":
		return ErrAccountNotFound
	case res.Status == http.StatusUnauthorized || rej.ErrorCode == "WRONG_PASSWORD":
		return ErrWrongPassword
	case rej.Error != "":
		return fmt.Errorf("%w: %s", ErrLoginFailed, rej.Error)
	default:
		return ErrLoginFailed
	}
}
