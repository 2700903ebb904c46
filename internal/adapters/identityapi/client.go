// Package identityapi implements the identity transport over HTTP. It owns
// the cookie channel (session cookie plus anti-forgery token) and maps
// backend responses into the session controller's error taxonomy.
package identityapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	domainauth "github.com/workdesk/workdesk-go/internal/domain/auth"
	apperrors "github.com/workdesk/workdesk-go/internal/errors"
	"github.com/workdesk/workdesk-go/internal/ports"
)

const (
	loginPath          = "/auth/login"
	whoAmIPath         = "/auth/me"
	logoutPath         = "/auth/logout"
	forgotPasswordPath = "/auth/forgot-password"
	resetPasswordPath  = "/auth/reset-password"
)

// maxResponseBody bounds how much of an error response we read looking for a
// server-supplied message.
const maxResponseBody = 1 << 20

// Options configures a Client.
type Options struct {
	// BaseURL is the backend origin, e.g. "https://api.workdesk.example.com".
	BaseURL string

	// HTTPClient overrides the default client. When nil a client with a
	// publicsuffix-aware cookie jar is built. A supplied client without a
	// cookie jar gets one installed; the session rides on cookies.
	HTTPClient *http.Client

	// LegacyShape switches response decoding to the pre-migration envelope
	// ({success, user, message}) extracted via JMESPath.
	LegacyShape bool

	Logger *slog.Logger

	// OnUnauthorized fires when a request other than login, logout, or the
	// verification call comes back 401. Wired to the session service's
	// quick logout so a dead server session tears the local one down.
	OnUnauthorized func()

	// OnForbidden fires when a request other than the auth endpoints comes
	// back 403, so the consumer can route the user to a safe page instead of
	// surfacing an error.
	OnForbidden func()

	// SessionMirror, when set, keeps a durable copy of the server session
	// cookie so a new process can resume the session. The CLI wires the file
	// mirror here; long-lived consumers can leave it nil.
	SessionMirror ports.MirrorStore
}

// Client talks to the identity backend. It satisfies ports.IdentityTransport.
type Client struct {
	base    *url.URL
	http    *http.Client
	decoder responseDecoder
	logger  *slog.Logger
}

var _ ports.IdentityTransport = (*Client)(nil)

// NewClient builds a Client for the given backend.
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", opts.BaseURL)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("build cookie jar: %w", err)
		}
		hc.Jar = jar
	}
	if opts.SessionMirror != nil {
		hc.Jar = newPersistentJar(hc.Jar, opts.SessionMirror, base)
	}

	rt := hc.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	hc.Transport = &watchTransport{
		next:           &headerTransport{next: rt},
		onUnauthorized: opts.OnUnauthorized,
		onForbidden:    opts.OnForbidden,
		logger:         logger,
	}

	var dec responseDecoder = modernDecoder{}
	if opts.LegacyShape {
		dec = newLegacyDecoder()
	}

	return &Client{base: base, http: hc, decoder: dec, logger: logger}, nil
}

// HTTPClient exposes the cookie-bearing client so other backend calls share
// the session channel and its 401/403 watcher.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// Login submits credentials and returns the authenticated identity.
func (c *Client) Login(ctx context.Context, creds ports.Credentials) (domainauth.Identity, error) {
	resp, err := c.post(ctx, loginPath, loginRequest{
		Email:      creds.Email,
		Password:   creds.Password,
		RememberMe: creds.RememberMe,
	})
	if err != nil {
		return domainauth.Identity{}, classifyTransportError(err)
	}
	defer drainClose(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return domainauth.Identity{}, classifyTransportError(err)
	}

	if resp.StatusCode != http.StatusOK {
		return domainauth.Identity{}, classifyStatus(resp.StatusCode, c.decoder.Message(body))
	}

	env, err := c.decoder.Decode(body)
	if err != nil {
		return domainauth.Identity{}, apperrors.Wrap(err, apperrors.ErrCodeUnknown, "malformed login response")
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "invalid email or password"
		}
		return domainauth.Identity{}, apperrors.InvalidCredentials(msg)
	}

	identity, err := env.Identity()
	if err != nil {
		return domainauth.Identity{}, apperrors.Wrap(err, apperrors.ErrCodeUnknown, "malformed login response")
	}
	return identity, nil
}

// WhoAmI verifies the server session. A 401 is the negative answer, not an
// error; errors are reserved for transport-level failures.
func (c *Client) WhoAmI(ctx context.Context) (domainauth.Identity, bool, error) {
	req, err := c.newRequest(ctx, http.MethodGet, whoAmIPath, nil)
	if err != nil {
		return domainauth.Identity{}, false, classifyTransportError(err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return domainauth.Identity{}, false, classifyTransportError(err)
	}
	defer drainClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return domainauth.Identity{}, false, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		return domainauth.Identity{}, false, classifyStatus(resp.StatusCode, c.decoder.Message(body))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return domainauth.Identity{}, false, classifyTransportError(err)
	}
	env, err := c.decoder.Decode(body)
	if err != nil {
		return domainauth.Identity{}, false, apperrors.Wrap(err, apperrors.ErrCodeUnknown, "malformed verification response")
	}
	if !env.Success {
		return domainauth.Identity{}, false, nil
	}
	identity, err := env.Identity()
	if err != nil {
		return domainauth.Identity{}, false, apperrors.Wrap(err, apperrors.ErrCodeUnknown, "malformed verification response")
	}
	return identity, true, nil
}

// Logout notifies the server. Best-effort; a 401 means the session is
// already gone and counts as success.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.post(ctx, logoutPath, struct{}{})
	if err != nil {
		return classifyTransportError(err)
	}
	defer drainClose(resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		return classifyStatus(resp.StatusCode, c.decoder.Message(body))
	}
}

// ForgotPassword requests a reset link for the given email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	resp, err := c.post(ctx, forgotPasswordPath, forgotPasswordRequest{Email: email})
	if err != nil {
		return classifyTransportError(err)
	}
	defer drainClose(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	return classifyStatus(resp.StatusCode, c.decoder.Message(body))
}

// ResetPassword consumes a reset token and installs a new password.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	resp, err := c.post(ctx, resetPasswordPath, resetPasswordRequest{
		Token:       token,
		NewPassword: newPassword,
	})
	if err != nil {
		return classifyTransportError(err)
	}
	defer drainClose(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	msg := c.decoder.Message(body)
	if resp.StatusCode == http.StatusBadRequest {
		if msg == "" {
			msg = "invalid or expired reset token"
		}
		return apperrors.Validation(msg)
	}
	return classifyStatus(resp.StatusCode, msg)
}

func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	c.ensureCSRFToken(ctx)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.http.Do(req)
}

// ensureCSRFToken primes the anti-forgery cookie before the first
// state-changing request: the backend issues the token on any response, so a
// cheap verification GET fills an empty jar. Best-effort; when the backend is
// down, the request that follows fails with its own classification.
func (c *Client) ensureCSRFToken(ctx context.Context) {
	if c.jarHasCSRFToken() {
		return
	}
	req, err := c.newRequest(ctx, http.MethodGet, whoAmIPath, nil)
	if err != nil {
		return
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("anti-forgery token fetch failed", "error", err)
		return
	}
	drainClose(resp.Body)
}

func (c *Client) jarHasCSRFToken() bool {
	if c.http.Jar == nil {
		return false
	}
	for _, cookie := range c.http.Jar.Cookies(c.base) {
		if cookie.Name == csrfCookieName || cookie.Name == legacyCSRFCookieName {
			return true
		}
	}
	return false
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	return http.NewRequestWithContext(ctx, method, u.String(), body)
}

// classifyStatus maps an HTTP status to the controller's error taxonomy.
func classifyStatus(status int, message string) error {
	switch status {
	case http.StatusUnauthorized:
		if message == "" {
			message = "invalid email or password"
		}
		return apperrors.InvalidCredentials(message)
	case http.StatusNotFound:
		if message == "" {
			message = "account not found"
		}
		return apperrors.AccountNotFound(message)
	case http.StatusTooManyRequests:
		if message == "" {
			message = "too many attempts, try again later"
		}
		return apperrors.TooManyAttempts(message)
	case http.StatusForbidden:
		if message == "" {
			message = "access denied"
		}
		return apperrors.Forbidden(message)
	default:
		if message == "" {
			message = fmt.Sprintf("unexpected response status %d", status)
		}
		return apperrors.Unknown(message)
	}
}

// classifyTransportError folds network failures, timeouts, and context
// cancellation into unreachable, which is the only error class that may
// trigger the demo fallback.
func classifyTransportError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(err, apperrors.ErrCodeUnreachable, "backend not reachable")
}

func drainClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxResponseBody))
	_ = body.Close()
}
