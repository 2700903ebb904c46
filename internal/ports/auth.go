package ports

// Package ports defines interfaces (hexagonal ports) for session-controller
// behavior. Implementations live in internal/adapters; orchestration in
// internal/service and internal/guard.

import (
	"context"

	domainauth "github.com/workdesk/workdesk-go/internal/domain/auth"
)

// Credentials carries a login request.
type Credentials struct {
	Email      string
	Password   string
	RememberMe bool
}

// IdentityTransport is the boundary collaborator for the auth endpoints.
// All calls ride a cookie-bearing channel owned by the implementation.
type IdentityTransport interface {
	// Login submits credentials and returns the authenticated identity.
	// Failures are classified AppErrors (invalid_credentials, account_not_found,
	// too_many_attempts, unreachable, unknown).
	Login(ctx context.Context, creds Credentials) (domainauth.Identity, error)

	// WhoAmI is the verification call. Idempotent and side-effect-free on the
	// server. Returns (identity, true) when a server session exists,
	// (zero, false) when the server reports no session, and an error only for
	// transport-level failures.
	WhoAmI(ctx context.Context) (domainauth.Identity, bool, error)

	// Logout notifies the server. Best-effort; callers must not depend on it.
	Logout(ctx context.Context) error

	// ForgotPassword requests a reset link for the given email.
	ForgotPassword(ctx context.Context, email string) error

	// ResetPassword consumes a reset token and installs a new password.
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// SessionCookieName is the cookie carrying the server session ID on the
// credentialed channel. The server handlers set it; the client's cookie
// persistence recognizes it by this name.
const SessionCookieName = "workdesk_session"

// Mirror key names shared between the session store, the verifier, and the
// mirror adapters. The mirror is an advisory hint, never the source of truth.
const (
	MirrorKeyUserID          = "currentUserId"
	MirrorKeyUserRole        = "userRole"
	MirrorKeyRememberedEmail = "rememberedEmail"
	MirrorKeyDemoUser        = "demoUser"
	MirrorKeyDemoLoginTime   = "demoLoginTime"
)

// MirrorKeySessionCookie holds the durable copy of the server session cookie.
// Unlike the hint keys above it is load-bearing: a short-lived process (the
// CLI) restores it into the cookie jar to resume its server session.
const MirrorKeySessionCookie = "sessionCookie"

// MirrorScope selects between process-lifetime and durable persistence,
// mirroring the original session-vs-local storage split.
type MirrorScope int

const (
	// ScopeSession persists for the current process only.
	ScopeSession MirrorScope = iota
	// ScopeDurable survives process restarts.
	ScopeDurable
)

// MirrorStore is best-effort durable storage for the non-sensitive session
// mirror. Writes are last-writer-wins with no locking; callers swallow errors.
type MirrorStore interface {
	// Get returns the value for key, checking the session scope before the
	// durable scope. ok is false when the key is absent in both.
	Get(key string) (value string, ok bool)

	// GetDurable returns the value for key from the durable scope only, so a
	// caller that re-writes a key can tell which scope it originally lived in.
	GetDurable(key string) (value string, ok bool)

	// Set stores key=value in the given scope.
	Set(scope MirrorScope, key, value string) error

	// Delete removes key from both scopes.
	Delete(key string) error
}

// Navigator receives navigation signals from the controller. The consumer
// (UI shell, CLI) decides how to act on them.
type Navigator interface {
	// NavigateToLogin sends the user to the login route. returnURL carries the
	// originally requested path, or "" when there is none.
	NavigateToLogin(returnURL string)

	// NavigateTo sends the user to an application route.
	NavigateTo(path string)
}

// DemoCatalog resolves offline fallback identities when the backend is
// unreachable during login.
type DemoCatalog interface {
	// Match returns the demo identity for a known credential pair.
	Match(email, password string) (domainauth.Identity, bool)
}
