package guard

// Package guard implements the pre-navigation access checks: the
// authentication gate, the role gate, and the reverse gate for the login
// page. Each attempted navigation is evaluated once and resolves to a
// Decision; the shell owning the router acts on it.

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	domainauth "github.com/workdesk/workdesk-go/internal/domain/auth"
	"github.com/workdesk/workdesk-go/internal/session"
)

// Application route constants used by guard decisions.
const (
	PathLogin          = "/login"
	PathProjects       = "/projects"
	PathUserTasks      = "/user-tasks"
	PathTeamManagement = "/team-management"
)

// DefaultWaitTimeout bounds how long a navigation waits for a check that was
// already in progress before it is forced to Denied.
const DefaultWaitTimeout = 10 * time.Second

// CheckState is the per-navigation state machine.
type CheckState int

const (
	StateUnchecked CheckState = iota
	StateChecking
	StateAllowed
	StateDenied
)

func (s CheckState) String() string {
	switch s {
	case StateUnchecked:
		return "unchecked"
	case StateChecking:
		return "checking"
	case StateAllowed:
		return "allowed"
	case StateDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Decision is the outcome of evaluating a navigation.
type Decision struct {
	Allowed bool
	// RedirectTo is the route to send the user to when the navigation is
	// denied. Empty when Allowed.
	RedirectTo string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(redirectTo string) Decision {
	return Decision{RedirectTo: redirectTo}
}

// SessionVerifier is the slice of the session service the guards need.
type SessionVerifier interface {
	CheckSession(ctx context.Context) *domainauth.Identity
}

// ControllerOptions groups dependencies for Controller.
type ControllerOptions struct {
	Store    *session.Store
	Verifier SessionVerifier
	Logger   *slog.Logger
	// WaitTimeout overrides DefaultWaitTimeout (tests).
	WaitTimeout time.Duration
}

// Controller evaluates route access. It shares one in-progress verification
// across overlapping navigations: the first navigation to need a server
// check runs it; later arrivals wait for that check to settle rather than
// starting their own.
type Controller struct {
	store       *session.Store
	verifier    SessionVerifier
	logger      *slog.Logger
	waitTimeout time.Duration

	mu       sync.Mutex
	checking chan struct{} // non-nil while a navigation-owned check runs
}

// NewController constructs a Controller.
func NewController(opts ControllerOptions) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	waitTimeout := opts.WaitTimeout
	if waitTimeout <= 0 {
		waitTimeout = DefaultWaitTimeout
	}
	return &Controller{
		store:       opts.Store,
		verifier:    opts.Verifier,
		logger:      logger,
		waitTimeout: waitTimeout,
	}
}

// CanActivate is the authentication gate, evaluated before each navigation
// to target (a relative route path). Denials redirect to the login route
// carrying the originally requested path as returnUrl.
func (c *Controller) CanActivate(ctx context.Context, target string) Decision {
	state := StateUnchecked

	// The login page is always reachable.
	if normalizePath(target) == PathLogin {
		return allow()
	}

	// A check already in progress belongs to an earlier navigation; wait for
	// it to leave Checking instead of starting a second one.
	if ch := c.inProgress(); ch != nil {
		if !c.waitForCheck(ctx, ch) {
			c.logger.Debug("wait for in-progress check timed out", "target", target)
			return deny(PathLogin)
		}
		if c.store.IsAuthenticated() {
			return allow()
		}
		return deny(loginRedirect(target))
	}

	// Fast path: locally cached authentication requires no network call.
	if c.store.IsAuthenticated() {
		return allow()
	}

	state = StateChecking
	done := c.beginCheck()
	identity := c.verifier.CheckSession(ctx)
	c.endCheck(done)

	if identity != nil {
		state = StateAllowed
	} else {
		state = StateDenied
	}
	c.logger.Debug("auth gate resolved", "target", target, "state", state.String())

	if state == StateAllowed {
		return allow()
	}
	return deny(loginRedirect(target))
}

// RequireRoles is the role gate, layered on top of authentication. The role
// comes from a fresh verification, not the cached boolean, so a stale mirror
// can never grant access. Role mismatches redirect to the user's own default
// route rather than back to the forbidden page.
func (c *Controller) RequireRoles(ctx context.Context, target string, roles []domainauth.Role) Decision {
	if !c.store.IsAuthenticated() {
		return deny(loginRedirect(target))
	}

	// Routes without declared roles only need authentication.
	if len(roles) == 0 {
		return allow()
	}

	done := c.beginCheck()
	identity := c.verifier.CheckSession(ctx)
	c.endCheck(done)

	if identity == nil {
		return deny(PathLogin)
	}

	for _, role := range roles {
		if identity.Role == role {
			return allow()
		}
	}

	c.logger.Debug("role gate denied", "target", target, "role", identity.Role)
	return deny(DefaultRouteForRole(identity.Role))
}

// LoginPage is the reverse gate for the login route: authenticated users are
// sent to the default landing route instead of the login form.
func (c *Controller) LoginPage() Decision {
	if c.store.IsAuthenticated() {
		return deny(PathProjects)
	}
	return allow()
}

// DefaultRouteForRole maps each role to its landing route. The switch is
// exhaustive over the closed role set; anything else (only reachable through
// a zero value) lands on the login page.
func DefaultRouteForRole(role domainauth.Role) string {
	switch role {
	case domainauth.RoleDeveloper:
		return PathUserTasks
	case domainauth.RoleTechnicalManager:
		return PathTeamManagement
	case domainauth.RoleProjectManager:
		return PathProjects
	case domainauth.RoleAdmin:
		return PathProjects
	default:
		return PathLogin
	}
}

// beginCheck marks a navigation-owned check as in progress and returns the
// channel to close when it settles.
func (c *Controller) beginCheck() chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	done := make(chan struct{})
	c.checking = done
	return done
}

func (c *Controller) endCheck(done chan struct{}) {
	c.mu.Lock()
	if c.checking == done {
		c.checking = nil
	}
	c.mu.Unlock()
	close(done)
}

// inProgress returns the channel of the currently running check, or nil.
func (c *Controller) inProgress() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checking
}

// waitForCheck blocks until the in-progress check settles, the wait timeout
// elapses, or the caller's context is done. Returns true only when the check
// settled in time.
func (c *Controller) waitForCheck(ctx context.Context, ch <-chan struct{}) bool {
	timer := time.NewTimer(c.waitTimeout)
	defer timer.Stop()

	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// loginRedirect builds the login route with the originally requested path as
// returnUrl. Unsafe targets (absolute URLs, host-relative refs) are dropped.
func loginRedirect(target string) string {
	target = safeReturnPath(target)
	if target == "" || target == PathLogin {
		return PathLogin
	}
	return PathLogin + "?returnUrl=" + url.QueryEscape(target)
}

// safeReturnPath ensures the candidate is a same-origin relative path
// starting with "/". Returns "" when invalid.
func safeReturnPath(candidate string) string {
	if candidate == "" {
		return ""
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return ""
	}
	return candidate
}

func normalizePath(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	return u.Path
}
