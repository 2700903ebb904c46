package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/workdesk/workdesk-go/internal/domain/auth"
	apperrors "github.com/workdesk/workdesk-go/internal/errors"
	"github.com/workdesk/workdesk-go/internal/ports"
	"github.com/workdesk/workdesk-go/internal/session"
)

const (
	// DefaultCheckTimeout bounds the /auth/me verification round-trip.
	DefaultCheckTimeout = 8 * time.Second
	// DefaultLogoutTimeout bounds the best-effort logout notification.
	DefaultLogoutTimeout = 5 * time.Second

	checkFlightKey = "check-session"
)

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Transport ports.IdentityTransport
	Store     *session.Store
	Demo      ports.DemoCatalog
	Navigator ports.Navigator
	Mirror    ports.MirrorStore
	Logger    *slog.Logger

	CheckTimeout  time.Duration
	LogoutTimeout time.Duration
	Now           func() time.Time
}

// SessionService reconciles the local session store against the backend:
// verification with timeout and in-flight deduplication, login with typed
// failure classification and a degraded demo path, and logout that always
// converges on the logged-out state.
type SessionService struct {
	transport ports.IdentityTransport
	store     *session.Store
	demo      ports.DemoCatalog
	nav       ports.Navigator
	mirror    ports.MirrorStore
	logger    *slog.Logger

	checkTimeout  time.Duration
	logoutTimeout time.Duration
	now           func() time.Time

	flight singleflight.Group
}

// NewSessionService constructs a SessionService.
func NewSessionService(opts SessionServiceOptions) *SessionService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	checkTimeout := opts.CheckTimeout
	if checkTimeout <= 0 {
		checkTimeout = DefaultCheckTimeout
	}
	logoutTimeout := opts.LogoutTimeout
	if logoutTimeout <= 0 {
		logoutTimeout = DefaultLogoutTimeout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &SessionService{
		transport:     opts.Transport,
		store:         opts.Store,
		demo:          opts.Demo,
		nav:           opts.Navigator,
		mirror:        opts.Mirror,
		logger:        logger,
		checkTimeout:  checkTimeout,
		logoutTimeout: logoutTimeout,
		now:           now,
	}
}

// Store exposes the underlying session store for read-only consumers.
func (s *SessionService) Store() *session.Store {
	return s.store
}

// CheckSession establishes or refreshes the session against the backend.
// At most one verification round-trip is in flight at a time; concurrent
// callers join the pending flight and observe its result. Transport failures
// are recovered locally (cleared session, then demo fallback) and never
// surfaced to the caller. Returns nil when no session could be established.
func (s *SessionService) CheckSession(ctx context.Context) *domainauth.Identity {
	ch := s.flight.DoChan(checkFlightKey, func() (any, error) {
		return s.verifyOnce(), nil
	})

	select {
	case res := <-ch:
		identity, _ := res.Val.(*domainauth.Identity)
		return identity
	case <-ctx.Done():
		// The caller stopped waiting; the shared flight keeps running and its
		// result still lands in the store when it settles.
		return nil
	}
}

// whoAmIResult carries the outcome of a single WhoAmI call.
type whoAmIResult struct {
	identity domainauth.Identity
	ok       bool
	err      error
}

// verifyOnce performs a single verification round-trip. The transport call is
// not canceled when the check timeout fires: a late success still updates the
// session store, it simply no longer changes this flight's outcome.
func (s *SessionService) verifyOnce() *domainauth.Identity {
	resultCh := make(chan whoAmIResult, 1)
	go func() {
		identity, ok, err := s.transport.WhoAmI(context.Background())
		resultCh <- whoAmIResult{identity: identity, ok: ok, err: err}
	}()

	timer := time.NewTimer(s.checkTimeout)
	defer timer.Stop()

	select {
	case res := <-resultCh:
		if res.err == nil && res.ok {
			s.store.SetSession(res.identity, domainauth.SourceServer)
			return &res.identity
		}
		if res.err != nil {
			s.logger.Debug("session verification failed", "error", res.err)
		}
		return s.fallbackToDemo()
	case <-timer.C:
		s.logger.Debug("session verification timed out", "timeout", s.checkTimeout)
		go s.applyLateResult(resultCh)
		return s.fallbackToDemo()
	}
}

// applyLateResult installs a verification result that arrived after the
// check timeout. Late arrivals are not discarded.
func (s *SessionService) applyLateResult(resultCh <-chan whoAmIResult) {
	res := <-resultCh
	if res.err == nil && res.ok {
		s.store.SetSession(res.identity, domainauth.SourceServer)
	}
}

// fallbackToDemo clears the session, then restores a fresh demo marker when
// one exists. It is the single recovery path for all verification failures.
// The marker is snapshotted before clearing (ClearSession removes it) and
// written back with its original timestamp and scope: the freshness window
// never extends across reloads, and a remember-me marker stays durable.
func (s *SessionService) fallbackToDemo() *domainauth.Identity {
	demoIdentity, hadDemo := s.store.DemoIdentity()
	var loginTime string
	scope := ports.ScopeSession
	if hadDemo && s.mirror != nil {
		loginTime, _ = s.mirror.Get(ports.MirrorKeyDemoLoginTime)
		if _, durable := s.mirror.GetDurable(ports.MirrorKeyDemoLoginTime); durable {
			scope = ports.ScopeDurable
		}
	}

	s.store.ClearSession()

	if !hadDemo {
		return nil
	}

	s.store.SetSession(demoIdentity, domainauth.SourceDemo)
	if s.mirror != nil && loginTime != "" {
		raw, err := json.Marshal(demoIdentity)
		if err == nil {
			if setErr := s.mirror.Set(scope, ports.MirrorKeyDemoUser, string(raw)); setErr != nil {
				s.logger.Debug("mirror write failed", "key", ports.MirrorKeyDemoUser, "error", setErr)
			}
			if setErr := s.mirror.Set(scope, ports.MirrorKeyDemoLoginTime, loginTime); setErr != nil {
				s.logger.Debug("mirror write failed", "key", ports.MirrorKeyDemoLoginTime, "error", setErr)
			}
		}
	}
	return &demoIdentity
}

// Login submits credentials. On success the returned identity is installed
// as the live session. Transport failures are classified; unreachable
// backends additionally try the demo catalog before giving up.
func (s *SessionService) Login(ctx context.Context, creds ports.Credentials) (domainauth.Identity, error) {
	lctx, cancel := context.WithTimeout(ctx, s.checkTimeout)
	defer cancel()

	identity, err := s.transport.Login(lctx, creds)
	if err == nil {
		s.store.SetSession(identity, domainauth.SourceServer)
		s.rememberEmail(creds)
		return identity, nil
	}

	if apperrors.IsUnreachable(err) && s.demo != nil {
		if demoIdentity, ok := s.demo.Match(creds.Email, creds.Password); ok {
			s.logger.Info("backend unreachable, using demo session", "email", creds.Email)
			s.installDemoSession(demoIdentity, creds.RememberMe)
			s.rememberEmail(creds)
			return demoIdentity, nil
		}
	}

	return domainauth.Identity{}, err
}

// installDemoSession installs a fabricated identity and writes the demo
// marker so the session survives reloads within the freshness window.
// Remember-me widens the marker to the durable scope.
func (s *SessionService) installDemoSession(identity domainauth.Identity, rememberMe bool) {
	s.store.SetSession(identity, domainauth.SourceDemo)

	if s.mirror == nil {
		return
	}
	scope := ports.ScopeSession
	if rememberMe {
		scope = ports.ScopeDurable
	}
	raw, err := json.Marshal(identity)
	if err != nil {
		s.logger.Debug("marshal demo identity failed", "error", err)
		return
	}
	if err := s.mirror.Set(scope, ports.MirrorKeyDemoUser, string(raw)); err != nil {
		s.logger.Debug("mirror write failed", "key", ports.MirrorKeyDemoUser, "error", err)
	}
	if err := s.mirror.Set(scope, ports.MirrorKeyDemoLoginTime, s.now().Format(time.RFC3339)); err != nil {
		s.logger.Debug("mirror write failed", "key", ports.MirrorKeyDemoLoginTime, "error", err)
	}
}

// rememberEmail persists or removes the remembered login email. Best-effort.
func (s *SessionService) rememberEmail(creds ports.Credentials) {
	if s.mirror == nil {
		return
	}
	var err error
	if creds.RememberMe {
		err = s.mirror.Set(ports.ScopeDurable, ports.MirrorKeyRememberedEmail, creds.Email)
	} else {
		err = s.mirror.Delete(ports.MirrorKeyRememberedEmail)
	}
	if err != nil {
		s.logger.Debug("mirror write failed", "key", ports.MirrorKeyRememberedEmail, "error", err)
	}
}

// RememberedEmail returns the stored remember-me email, if any.
func (s *SessionService) RememberedEmail() (string, bool) {
	if s.mirror == nil {
		return "", false
	}
	return s.mirror.Get(ports.MirrorKeyRememberedEmail)
}

// Logout notifies the backend (best-effort, bounded wait), then
// unconditionally clears local state and signals navigation to login,
// exactly once, even when the transport errors or panics.
func (s *SessionService) Logout(ctx context.Context) {
	defer s.finishLogout()

	func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Warn("logout transport panicked", "panic", r)
			}
		}()
		lctx, cancel := context.WithTimeout(ctx, s.logoutTimeout)
		defer cancel()
		if err := s.transport.Logout(lctx); err != nil {
			s.logger.Warn("backend logout failed", "error", err)
		}
	}()
}

func (s *SessionService) finishLogout() {
	s.store.ClearSession()
	if s.nav != nil {
		s.nav.NavigateToLogin("")
	}
}

// QuickLogout clears the session and signals navigation without any network
// call, for use from failure handlers where the transport is known bad.
func (s *SessionService) QuickLogout() {
	s.store.ClearSession()
	if s.nav != nil {
		s.nav.NavigateToLogin("")
	}
}

// ForgotPassword requests a password-reset link.
func (s *SessionService) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return apperrors.ValidationField("email", "email is required")
	}
	lctx, cancel := context.WithTimeout(ctx, s.checkTimeout)
	defer cancel()
	return s.transport.ForgotPassword(lctx, email)
}

// ResetPassword consumes a reset token.
func (s *SessionService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return apperrors.ValidationField("token", "reset token is required")
	}
	if newPassword == "" {
		return apperrors.ValidationField("newPassword", "new password is required")
	}
	lctx, cancel := context.WithTimeout(ctx, s.checkTimeout)
	defer cancel()
	return s.transport.ResetPassword(lctx, token, newPassword)
}
