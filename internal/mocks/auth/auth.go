package auth

// Package auth contains simple hand-written test doubles for session ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"
	"sync/atomic"

	domainauth "github.com/workdesk/workdesk-go/internal/domain/auth"
	"github.com/workdesk/workdesk-go/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityTransport = (*MockTransport)(nil)
	_ ports.Navigator         = (*RecordingNavigator)(nil)
	_ ports.DemoCatalog       = (*StaticDemoCatalog)(nil)
)

// MockTransport simulates the identity backend for tests. Each method can be
// overridden with a func field; call counts are tracked atomically so tests
// can assert deduplication behavior under concurrency.
type MockTransport struct {
	LoginFunc          func(ctx context.Context, creds ports.Credentials) (domainauth.Identity, error)
	WhoAmIFunc         func(ctx context.Context) (domainauth.Identity, bool, error)
	LogoutFunc         func(ctx context.Context) error
	ForgotPasswordFunc func(ctx context.Context, email string) error
	ResetPasswordFunc  func(ctx context.Context, token, newPassword string) error

	// DefaultIdentity is returned by WhoAmI and Login when no func override is set.
	DefaultIdentity domainauth.Identity

	loginCalls  atomic.Int64
	whoAmICalls atomic.Int64
	logoutCalls atomic.Int64
}

// NewMockTransport creates a MockTransport with a sensible default identity.
func NewMockTransport() *MockTransport {
	return &MockTransport{
		DefaultIdentity: domainauth.Identity{
			ID:        42,
			FirstName: "Mock",
			LastName:  "User",
			Email:     "mock.user@example.com",
			Role:      domainauth.RoleDeveloper,
			IsActive:  true,
		},
	}
}

func (m *MockTransport) Login(ctx context.Context, creds ports.Credentials) (domainauth.Identity, error) {
	m.loginCalls.Add(1)
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, creds)
	}
	return m.DefaultIdentity, nil
}

func (m *MockTransport) WhoAmI(ctx context.Context) (domainauth.Identity, bool, error) {
	m.whoAmICalls.Add(1)
	if m.WhoAmIFunc != nil {
		return m.WhoAmIFunc(ctx)
	}
	return m.DefaultIdentity, true, nil
}

func (m *MockTransport) Logout(ctx context.Context) error {
	m.logoutCalls.Add(1)
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

func (m *MockTransport) ForgotPassword(ctx context.Context, email string) error {
	if m.ForgotPasswordFunc != nil {
		return m.ForgotPasswordFunc(ctx, email)
	}
	return nil
}

func (m *MockTransport) ResetPassword(ctx context.Context, token, newPassword string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, token, newPassword)
	}
	return nil
}

// LoginCalls returns the number of Login invocations.
func (m *MockTransport) LoginCalls() int { return int(m.loginCalls.Load()) }

// WhoAmICalls returns the number of WhoAmI invocations.
func (m *MockTransport) WhoAmICalls() int { return int(m.whoAmICalls.Load()) }

// LogoutCalls returns the number of Logout invocations.
func (m *MockTransport) LogoutCalls() int { return int(m.logoutCalls.Load()) }

// RecordingNavigator records navigation signals for assertions.
type RecordingNavigator struct {
	mu         sync.Mutex
	loginCalls []string
	navCalls   []string
}

// NewRecordingNavigator creates an empty RecordingNavigator.
func NewRecordingNavigator() *RecordingNavigator {
	return &RecordingNavigator{}
}

func (n *RecordingNavigator) NavigateToLogin(returnURL string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.loginCalls = append(n.loginCalls, returnURL)
}

func (n *RecordingNavigator) NavigateTo(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.navCalls = append(n.navCalls, path)
}

// LoginSignals returns the recorded navigate-to-login signals.
func (n *RecordingNavigator) LoginSignals() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.loginCalls...)
}

// Navigations returns the recorded application-route navigations.
func (n *RecordingNavigator) Navigations() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.navCalls...)
}

// StaticDemoCatalog is a DemoCatalog with a fixed table for tests.
type StaticDemoCatalog struct {
	// Entries maps email → password and identity.
	Entries map[string]struct {
		Password string
		Identity domainauth.Identity
	}
}

func (c *StaticDemoCatalog) Match(email, password string) (domainauth.Identity, bool) {
	e, ok := c.Entries[email]
	if !ok || e.Password != password {
		return domainauth.Identity{}, false
	}
	return e.Identity, true
}
