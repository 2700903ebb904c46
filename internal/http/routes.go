// Package httpx wires the identity HTTP API: auth endpoints, session
// middleware, CSRF protection and health checks.
package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/workdesk/workdesk-go/internal/domain/auth"
)

// RouterOptions carries the dependencies for NewRouter.
type RouterOptions struct {
	Auth      *AuthHandlers
	Directory *DirectoryHandlers
	Health    *HealthHandlers

	// Sessions backs RequireAuth/RequireRoles on the protected routes.
	Sessions SessionService

	CSRF   CSRFConfig
	Logger *slog.Logger
}

// NewRouter builds the HTTP handler tree with the standard middleware
// chain applied: panic recovery, request logging, CSRF double-submit.
func NewRouter(opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	if opts.Auth != nil {
		mux.HandleFunc("POST /auth/login", opts.Auth.Login)
		mux.HandleFunc("GET /auth/me", opts.Auth.Me)
		mux.HandleFunc("POST /auth/logout", opts.Auth.Logout)
		mux.HandleFunc("POST /auth/forgot-password", opts.Auth.ForgotPassword)
		mux.HandleFunc("POST /auth/reset-password", opts.Auth.ResetPassword)
	}
	if opts.Directory != nil && opts.Sessions != nil {
		requireAuth := RequireAuth(opts.Sessions)
		adminOnly := RequireRoles(opts.Sessions, domainauth.RoleAdmin)
		mux.Handle("GET /profile", requireAuth(http.HandlerFunc(opts.Directory.Profile)))
		mux.Handle("GET /users", adminOnly(http.HandlerFunc(opts.Directory.List)))
	}
	if opts.Health != nil {
		mux.HandleFunc("GET /healthz", opts.Health.Healthz)
	}

	var handler http.Handler = mux
	handler = CSRFProtection(opts.CSRF)(handler)
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}
