package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/workdesk/workdesk-go/internal/domain/auth"
	apperrors "github.com/workdesk/workdesk-go/internal/errors"
	"github.com/workdesk/workdesk-go/internal/identserver"
)

// AuthService defines the identity operations the auth handlers need.
type AuthService interface {
	Login(ctx context.Context, input identserver.LoginInput) (domainauth.Session, error)
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// AuthHandlers provides HTTP handlers for the authentication endpoints.
type AuthHandlers struct {
	Svc          AuthService
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
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

// Login handles credential login.
// POST /auth/login {email, password, rememberMe}.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		WriteFailure(w, http.StatusBadRequest, "email and password are required")
		return
	}

	session, err := h.Svc.Login(r.Context(), identserver.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	})
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	h.setSessionCookie(w, r, session)
	WriteSuccess(w, http.StatusOK, session.Identity())
}

// Me serves the verification endpoint. Idempotent and side-effect-free.
// GET /auth/me.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		WriteFailure(w, http.StatusUnauthorized, "no session")
		return
	}
	session, err := h.Svc.GetSession(r.Context(), cookie.Value)
	if err != nil {
		WriteFailure(w, http.StatusUnauthorized, "no session")
		return
	}
	WriteSuccess(w, http.StatusOK, session.Identity())
}

// Logout invalidates the server session and clears the cookie.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), cookie.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}
	h.clearSessionCookie(w, r)
	WriteJSON(w, http.StatusOK, Envelope{IsSuccess: true})
}

// ForgotPassword issues a password reset token for the account.
// POST /auth/forgot-password {email}.
func (h *AuthHandlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		WriteFailure(w, http.StatusBadRequest, "email is required")
		return
	}

	token, err := h.Svc.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	// Token delivery is out of band; it is logged for operators, never
	// returned in the response.
	h.logger().InfoContext(r.Context(), "reset token issued", "token", token)
	WriteJSON(w, http.StatusOK, Envelope{IsSuccess: true})
}

// ResetPassword consumes a reset token and installs a new password.
// POST /auth/reset-password {token, newPassword}.
func (h *AuthHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Token == "" {
		WriteFailure(w, http.StatusBadRequest, "token is required")
		return
	}

	if err := h.Svc.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, Envelope{IsSuccess: true})
}

// writeAuthError maps a classified service error to an HTTP status.
func (h *AuthHandlers) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidCredentials:
		status, message = http.StatusUnauthorized, err.Error()
	case apperrors.ErrCodeAccountNotFound:
		status, message = http.StatusNotFound, err.Error()
	case apperrors.ErrCodeTooManyAttempts:
		status, message = http.StatusTooManyRequests, err.Error()
	case apperrors.ErrCodeForbidden:
		status, message = http.StatusForbidden, err.Error()
	case apperrors.ErrCodeValidation:
		status, message = http.StatusBadRequest, err.Error()
	case apperrors.ErrCodeConflict:
		status, message = http.StatusConflict, err.Error()
	default:
		h.logger().ErrorContext(r.Context(), "auth handler failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}
	WriteFailure(w, status, message)
}

func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.ID,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
}

// clearSessionCookie expires the session cookie, mirroring the attributes
// used when setting it for cross-browser deletion.
func (h *AuthHandlers) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}
