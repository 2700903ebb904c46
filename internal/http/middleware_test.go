package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/workdesk/workdesk-go/internal/domain/auth"
)

type fakeSessions struct {
	sessions map[string]*domainauth.Session
}

func (f *fakeSessions) GetSession(_ context.Context, id string) (*domainauth.Session, error) {
	if s, ok := f.sessions[id]; ok {
		return s, nil
	}
	return nil, errors.New("session not found")
}

func newFakeSessions(role domainauth.Role) *fakeSessions {
	return &fakeSessions{sessions: map[string]*domainauth.Session{
		"sid-1": {
			ID:        "sid-1",
			UserID:    7,
			FirstName: "Dana",
			LastName:  "Petrov",
			Email:     "dana@example.com",
			Role:      role,
		},
	}}
}

func echoSessionHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := GetSessionFromContext(r.Context())
		require.True(t, ok, "session missing from context")
		WriteSuccess(w, http.StatusOK, session.Identity())
	})
}

func TestRequireAuth(t *testing.T) {
	sessions := newFakeSessions(domainauth.RoleDeveloper)
	handler := RequireAuth(sessions)(echoSessionHandler(t))

	t.Run("no cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/projects", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sid-stale"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/projects", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sid-1"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireRoles(t *testing.T) {
	tests := []struct {
		name     string
		role     domainauth.Role
		allowed  []domainauth.Role
		wantCode int
	}{
		{
			name:     "matching role",
			role:     domainauth.RoleAdmin,
			allowed:  []domainauth.Role{domainauth.RoleAdmin, domainauth.RoleProjectManager},
			wantCode: http.StatusOK,
		},
		{
			name:     "mismatched role",
			role:     domainauth.RoleDeveloper,
			allowed:  []domainauth.Role{domainauth.RoleAdmin},
			wantCode: http.StatusForbidden,
		},
		{
			name:     "empty role list only requires auth",
			role:     domainauth.RoleDeveloper,
			allowed:  nil,
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := newFakeSessions(tt.role)
			handler := RequireRoles(sessions, tt.allowed...)(echoSessionHandler(t))

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sid-1"})
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestRequireRoles_Unauthenticated(t *testing.T) {
	sessions := newFakeSessions(domainauth.RoleAdmin)
	handler := RequireRoles(sessions, domainauth.RoleAdmin)(echoSessionHandler(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
