package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/publicsuffix"

	"github.com/workdesk/workdesk-go/internal/adapters/identityapi"
	domainauth "github.com/workdesk/workdesk-go/internal/domain/auth"
	"github.com/workdesk/workdesk-go/internal/domain/model"
	"github.com/workdesk/workdesk-go/internal/identserver"
	"github.com/workdesk/workdesk-go/internal/ports"
)

type authEnv struct {
	svc    *identserver.Service
	server *httptest.Server
	client *http.Client
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()

	svc := identserver.NewService(identserver.Options{
		Users:    identserver.NewMemoryUserRepo(),
		Sessions: identserver.NewMemorySessionStore(),
		Resets:   identserver.NewMemoryResetStore(),
	})
	_, err := svc.CreateUser(context.Background(), &model.CreateUserRequest{
		FirstName:    "Ada",
		LastName:     "Admin",
		Email:        "ada@example.com",
		Password:     "admin123",
		Role:         domainauth.RoleAdmin,
		Position:     "Head of Engineering",
		DepartmentID: 7,
	})
	require.NoError(t, err)
	_, err = svc.CreateUser(context.Background(), &model.CreateUserRequest{
		FirstName:    "Dana",
		LastName:     "Petrov",
		Email:        "dana@example.com",
		Password:     "hunter22",
		Role:         domainauth.RoleDeveloper,
		Position:     "Backend Developer",
		DepartmentID: 2,
	})
	require.NoError(t, err)

	router := NewRouter(RouterOptions{
		Auth:      &AuthHandlers{Svc: svc},
		Directory: &DirectoryHandlers{Svc: svc},
		Health:    &HealthHandlers{},
		Sessions:  svc,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	require.NoError(t, err)

	return &authEnv{svc: svc, server: server, client: &http.Client{Jar: jar}}
}

// get issues a GET; the first one primes the CSRF cookie into the jar.
func (e *authEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := e.client.Get(e.server.URL + path)
	require.NoError(t, err)
	return resp
}

// post issues a POST with the CSRF cookie echoed into the header, the way
// the browser client does.
func (e *authEnv) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token := e.csrfToken(t); token != "" {
		req.Header.Set(DefaultCSRFHeaderName, token)
	}
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	return resp
}

func (e *authEnv) csrfToken(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(e.server.URL)
	require.NoError(t, err)
	for _, c := range e.client.Jar.Cookies(u) {
		if c.Name == DefaultCSRFCookieName {
			return c.Value
		}
	}
	return ""
}

func decodeEnvelope(t *testing.T, resp *http.Response) Envelope {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env), "body: %s", raw)
	return env
}

func TestRouter_LoginLifecycle(t *testing.T) {
	env := newAuthEnv(t)

	// Unauthenticated verification: 401 and a CSRF cookie gets issued.
	resp := env.get(t, "/auth/me")
	env1 := decodeEnvelope(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, env1.IsSuccess)
	require.NotEmpty(t, env.csrfToken(t))

	resp = env.post(t, "/auth/login", map[string]any{
		"email":    "ada@example.com",
		"password": "admin123",
	})
	env2 := decodeEnvelope(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env2.IsSuccess)

	data, err := json.Marshal(env2.Data)
	require.NoError(t, err)
	var ident domainauth.Identity
	require.NoError(t, json.Unmarshal(data, &ident))
	assert.Equal(t, "ada@example.com", ident.Email)
	assert.Equal(t, domainauth.RoleAdmin, ident.Role)
	assert.Equal(t, "Head of Engineering", ident.Position)
	assert.Equal(t, 7, ident.DepartmentID)

	resp = env.get(t, "/auth/me")
	decodeEnvelope(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.post(t, "/auth/logout", map[string]any{})
	decodeEnvelope(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.get(t, "/auth/me")
	decodeEnvelope(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_LoginFailures(t *testing.T) {
	env := newAuthEnv(t)
	env.get(t, "/auth/me").Body.Close() // prime CSRF cookie

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
	}{
		{
			name:       "wrong password",
			body:       map[string]any{"email": "ada@example.com", "password": "nope123"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown account",
			body:       map[string]any{"email": "ghost@example.com", "password": "whatever"},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "missing fields",
			body:       map[string]any{"email": "", "password": ""},
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.post(t, "/auth/login", tt.body)
			env1 := decodeEnvelope(t, resp)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.False(t, env1.IsSuccess)
			assert.NotEmpty(t, env1.Message)
		})
	}
}

func TestRouter_LoginThrottled(t *testing.T) {
	env := newAuthEnv(t)
	env.get(t, "/auth/me").Body.Close()

	body := map[string]any{"email": "ada@example.com", "password": "wrong11"}
	for i := 0; i < identserver.DefaultMaxFailures; i++ {
		env.post(t, "/auth/login", body).Body.Close()
	}
	resp := env.post(t, "/auth/login", body)
	decodeEnvelope(t, resp)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestRouter_CSRFRejectsMissingHeader(t *testing.T) {
	env := newAuthEnv(t)
	env.get(t, "/auth/me").Body.Close()

	payload := []byte(`{"email":"ada@example.com","password":"admin123"}`)
	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/auth/login", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := env.client.Do(req)
	require.NoError(t, err)
	decodeEnvelope(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRouter_MalformedBody(t *testing.T) {
	env := newAuthEnv(t)
	env.get(t, "/auth/me").Body.Close()

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/auth/login", bytes.NewReader([]byte(`{"email":`)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(DefaultCSRFHeaderName, env.csrfToken(t))

	resp, err := env.client.Do(req)
	require.NoError(t, err)
	decodeEnvelope(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_PasswordResetFlow(t *testing.T) {
	env := newAuthEnv(t)
	env.get(t, "/auth/me").Body.Close()

	resp := env.post(t, "/auth/forgot-password", map[string]any{"email": "ada@example.com"})
	decodeEnvelope(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The token travels out of band; fetch one directly from the service.
	token, err := env.svc.ForgotPassword(context.Background(), "ada@example.com")
	require.NoError(t, err)

	resp = env.post(t, "/auth/reset-password", map[string]any{
		"token":       token,
		"newPassword": "fresh-pass-9",
	})
	decodeEnvelope(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.post(t, "/auth/login", map[string]any{
		"email": "ada@example.com", "password": "admin123",
	})
	decodeEnvelope(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.post(t, "/auth/login", map[string]any{
		"email": "ada@example.com", "password": "fresh-pass-9",
	})
	decodeEnvelope(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_ResetPasswordBadToken(t *testing.T) {
	env := newAuthEnv(t)
	env.get(t, "/auth/me").Body.Close()

	resp := env.post(t, "/auth/reset-password", map[string]any{
		"token":       "does-not-exist",
		"newPassword": "fresh-pass-9",
	})
	env1 := decodeEnvelope(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, env1.IsSuccess)
}

func TestRouter_ForgotPasswordUnknownEmail(t *testing.T) {
	env := newAuthEnv(t)
	env.get(t, "/auth/me").Body.Close()

	resp := env.post(t, "/auth/forgot-password", map[string]any{"email": "ghost@example.com"})
	decodeEnvelope(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_ProfileRequiresSession(t *testing.T) {
	env := newAuthEnv(t)

	resp := env.get(t, "/profile")
	env1 := decodeEnvelope(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, env1.IsSuccess)

	env.post(t, "/auth/login", map[string]any{
		"email": "ada@example.com", "password": "admin123",
	}).Body.Close()

	resp = env.get(t, "/profile")
	env2 := decodeEnvelope(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := json.Marshal(env2.Data)
	require.NoError(t, err)
	var user model.User
	require.NoError(t, json.Unmarshal(data, &user))
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, 7, user.DepartmentID)
}

func TestRouter_UserDirectoryAdminOnly(t *testing.T) {
	env := newAuthEnv(t)
	env.get(t, "/auth/me").Body.Close()

	env.post(t, "/auth/login", map[string]any{
		"email": "dana@example.com", "password": "hunter22",
	}).Body.Close()
	resp := env.get(t, "/users")
	decodeEnvelope(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	env.post(t, "/auth/login", map[string]any{
		"email": "ada@example.com", "password": "admin123",
	}).Body.Close()
	resp = env.get(t, "/users")
	env1 := decodeEnvelope(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := json.Marshal(env1.Data)
	require.NoError(t, err)
	var users []model.User
	require.NoError(t, json.Unmarshal(data, &users))
	assert.Len(t, users, 2)
}

// TestRouter_TransportClientLifecycle drives the whole stack with the real
// HTTP client instead of hand-built requests.
func TestRouter_TransportClientLifecycle(t *testing.T) {
	env := newAuthEnv(t)

	var unauthorized, forbidden atomic.Int32
	c, err := identityapi.NewClient(identityapi.Options{
		BaseURL:        env.server.URL,
		OnUnauthorized: func() { unauthorized.Add(1) },
		OnForbidden:    func() { forbidden.Add(1) },
	})
	require.NoError(t, err)

	// First contact is a POST; the client fetches the anti-forgery token
	// on its own before the double-submit check lets it through.
	ident, err := c.Login(context.Background(), ports.Credentials{
		Email:    "ada@example.com",
		Password: "admin123",
	})
	require.NoError(t, err)
	assert.Equal(t, "Head of Engineering", ident.Position)
	assert.Equal(t, 7, ident.DepartmentID)

	// Admins can browse the directory through the same cookie jar.
	resp := clientGet(t, c, env.server.URL+"/users")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Kill the session server-side; the next protected call trips the
	// unauthorized watcher.
	sid := sessionCookieValue(t, c, env.server.URL)
	require.NoError(t, env.svc.Logout(context.Background(), sid))
	resp = clientGet(t, c, env.server.URL+"/profile")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, int32(1), unauthorized.Load())

	// A developer hitting the admin-only listing trips the forbidden one.
	_, err = c.Login(context.Background(), ports.Credentials{
		Email:    "dana@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	resp = clientGet(t, c, env.server.URL+"/users")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, int32(1), forbidden.Load())
}

func clientGet(t *testing.T, c *identityapi.Client, rawURL string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	require.NoError(t, err)
	resp, err := c.HTTPClient().Do(req)
	require.NoError(t, err)
	return resp
}

func sessionCookieValue(t *testing.T, c *identityapi.Client, rawURL string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	for _, cookie := range c.HTTPClient().Jar.Cookies(u) {
		if cookie.Name == SessionCookieName {
			return cookie.Value
		}
	}
	t.Fatal("session cookie not found")
	return ""
}

func TestRouter_Healthz(t *testing.T) {
	env := newAuthEnv(t)

	resp := env.get(t, "/healthz")
	env1 := decodeEnvelope(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env1.IsSuccess)
}
