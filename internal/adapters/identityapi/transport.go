package identityapi

import (
	"log/slog"
	"net/http"
	"strings"
)

// Anti-forgery token names. The backend issues the token in a cookie and
// expects it echoed back in a header on state-changing requests
// (double-submit pattern). Pre-migration backends used the XSRF-TOKEN name.
const (
	csrfCookieName       = "csrf_token"
	legacyCSRFCookieName = "XSRF-TOKEN"
	csrfHeaderName       = "X-Csrf-Token"
)

// headerTransport decorates every request with the JSON content headers and,
// on non-safe methods, echoes the anti-forgery cookie into its header. The
// cookie jar has already attached cookies by the time a RoundTripper runs.
type headerTransport struct {
	next http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	if !isSafeMethod(req.Method) {
		if token := csrfTokenFrom(req); token != "" {
			req.Header.Set(csrfHeaderName, token)
		}
	}
	return t.next.RoundTrip(req)
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

func csrfTokenFrom(req *http.Request) string {
	if c, err := req.Cookie(csrfCookieName); err == nil {
		return c.Value
	}
	if c, err := req.Cookie(legacyCSRFCookieName); err == nil {
		return c.Value
	}
	return ""
}

// watchTransport observes response statuses on the shared channel. Outside
// the login/logout/verification calls, a 401 means the server session died
// under us and the local session is torn down without a round-trip, while a
// 403 reroutes to a safe page instead of surfacing an error.
type watchTransport struct {
	next           http.RoundTripper
	onUnauthorized func()
	onForbidden    func()
	logger         *slog.Logger
}

func (t *watchTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if t.onUnauthorized != nil && !isOwnAuthPath(req.URL.Path) {
			t.logger.Warn("unauthorized response, invalidating local session",
				"method", req.Method, "path", req.URL.Path)
			t.onUnauthorized()
		}
	case http.StatusForbidden:
		if t.onForbidden != nil && !isOwnAuthPath(req.URL.Path) {
			t.logger.Warn("forbidden response, rerouting",
				"method", req.Method, "path", req.URL.Path)
			t.onForbidden()
		}
	}
	return resp, nil
}

// isOwnAuthPath reports whether the request targets an endpoint whose 401 and
// 403 have dedicated handling: login (401 means invalid credentials, 403 a
// disabled account — both classified errors, not reroutes), the verification
// call (a 401 there is the negative answer), and logout (teardown is already
// running).
func isOwnAuthPath(path string) bool {
	return strings.HasSuffix(path, loginPath) ||
		strings.HasSuffix(path, whoAmIPath) ||
		strings.HasSuffix(path, logoutPath)
}
