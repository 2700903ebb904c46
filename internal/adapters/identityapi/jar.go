package identityapi

import (
	"net/http"
	"net/url"

	"github.com/workdesk/workdesk-go/internal/ports"
)

// persistentJar decorates a cookie jar with a durable copy of the server
// session cookie, so a short-lived process (the CLI) can resume its session
// on the next run. Other cookies stay in the wrapped jar only.
type persistentJar struct {
	http.CookieJar
	mirror ports.MirrorStore
	base   *url.URL
}

// newPersistentJar wraps jar and seeds it with the mirrored session cookie
// when one was left behind by an earlier process. A stale cookie is harmless:
// the server answers 401 and the normal teardown replaces it.
func newPersistentJar(jar http.CookieJar, mirror ports.MirrorStore, base *url.URL) *persistentJar {
	if v, ok := mirror.Get(ports.MirrorKeySessionCookie); ok && v != "" {
		jar.SetCookies(base, []*http.Cookie{{
			Name:  ports.SessionCookieName,
			Value: v,
			Path:  "/",
		}})
	}
	return &persistentJar{CookieJar: jar, mirror: mirror, base: base}
}

// SetCookies forwards to the wrapped jar and keeps the durable copy in sync:
// a login persists the session cookie, a logout deletion removes it.
func (j *persistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.CookieJar.SetCookies(u, cookies)
	for _, c := range cookies {
		if c.Name != ports.SessionCookieName {
			continue
		}
		if c.Value == "" || c.MaxAge < 0 {
			_ = j.mirror.Delete(ports.MirrorKeySessionCookie)
			continue
		}
		_ = j.mirror.Set(ports.ScopeDurable, ports.MirrorKeySessionCookie, c.Value)
	}
}
