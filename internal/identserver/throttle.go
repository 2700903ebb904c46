package identserver

import (
	"sync"
	"time"
)

// loginThrottle tracks failed login attempts per email. An email with
// maxFailures failures inside the window is locked until the oldest failure
// ages out.
type loginThrottle struct {
	mu          sync.Mutex
	maxFailures int
	window      time.Duration
	failures    map[string][]time.Time
}

func newLoginThrottle(maxFailures int, window time.Duration) *loginThrottle {
	return &loginThrottle{
		maxFailures: maxFailures,
		window:      window,
		failures:    make(map[string][]time.Time),
	}
}

// locked reports whether the email has exhausted its attempts.
func (t *loginThrottle) locked(email string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.prune(email, now)) >= t.maxFailures
}

// fail records a failed attempt.
func (t *loginThrottle) fail(email string, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[email] = append(t.prune(email, now), now)
}

// reset clears recorded failures after a successful login.
func (t *loginThrottle) reset(email string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, email)
}

// prune drops failures older than the window. Caller holds the lock.
func (t *loginThrottle) prune(email string, now time.Time) []time.Time {
	recent := t.failures[email][:0]
	for _, ts := range t.failures[email] {
		if now.Sub(ts) < t.window {
			recent = append(recent, ts)
		}
	}
	if len(recent) == 0 {
		delete(t.failures, email)
		return nil
	}
	t.failures[email] = recent
	return recent
}
