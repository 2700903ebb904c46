package session

// Package session holds the single source of truth for the current session
// state within the running client. State changes are full replacements and
// are published synchronously, in order, to every subscriber.

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	domainauth "github.com/workdesk/workdesk-go/internal/domain/auth"
	"github.com/workdesk/workdesk-go/internal/ports"
)

// DefaultDemoWindow is how long a demo-session marker stays trustworthy.
const DefaultDemoWindow = 24 * time.Hour

// Subscriber receives the full session state after every change.
type Subscriber func(domainauth.SessionState)

// StoreOptions groups dependencies for Store.
type StoreOptions struct {
	Mirror ports.MirrorStore
	Logger *slog.Logger
	// DemoWindow bounds demo-marker freshness; DefaultDemoWindow when zero.
	DemoWindow time.Duration
	// Now overrides the clock for tests.
	Now func() time.Time
}

// Store is the process-wide session state container. All mutation goes
// through SetSession/ClearSession; reads never block on I/O beyond the
// best-effort mirror.
type Store struct {
	mu          sync.Mutex
	state       domainauth.SessionState
	subscribers map[int]Subscriber
	nextSubID   int

	mirror     ports.MirrorStore
	logger     *slog.Logger
	demoWindow time.Duration
	now        func() time.Time
}

// NewStore constructs a Store starting in the empty state.
func NewStore(opts StoreOptions) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	window := opts.DemoWindow
	if window <= 0 {
		window = DefaultDemoWindow
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		state:       domainauth.EmptyState(),
		subscribers: make(map[int]Subscriber),
		mirror:      opts.Mirror,
		logger:      logger,
		demoWindow:  window,
		now:         now,
	}
}

// SetSession installs an authenticated session and mirrors the non-sensitive
// identity hints. Mirror failures are swallowed: the in-memory state is the
// source of truth and this operation cannot fail.
func (s *Store) SetSession(identity domainauth.Identity, src domainauth.Source) {
	s.mu.Lock()
	s.state = domainauth.AuthenticatedState(identity, src)
	state := s.state
	subs := s.snapshotSubscribers()
	s.mu.Unlock()

	if s.mirror != nil {
		if err := s.mirror.Set(ports.ScopeDurable, ports.MirrorKeyUserID, strconv.Itoa(identity.ID)); err != nil {
			s.logger.Debug("mirror write failed", "key", ports.MirrorKeyUserID, "error", err)
		}
		if err := s.mirror.Set(ports.ScopeDurable, ports.MirrorKeyUserRole, string(identity.Role)); err != nil {
			s.logger.Debug("mirror write failed", "key", ports.MirrorKeyUserRole, "error", err)
		}
	}

	s.notify(subs, state)
}

// ClearSession installs the empty state and removes the mirror hints and any
// demo-mode markers.
func (s *Store) ClearSession() {
	s.mu.Lock()
	s.state = domainauth.EmptyState()
	state := s.state
	subs := s.snapshotSubscribers()
	s.mu.Unlock()

	if s.mirror != nil {
		for _, key := range []string{
			ports.MirrorKeyUserID,
			ports.MirrorKeyUserRole,
			ports.MirrorKeyDemoUser,
			ports.MirrorKeyDemoLoginTime,
		} {
			if err := s.mirror.Delete(key); err != nil {
				s.logger.Debug("mirror delete failed", "key", key, "error", err)
			}
		}
	}

	s.notify(subs, state)
}

// CurrentIdentity returns the live identity, falling back to an unexpired
// demo marker from the mirror. Returns nil when neither exists.
func (s *Store) CurrentIdentity() *domainauth.Identity {
	s.mu.Lock()
	identity := s.state.Identity
	s.mu.Unlock()

	if identity != nil {
		return identity
	}

	if demo, ok := s.demoIdentity(); ok {
		return &demo
	}
	return nil
}

// IsAuthenticated reports whether any of the in-memory authenticated flag,
// an unexpired demo marker, or a held identity is present. The redundancy is
// intentional: a page reload must not appear logged out before the verifier
// has had a chance to run.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	authenticated := s.state.Authenticated
	hasIdentity := s.state.Identity != nil
	s.mu.Unlock()

	if authenticated || hasIdentity {
		return true
	}
	return s.hasFreshDemoMarker()
}

// Role returns the current identity's role, or ("", false) when no identity
// is held.
func (s *Store) Role() (domainauth.Role, bool) {
	identity := s.CurrentIdentity()
	if identity == nil {
		return "", false
	}
	return identity.Role, true
}

// State returns a snapshot of the live session state.
func (s *Store) State() domainauth.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for synchronous notification on every state change.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn Subscriber) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// snapshotSubscribers must be called with s.mu held. Notifications run
// outside the lock so a subscriber may re-enter the store.
func (s *Store) snapshotSubscribers() []Subscriber {
	subs := make([]Subscriber, 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func (s *Store) notify(subs []Subscriber, state domainauth.SessionState) {
	for _, fn := range subs {
		fn(state)
	}
}

// hasFreshDemoMarker reports whether the mirror holds a demo marker written
// within the freshness window.
func (s *Store) hasFreshDemoMarker() bool {
	if s.mirror == nil {
		return false
	}
	if _, ok := s.mirror.Get(ports.MirrorKeyDemoUser); !ok {
		return false
	}
	raw, ok := s.mirror.Get(ports.MirrorKeyDemoLoginTime)
	if !ok {
		return false
	}
	loginTime, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return false
	}
	return s.now().Sub(loginTime) < s.demoWindow
}

// demoIdentity returns the parsed demo identity when the marker is fresh.
func (s *Store) demoIdentity() (domainauth.Identity, bool) {
	if !s.hasFreshDemoMarker() {
		return domainauth.Identity{}, false
	}
	raw, ok := s.mirror.Get(ports.MirrorKeyDemoUser)
	if !ok {
		return domainauth.Identity{}, false
	}
	var identity domainauth.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		s.logger.Debug("demo marker unparseable", "error", err)
		return domainauth.Identity{}, false
	}
	if !identity.Role.Valid() {
		// Mirrors may carry legacy role casing; normalize here and reject
		// anything outside the closed set.
		role, err := domainauth.ParseRole(string(identity.Role))
		if err != nil {
			return domainauth.Identity{}, false
		}
		identity.Role = role
	}
	return identity, true
}

// DemoIdentity exposes the fresh demo marker for the verifier's fallback path.
func (s *Store) DemoIdentity() (domainauth.Identity, bool) {
	return s.demoIdentity()
}
