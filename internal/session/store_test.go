package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workdesk/workdesk-go/internal/adapters/mirror"
	domainauth "github.com/workdesk/workdesk-go/internal/domain/auth"
	"github.com/workdesk/workdesk-go/internal/ports"
)

func testIdentity() domainauth.Identity {
	return domainauth.Identity{
		ID:        3,
		FirstName: "Deniz",
		LastName:  "Kaya",
		Email:     "deniz@example.com",
		Role:      domainauth.RoleProjectManager,
		IsActive:  true,
	}
}

func TestStore_SetAndClear(t *testing.T) {
	store := NewStore(StoreOptions{Mirror: mirror.NewMemory()})

	assert.False(t, store.IsAuthenticated())
	assert.Nil(t, store.CurrentIdentity())

	store.SetSession(testIdentity(), domainauth.SourceServer)
	assert.True(t, store.IsAuthenticated())
	require.NotNil(t, store.CurrentIdentity())
	role, ok := store.Role()
	require.True(t, ok)
	assert.Equal(t, domainauth.RoleProjectManager, role)

	store.ClearSession()
	assert.False(t, store.IsAuthenticated())
	assert.Nil(t, store.CurrentIdentity())
	_, ok = store.Role()
	assert.False(t, ok)
}

func TestStore_SubscriberObservesNoIntermediateState(t *testing.T) {
	store := NewStore(StoreOptions{Mirror: mirror.NewMemory()})

	var observed []domainauth.SessionState
	unsubscribe := store.Subscribe(func(st domainauth.SessionState) {
		// The invariant must hold at notification time, synchronously.
		assert.Equal(t, st.Identity != nil, st.Authenticated)
		observed = append(observed, st)
	})
	defer unsubscribe()

	store.SetSession(testIdentity(), domainauth.SourceServer)
	store.ClearSession()
	store.SetSession(testIdentity(), domainauth.SourceDemo)

	require.Len(t, observed, 3)
	assert.True(t, observed[0].Authenticated)
	assert.False(t, observed[1].Authenticated)
	assert.True(t, observed[2].Authenticated)
	assert.Equal(t, domainauth.SourceDemo, observed[2].Source)
}

func TestStore_Unsubscribe(t *testing.T) {
	store := NewStore(StoreOptions{})

	calls := 0
	unsubscribe := store.Subscribe(func(domainauth.SessionState) { calls++ })

	store.SetSession(testIdentity(), domainauth.SourceServer)
	unsubscribe()
	store.ClearSession()

	assert.Equal(t, 1, calls)
}

func TestStore_MirrorHintsWrittenAndCleared(t *testing.T) {
	m := mirror.NewMemory()
	store := NewStore(StoreOptions{Mirror: m})

	store.SetSession(testIdentity(), domainauth.SourceServer)

	v, ok := m.Get(ports.MirrorKeyUserID)
	require.True(t, ok)
	assert.Equal(t, "3", v)
	v, ok = m.Get(ports.MirrorKeyUserRole)
	require.True(t, ok)
	assert.Equal(t, "ProjectManager", v)

	store.ClearSession()
	_, ok = m.Get(ports.MirrorKeyUserID)
	assert.False(t, ok)
	_, ok = m.Get(ports.MirrorKeyUserRole)
	assert.False(t, ok)
}

func writeDemoMarker(t *testing.T, m ports.MirrorStore, identity domainauth.Identity, at time.Time) {
	t.Helper()
	raw, err := json.Marshal(identity)
	require.NoError(t, err)
	require.NoError(t, m.Set(ports.ScopeSession, ports.MirrorKeyDemoUser, string(raw)))
	require.NoError(t, m.Set(ports.ScopeSession, ports.MirrorKeyDemoLoginTime, at.Format(time.RFC3339)))
}

func TestStore_FreshDemoMarkerAuthenticates(t *testing.T) {
	m := mirror.NewMemory()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(StoreOptions{Mirror: m, Now: func() time.Time { return now }})

	writeDemoMarker(t, m, testIdentity(), now.Add(-23*time.Hour))

	assert.True(t, store.IsAuthenticated())
	identity := store.CurrentIdentity()
	require.NotNil(t, identity)
	assert.Equal(t, "deniz@example.com", identity.Email)
}

func TestStore_StaleDemoMarkerNeverAuthenticates(t *testing.T) {
	m := mirror.NewMemory()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(StoreOptions{Mirror: m, Now: func() time.Time { return now }})

	writeDemoMarker(t, m, testIdentity(), now.Add(-25*time.Hour))

	assert.False(t, store.IsAuthenticated())
	assert.Nil(t, store.CurrentIdentity())
}

func TestStore_UnparseableDemoMarkerIgnored(t *testing.T) {
	m := mirror.NewMemory()
	now := time.Now()
	store := NewStore(StoreOptions{Mirror: m, Now: func() time.Time { return now }})

	require.NoError(t, m.Set(ports.ScopeSession, ports.MirrorKeyDemoUser, "{broken"))
	require.NoError(t, m.Set(ports.ScopeSession, ports.MirrorKeyDemoLoginTime, now.Format(time.RFC3339)))

	// Marker presence still counts toward IsAuthenticated (it is an advisory
	// hint), but no identity can be produced from it.
	_, ok := store.DemoIdentity()
	assert.False(t, ok)
	assert.Nil(t, store.CurrentIdentity())
}

func TestStore_DemoMarkerLegacyRoleNormalized(t *testing.T) {
	m := mirror.NewMemory()
	now := time.Now()
	store := NewStore(StoreOptions{Mirror: m, Now: func() time.Time { return now }})

	legacy := testIdentity()
	legacy.Role = domainauth.Role("admin")
	writeDemoMarker(t, m, legacy, now)

	identity, ok := store.DemoIdentity()
	require.True(t, ok)
	assert.Equal(t, domainauth.RoleAdmin, identity.Role)
}
