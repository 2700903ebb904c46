package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole_CanonicalValues(t *testing.T) {
	cases := map[string]Role{
		"Admin":            RoleAdmin,
		"ProjectManager":   RoleProjectManager,
		"TechnicalManager": RoleTechnicalManager,
		"Developer":        RoleDeveloper,
	}

	for in, want := range cases {
		got, err := ParseRole(in)
		require.NoError(t, err, "role %q", in)
		assert.Equal(t, want, got)
	}
}

func TestParseRole_LegacyAliases(t *testing.T) {
	// Older backend revisions emitted lower-case "admin"/"user".
	got, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, got)

	got, err = ParseRole("user")
	require.NoError(t, err)
	assert.Equal(t, RoleDeveloper, got)
}

func TestParseRole_CaseAndWhitespace(t *testing.T) {
	got, err := ParseRole("  technicalmanager ")
	require.NoError(t, err)
	assert.Equal(t, RoleTechnicalManager, got)

	got, err = ParseRole("PROJECTMANAGER")
	require.NoError(t, err)
	assert.Equal(t, RoleProjectManager, got)
}

func TestParseRole_Unrecognized(t *testing.T) {
	for _, in := range []string{"", "root", "superuser", "guest"} {
		_, err := ParseRole(in)
		assert.Error(t, err, "role %q should be rejected", in)
	}
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleDeveloper.Valid())
	assert.False(t, Role("admin").Valid())
	assert.False(t, Role("").Valid())
}

func TestIdentity_DisplayName(t *testing.T) {
	id := Identity{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	assert.Equal(t, "Ada Lovelace", id.DisplayName())

	id = Identity{Email: "ada@example.com"}
	assert.Equal(t, "ada@example.com", id.DisplayName())
}

func TestSessionState_Invariant(t *testing.T) {
	empty := EmptyState()
	assert.False(t, empty.Authenticated)
	assert.Nil(t, empty.Identity)
	assert.Equal(t, SourceNone, empty.Source)

	st := AuthenticatedState(Identity{ID: 1, Role: RoleAdmin}, SourceServer)
	assert.True(t, st.Authenticated)
	require.NotNil(t, st.Identity)
	assert.Equal(t, RoleAdmin, st.Identity.Role)
	assert.Equal(t, SourceServer, st.Source)
}
