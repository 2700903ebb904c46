package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/workdesk/workdesk-go/internal/domain/auth"
	"github.com/workdesk/workdesk-go/internal/ports"
)

func TestMockTransport_Defaults(t *testing.T) {
	m := NewMockTransport()
	ctx := context.Background()

	identity, ok, err := m.WhoAmI(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domainauth.RoleDeveloper, identity.Role)
	assert.Equal(t, 1, m.WhoAmICalls())

	_, err = m.Login(ctx, ports.Credentials{Email: "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, 1, m.LoginCalls())

	require.NoError(t, m.Logout(ctx))
	assert.Equal(t, 1, m.LogoutCalls())
}

func TestRecordingNavigator(t *testing.T) {
	n := NewRecordingNavigator()
	n.NavigateToLogin("/projects/add")
	n.NavigateTo("/user-tasks")

	assert.Equal(t, []string{"/projects/add"}, n.LoginSignals())
	assert.Equal(t, []string{"/user-tasks"}, n.Navigations())
}

func TestStaticDemoCatalog(t *testing.T) {
	c := &StaticDemoCatalog{
		Entries: map[string]struct {
			Password string
			Identity domainauth.Identity
		}{
			"demo@example.com": {Password: "pw", Identity: domainauth.Identity{ID: 1, Role: domainauth.RoleAdmin}},
		},
	}

	_, ok := c.Match("demo@example.com", "nope")
	assert.False(t, ok)

	identity, ok := c.Match("demo@example.com", "pw")
	require.True(t, ok)
	assert.Equal(t, domainauth.RoleAdmin, identity.Role)
}
