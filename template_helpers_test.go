package gate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gate "github.com/goliatone/go-auth-gate"
)

func TestTemplateHelpers(t *testing.T) {
	helpers := gate.TemplateHelpers(gate.DefaultRoutes())

	dashboard, ok := helpers["dashboard_path"].(func(any) string)
	require.True(t, ok)
	assert.Equal(t, "/admin/dashboard", dashboard(gate.RoleAdmin))
	assert.Equal(t, "/publisher/dashboard", dashboard("Publishers"))
	assert.Equal(t, "/auth/sign-in", dashboard(nil))

	hasRole, ok := helpers["has_role"].(func(any, string) bool)
	require.True(t, ok)
	assert.True(t, hasRole(gate.RoleAdmin, "administrator"))
	assert.False(t, hasRole("publisher", "admin"))

	known, ok := helpers["is_known_role"].(func(any) bool)
	require.True(t, ok)
	assert.False(t, known(42))

	assert.Equal(t, "/auth/sign-in", helpers["sign_in_path"])
}

func TestClaims_UserUUID(t *testing.T) {
	id, ok := gate.Claims{"sub": "8f14e45f-ceea-4f6a-9c2b-1a7d2f3b9e10"}.UserUUID()
	require.True(t, ok)
	assert.Equal(t, "8f14e45f-ceea-4f6a-9c2b-1a7d2f3b9e10", id.String())

	_, ok = gate.Claims{"sub": "user-1"}.UserUUID()
	assert.False(t, ok)
}
