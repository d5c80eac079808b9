package authz

import (
	"testing"

	"github.com/aegisid/aegis-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func roleWith(code string, perms ...string) model.RoleWithPermissions {
	return model.RoleWithPermissions{
		Role:        &model.Role{Name: code, Code: code},
		Permissions: perms,
	}
}

func TestEffectivePermissionsUnion(t *testing.T) {
	roles := []model.RoleWithPermissions{
		roleWith("editor", "user:read", "user:update"),
		roleWith("viewer", "user:read", "role:read"),
	}

	got := EffectivePermissions(roles)
	assert.Equal(t, []string{"role:read", "user:read", "user:update"}, got)
}

func TestEffectivePermissionsEmpty(t *testing.T) {
	assert.Empty(t, EffectivePermissions(nil))
	assert.Empty(t, EffectivePermissions([]model.RoleWithPermissions{roleWith("bare")}))
}

func TestAllowedFailClosed(t *testing.T) {
	granted := EffectivePermissions([]model.RoleWithPermissions{
		roleWith("reader", "user:read"),
	})

	assert.True(t, Allowed(granted, "user:read"))
	assert.False(t, Allowed(granted, "user:write"))
	assert.False(t, Allowed(granted, "something:unknown"))
	assert.False(t, Allowed(granted, ""))
	assert.False(t, Allowed(nil, "user:read"))
}

func TestAllowedAny(t *testing.T) {
	granted := []string{"role:read"}

	assert.True(t, AllowedAny(granted, "role:update", "role:read"))
	assert.False(t, AllowedAny(granted, "role:update", "role:delete"))
	assert.False(t, AllowedAny(granted))
}

func TestScopes(t *testing.T) {
	roles := []model.RoleWithPermissions{
		roleWith("admin", "user:read", "user:create"),
		roleWith("auditor", "user:read"),
	}

	got := Scopes(roles)
	assert.Equal(t, []string{"role:admin", "role:auditor", "user:create", "user:read"}, got)
}
