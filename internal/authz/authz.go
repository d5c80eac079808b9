// Package authz resolves role grants into effective permissions.
//
// The functions here are pure: callers pass the role→permission mapping
// explicitly rather than having it fetched behind the scenes, which keeps
// the grant logic trivially testable and independent of storage.
package authz

import (
	"sort"

	"github.com/aegisid/aegis-backend/internal/model"
)

// EffectivePermissions returns the union of permission codes across the
// given roles, sorted and de-duplicated.
func EffectivePermissions(roles []model.RoleWithPermissions) []string {
	seen := make(map[string]struct{})
	for _, role := range roles {
		for _, code := range role.Permissions {
			seen[code] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for code := range seen {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Allowed reports whether the granted set covers the required permission.
// Unknown permissions are denied; there is no wildcard matching.
func Allowed(granted []string, required string) bool {
	if required == "" {
		return false
	}
	for _, code := range granted {
		if code == required {
			return true
		}
	}
	return false
}

// AllowedAny reports whether the granted set covers at least one of the
// required permissions.
func AllowedAny(granted []string, required ...string) bool {
	for _, code := range required {
		if Allowed(granted, code) {
			return true
		}
	}
	return false
}

// Scopes builds the scope list embedded in access tokens: one
// "role:<code>" entry per role followed by the effective permission set.
func Scopes(roles []model.RoleWithPermissions) []string {
	scopes := make([]string, 0, len(roles))
	for _, role := range roles {
		scopes = append(scopes, "role:"+role.Code)
	}
	return append(scopes, EffectivePermissions(roles)...)
}
