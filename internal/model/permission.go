package model

import (
	"time"

	"github.com/google/uuid"
)

// PermissionCode is a string code for a specific grantable action.
type PermissionCode string

const (
	// PermissionUserRead allows viewing user lists and details.
	PermissionUserRead PermissionCode = "user:read"

	// PermissionUserCreate allows creating users.
	PermissionUserCreate PermissionCode = "user:create"

	// PermissionUserUpdate allows updating users and assigning roles.
	PermissionUserUpdate PermissionCode = "user:update"

	// PermissionUserDelete allows deactivating users.
	PermissionUserDelete PermissionCode = "user:delete"

	// PermissionRoleRead allows viewing roles and the permission catalog.
	PermissionRoleRead PermissionCode = "role:read"

	// PermissionRoleCreate allows creating roles.
	PermissionRoleCreate PermissionCode = "role:create"

	// PermissionRoleUpdate allows updating roles and their grants.
	PermissionRoleUpdate PermissionCode = "role:update"

	// PermissionRoleDelete allows deleting roles.
	PermissionRoleDelete PermissionCode = "role:delete"
)

// AllPermissions is the built-in permission catalog, seeded at migration time.
var AllPermissions = []PermissionCode{
	PermissionUserRead,
	PermissionUserCreate,
	PermissionUserUpdate,
	PermissionUserDelete,
	PermissionRoleRead,
	PermissionRoleCreate,
	PermissionRoleUpdate,
	PermissionRoleDelete,
}

// Permission is a catalog row. Custom permissions may be added by
// superusers beyond the built-in set.
type Permission struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreatePermissionRequest is the payload for adding a catalog entry.
type CreatePermissionRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Code        string `json:"code" binding:"required,max=50"`
	Description string `json:"description" binding:"max=255"`
}

// UpdatePermissionRequest is the payload for renaming a catalog entry.
type UpdatePermissionRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=255"`
}
