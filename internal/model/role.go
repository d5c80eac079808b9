package model

import (
	"time"

	"github.com/google/uuid"
)

// Role represents an RBAC role. Permissions are granted to users only
// indirectly, through role membership.
type Role struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RoleWithPermissions extends Role to include its associated permission codes.
type RoleWithPermissions struct {
	*Role
	Permissions []string `json:"permissions"`
}

// CreateRoleRequest is the payload for creating a role.
type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required,max=100"`
	Code        string   `json:"code" binding:"required,max=50"`
	Description string   `json:"description" binding:"max=255"`
	Permissions []string `json:"permissions"`
}

// UpdateRoleRequest is the payload for updating a role. The permission
// list replaces the role's previous grants wholesale.
type UpdateRoleRequest struct {
	Name        string   `json:"name" binding:"required,max=100"`
	Description string   `json:"description" binding:"max=255"`
	Permissions []string `json:"permissions"`
}
