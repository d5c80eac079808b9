package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents an application account. Users are never physically
// deleted; IsActive is flipped off instead.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserWithRoles extends User with its assigned roles.
type UserWithRoles struct {
	*User
	Roles []RoleWithPermissions `json:"roles"`
}

// RegisterRequest is the payload for self-service registration.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	FullName string `json:"full_name" binding:"required,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// UpdateProfileRequest is the payload for the self-service profile update.
type UpdateProfileRequest struct {
	Email    string `json:"email" binding:"omitempty,email,max=255"`
	FullName string `json:"full_name" binding:"omitempty,max=255"`
	Password string `json:"password" binding:"omitempty,min=8,max=128"`
}

// CreateUserRequest is the admin payload for creating a user.
type CreateUserRequest struct {
	Email       string   `json:"email" binding:"required,email,max=255"`
	FullName    string   `json:"full_name" binding:"required,max=255"`
	Password    string   `json:"password" binding:"required,min=8,max=128"`
	IsActive    *bool    `json:"is_active"`
	IsSuperuser bool     `json:"is_superuser"`
	RoleCodes   []string `json:"role_codes"`
}

// UpdateUserRequest is the admin payload for updating a user.
// Zero-valued fields are left unchanged.
type UpdateUserRequest struct {
	Email    string `json:"email" binding:"omitempty,email,max=255"`
	FullName string `json:"full_name" binding:"omitempty,max=255"`
	Password string `json:"password" binding:"omitempty,min=8,max=128"`
	IsActive *bool  `json:"is_active"`
}

// AssignRolesRequest replaces a user's role set.
type AssignRolesRequest struct {
	RoleCodes []string `json:"role_codes" binding:"required"`
}

// UserFilter narrows user listings.
type UserFilter struct {
	Search   string
	IsActive *bool
	Page     int
	PerPage  int
}
