package service

import (
	"context"
	"errors"

	"github.com/aegisid/aegis-backend/internal/model"
	"github.com/aegisid/aegis-backend/internal/repository"
	"github.com/google/uuid"
)

// Role management errors.
var (
	ErrRoleNotFound  = errors.New("role not found")
	ErrRoleCodeTaken = errors.New("role code already exists")
	ErrRoleInUse     = errors.New("role is still assigned to users")
)

// RoleService handles business logic for roles and their grants.
type RoleService struct {
	roleRepo *repository.RoleRepository
}

// NewRoleService creates a new RoleService.
func NewRoleService(roleRepo *repository.RoleRepository) *RoleService {
	return &RoleService{roleRepo: roleRepo}
}

// List retrieves all roles with their permissions.
func (s *RoleService) List(ctx context.Context) ([]model.RoleWithPermissions, error) {
	return s.roleRepo.List(ctx)
}

// GetByID retrieves a specific role and its permissions.
func (s *RoleService) GetByID(ctx context.Context, id uuid.UUID) (*model.RoleWithPermissions, error) {
	role, err := s.roleRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRoleNotFound
	}
	return role, err
}

// Create creates a role and assigns its initial permissions.
func (s *RoleService) Create(ctx context.Context, req *model.CreateRoleRequest) (*model.RoleWithPermissions, error) {
	id, err := s.roleRepo.Create(ctx, req.Name, req.Code, req.Description)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrRoleCodeTaken
		}
		return nil, err
	}

	if len(req.Permissions) > 0 {
		if err := s.roleRepo.AssignPermissions(ctx, id, req.Permissions); err != nil {
			// Roll the role back rather than leaving it half-granted.
			_ = s.roleRepo.Delete(ctx, id)
			return nil, err
		}
	}

	return s.GetByID(ctx, id)
}

// Update updates a role's name and description and replaces its
// permission grants wholesale.
func (s *RoleService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateRoleRequest) (*model.RoleWithPermissions, error) {
	if err := s.roleRepo.Update(ctx, id, req.Name, req.Description); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}

	if err := s.roleRepo.ClearPermissions(ctx, id); err != nil {
		return nil, err
	}
	if len(req.Permissions) > 0 {
		if err := s.roleRepo.AssignPermissions(ctx, id, req.Permissions); err != nil {
			return nil, err
		}
	}

	return s.GetByID(ctx, id)
}

// Delete removes a role. Fails while users still hold it.
func (s *RoleService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.roleRepo.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrRoleNotFound
	case repository.IsForeignKeyViolation(err):
		return ErrRoleInUse
	default:
		return err
	}
}
