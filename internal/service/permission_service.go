package service

import (
	"context"
	"errors"

	"github.com/aegisid/aegis-backend/internal/model"
	"github.com/aegisid/aegis-backend/internal/repository"
	"github.com/google/uuid"
)

// Permission catalog errors.
var (
	ErrPermissionNotFound  = errors.New("permission not found")
	ErrPermissionCodeTaken = errors.New("permission code already exists")
	ErrPermissionInUse     = errors.New("permission is still granted to roles")
)

// PermissionService handles the permission catalog. Writes are restricted
// to superusers at the routing layer.
type PermissionService struct {
	permRepo *repository.PermissionRepository
}

// NewPermissionService creates a new PermissionService.
func NewPermissionService(permRepo *repository.PermissionRepository) *PermissionService {
	return &PermissionService{permRepo: permRepo}
}

// List retrieves the catalog, optionally filtered.
func (s *PermissionService) List(ctx context.Context, search string) ([]model.Permission, error) {
	return s.permRepo.List(ctx, search)
}

// Create adds a catalog entry.
func (s *PermissionService) Create(ctx context.Context, req *model.CreatePermissionRequest) (*model.Permission, error) {
	p := &model.Permission{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
	}
	if err := s.permRepo.Create(ctx, p); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrPermissionCodeTaken
		}
		return nil, err
	}
	return p, nil
}

// Update renames a catalog entry.
func (s *PermissionService) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePermissionRequest) error {
	err := s.permRepo.Update(ctx, id, req.Name, req.Description)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPermissionNotFound
	}
	return err
}

// Delete removes a catalog entry. Fails while roles still grant it.
func (s *PermissionService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.permRepo.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrPermissionNotFound
	case repository.IsForeignKeyViolation(err):
		return ErrPermissionInUse
	default:
		return err
	}
}
