package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aegisid/aegis-backend/internal/model"
	"github.com/aegisid/aegis-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrUserNotFound is returned when a user lookup misses.
var ErrUserNotFound = errors.New("user not found")

// UserService handles user management on behalf of administrators.
type UserService struct {
	userRepo *repository.UserRepository
	roleRepo *repository.RoleRepository
	auth     *AuthService
	log      zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	userRepo *repository.UserRepository,
	roleRepo *repository.RoleRepository,
	auth *AuthService,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		auth:     auth,
		log:      log.With().Str("component", "user_service").Logger(),
	}
}

// List retrieves a filtered page of users with the total count.
func (s *UserService) List(ctx context.Context, f model.UserFilter) ([]model.User, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}
	return s.userRepo.List(ctx, f)
}

// GetByID retrieves a user together with their roles.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.UserWithRoles, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	roles, err := s.roleRepo.ListForUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	return &model.UserWithRoles{User: user, Roles: roles}, nil
}

// Create inserts a user on behalf of an administrator, optionally with an
// initial role set.
func (s *UserService) Create(ctx context.Context, req *model.CreateUserRequest) (*model.UserWithRoles, error) {
	taken, err := s.userRepo.EmailTaken(ctx, req.Email, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	user := &model.User{
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		IsActive:     active,
		IsSuperuser:  req.IsSuperuser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if len(req.RoleCodes) > 0 {
		if err := s.userRepo.ReplaceRoles(ctx, user.ID, req.RoleCodes); err != nil {
			return nil, fmt.Errorf("assign roles: %w", err)
		}
	}

	return s.GetByID(ctx, user.ID)
}

// Update applies a partial admin update to a user.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateUserRequest) (*model.UserWithRoles, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.Email != "" && req.Email != user.Email {
		taken, err := s.userRepo.EmailTaken(ctx, req.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailTaken
		}
		user.Email = req.Email
	}
	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Password != "" {
		hash, err := s.auth.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// UpdateProfile applies a self-service update for the authenticated user.
// Active and superuser flags cannot be changed here.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req *model.UpdateProfileRequest) (*model.UserWithRoles, error) {
	return s.Update(ctx, id, &model.UpdateUserRequest{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
}

// Deactivate soft-deletes a user. The record stays; logins and token
// refreshes fail from here on.
func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID) error {
	err := s.userRepo.SetActive(ctx, id, false)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err == nil {
		s.log.Info().Str("user_id", id.String()).Msg("User deactivated")
	}
	return err
}

// AssignRoles replaces a user's role set.
func (s *UserService) AssignRoles(ctx context.Context, id uuid.UUID, roleCodes []string) (*model.UserWithRoles, error) {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := s.userRepo.ReplaceRoles(ctx, id, roleCodes); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}
