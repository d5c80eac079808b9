package repository

import (
	"context"

	"github.com/aegisid/aegis-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RoleRepository handles role and role-permission data access.
type RoleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

// GetPermissionsByRoleID retrieves all permission codes granted to a role.
func (r *RoleRepository) GetPermissionsByRoleID(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.code
		 FROM permissions p
		 JOIN role_permissions rp ON p.id = rp.permission_id
		 WHERE rp.role_id = $1
		 ORDER BY p.code`, roleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		permissions = append(permissions, code)
	}
	return permissions, rows.Err()
}

// GetByID retrieves a role and its permissions by ID.
func (r *RoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.RoleWithPermissions, error) {
	role := &model.Role{ID: id}
	err := r.pool.QueryRow(ctx,
		"SELECT name, code, description, created_at FROM roles WHERE id = $1", id,
	).Scan(&role.Name, &role.Code, &role.Description, &role.CreatedAt)
	if err != nil {
		return nil, wrapNotFound(err)
	}

	permissions, err := r.GetPermissionsByRoleID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.RoleWithPermissions{Role: role, Permissions: permissions}, nil
}

// GetByCode retrieves a role and its permissions by its unique code.
func (r *RoleRepository) GetByCode(ctx context.Context, code string) (*model.RoleWithPermissions, error) {
	role := &model.Role{}
	err := r.pool.QueryRow(ctx,
		"SELECT id, name, code, description, created_at FROM roles WHERE code = $1", code,
	).Scan(&role.ID, &role.Name, &role.Code, &role.Description, &role.CreatedAt)
	if err != nil {
		return nil, wrapNotFound(err)
	}

	permissions, err := r.GetPermissionsByRoleID(ctx, role.ID)
	if err != nil {
		return nil, err
	}

	return &model.RoleWithPermissions{Role: role, Permissions: permissions}, nil
}

// List retrieves all roles with their associated permissions.
func (r *RoleRepository) List(ctx context.Context) ([]model.RoleWithPermissions, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT id, name, code, description, created_at FROM roles ORDER BY code")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []model.RoleWithPermissions
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Code, &role.Description, &role.CreatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, model.RoleWithPermissions{Role: &role})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Separate permission queries per role; the role table stays small
	// enough that a join with aggregation is not worth the complexity.
	for i := range roles {
		permissions, err := r.GetPermissionsByRoleID(ctx, roles[i].ID)
		if err != nil {
			return nil, err
		}
		roles[i].Permissions = permissions
	}
	return roles, nil
}

// ListForUser retrieves the roles assigned to a user, with permissions.
func (r *RoleRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.RoleWithPermissions, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.name, r.code, r.description, r.created_at
		 FROM roles r
		 JOIN user_roles ur ON r.id = ur.role_id
		 WHERE ur.user_id = $1
		 ORDER BY r.code`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []model.RoleWithPermissions
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Code, &role.Description, &role.CreatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, model.RoleWithPermissions{Role: &role})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range roles {
		permissions, err := r.GetPermissionsByRoleID(ctx, roles[i].ID)
		if err != nil {
			return nil, err
		}
		roles[i].Permissions = permissions
	}
	return roles, nil
}

// Create inserts a new role and returns its ID.
func (r *RoleRepository) Create(ctx context.Context, name, code, description string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		"INSERT INTO roles (name, code, description) VALUES ($1, $2, $3) RETURNING id",
		name, code, description,
	).Scan(&id)
	return id, err
}

// Update updates a role's name and description. The code is immutable.
func (r *RoleRepository) Update(ctx context.Context, id uuid.UUID, name, description string) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE roles SET name = $1, description = $2 WHERE id = $3", name, description, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a role. Fails with an FK violation while users still
// hold the role.
func (r *RoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM roles WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearPermissions removes all permissions associated with a role.
func (r *RoleRepository) ClearPermissions(ctx context.Context, roleID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM role_permissions WHERE role_id = $1", roleID)
	return err
}

// AssignPermissions grants a list of permission codes to a role. Codes
// missing from the catalog are silently skipped.
func (r *RoleRepository) AssignPermissions(ctx context.Context, roleID uuid.UUID, codes []string) error {
	if len(codes) == 0 {
		return nil
	}

	rows, err := r.pool.Query(ctx, "SELECT id FROM permissions WHERE code = ANY($1)", codes)
	if err != nil {
		return err
	}
	defer rows.Close()

	var permissionIDs []uuid.UUID
	for rows.Next() {
		var pid uuid.UUID
		if err := rows.Scan(&pid); err != nil {
			return err
		}
		permissionIDs = append(permissionIDs, pid)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(permissionIDs) == 0 {
		return nil
	}

	_, err = r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"role_permissions"},
		[]string{"role_id", "permission_id"},
		pgx.CopyFromSlice(len(permissionIDs), func(i int) ([]interface{}, error) {
			return []interface{}{roleID, permissionIDs[i]}, nil
		}),
	)
	return err
}
