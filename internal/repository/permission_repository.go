package repository

import (
	"context"

	"github.com/aegisid/aegis-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PermissionRepository handles permission catalog data access.
type PermissionRepository struct {
	pool *pgxpool.Pool
}

// NewPermissionRepository creates a new PermissionRepository.
func NewPermissionRepository(pool *pgxpool.Pool) *PermissionRepository {
	return &PermissionRepository{pool: pool}
}

// List retrieves the full permission catalog, optionally filtered by a
// search term on name or code.
func (r *PermissionRepository) List(ctx context.Context, search string) ([]model.Permission, error) {
	query := "SELECT id, name, code, description, created_at FROM permissions"
	args := []interface{}{}
	if search != "" {
		query += " WHERE name ILIKE $1 OR code ILIKE $1"
		args = append(args, "%"+search+"%")
	}
	query += " ORDER BY code"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	permissions := []model.Permission{}
	for rows.Next() {
		var p model.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Code, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		permissions = append(permissions, p)
	}
	return permissions, rows.Err()
}

// GetByCode retrieves a permission by its unique code.
func (r *PermissionRepository) GetByCode(ctx context.Context, code string) (*model.Permission, error) {
	p := &model.Permission{}
	err := r.pool.QueryRow(ctx,
		"SELECT id, name, code, description, created_at FROM permissions WHERE code = $1", code,
	).Scan(&p.ID, &p.Name, &p.Code, &p.Description, &p.CreatedAt)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return p, nil
}

// Create inserts a new catalog entry.
func (r *PermissionRepository) Create(ctx context.Context, p *model.Permission) error {
	return r.pool.QueryRow(ctx,
		"INSERT INTO permissions (name, code, description) VALUES ($1, $2, $3) RETURNING id, created_at",
		p.Name, p.Code, p.Description,
	).Scan(&p.ID, &p.CreatedAt)
}

// Update renames a catalog entry. The code is immutable.
func (r *PermissionRepository) Update(ctx context.Context, id uuid.UUID, name, description string) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE permissions SET name = $1, description = $2 WHERE id = $3", name, description, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a catalog entry. Fails with an FK violation while roles
// still grant it.
func (r *PermissionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM permissions WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
