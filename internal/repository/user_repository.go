package repository

import (
	"context"
	"strconv"

	"github.com/aegisid/aegis-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles user data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = "id, email, full_name, password_hash, is_active, is_superuser, created_at, updated_at"

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash,
		&u.IsActive, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return u, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

// GetByEmail retrieves a user by their unique email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1", email))
}

// EmailTaken reports whether another user already holds the email.
func (r *UserRepository) EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id != $2)",
		email, excludeID,
	).Scan(&taken)
	return taken, err
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO users (email, full_name, password_hash, is_active, is_superuser)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		u.Email, u.FullName, u.PasswordHash, u.IsActive, u.IsSuperuser,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

// Update persists email, full name, password hash and active flag.
func (r *UserRepository) Update(ctx context.Context, u *model.User) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET email = $1, full_name = $2, password_hash = $3, is_active = $4, updated_at = NOW()
		 WHERE id = $5`,
		u.Email, u.FullName, u.PasswordHash, u.IsActive, u.ID,
	)
	return err
}

// SetActive flips the soft-delete flag. Users are never removed from the
// table.
func (r *UserRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2", active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List retrieves a filtered, paginated slice of users plus the total count.
func (r *UserRepository) List(ctx context.Context, f model.UserFilter) ([]model.User, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where += " AND (email ILIKE $1 OR full_name ILIKE $1)"
	}
	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		where += " AND is_active = $" + itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.PerPage
	args = append(args, f.PerPage, offset)
	query := "SELECT " + userColumns + " FROM users" + where +
		" ORDER BY created_at DESC LIMIT $" + itoa(len(args)-1) + " OFFSET $" + itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash,
			&u.IsActive, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// ReplaceRoles swaps the user's role set for the roles matching the given
// codes. Unknown codes are ignored.
func (r *UserRepository) ReplaceRoles(ctx context.Context, userID uuid.UUID, roleCodes []string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM user_roles WHERE user_id = $1", userID); err != nil {
		return err
	}

	if len(roleCodes) > 0 {
		rows, err := tx.Query(ctx, "SELECT id FROM roles WHERE code = ANY($1)", roleCodes)
		if err != nil {
			return err
		}

		var roleIDs []uuid.UUID
		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			roleIDs = append(roleIDs, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		if len(roleIDs) > 0 {
			_, err = tx.CopyFrom(
				ctx,
				pgx.Identifier{"user_roles"},
				[]string{"user_id", "role_id"},
				pgx.CopyFromSlice(len(roleIDs), func(i int) ([]interface{}, error) {
					return []interface{}{userID, roleIDs[i]}, nil
				}),
			)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
