package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RefreshTokenRow mirrors a tracked refresh token. Only the HMAC digest of
// the raw token is stored.
type RefreshTokenRow struct {
	ID         string // the token's JTI
	UserID     uuid.UUID
	TokenHash  string
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	ReplacedBy *string
	CreatedAt  time.Time
}

// RefreshTokenRepository tracks issued refresh tokens for rotation and
// revocation.
type RefreshTokenRepository struct {
	pool *pgxpool.Pool
}

// NewRefreshTokenRepository creates a new RefreshTokenRepository.
func NewRefreshTokenRepository(pool *pgxpool.Pool) *RefreshTokenRepository {
	return &RefreshTokenRepository{pool: pool}
}

// BeginTx starts a transaction for rotation, which must read and revoke
// the old row atomically.
func (r *RefreshTokenRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.BeginTx(ctx, pgx.TxOptions{})
}

// Create inserts a tracked token row.
func (r *RefreshTokenRepository) Create(ctx context.Context, tx pgx.Tx, row RefreshTokenRow) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked_at, replaced_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		row.ID, row.UserID, row.TokenHash, row.ExpiresAt, row.RevokedAt, row.ReplacedBy, row.CreatedAt,
	)
	return err
}

// GetForUpdate fetches a row by JTI with a row lock, preventing two
// concurrent refreshes from both succeeding.
func (r *RefreshTokenRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (RefreshTokenRow, error) {
	var row RefreshTokenRow
	err := tx.QueryRow(ctx,
		`SELECT id, user_id, token_hash, expires_at, revoked_at, replaced_by, created_at
		 FROM refresh_tokens
		 WHERE id = $1
		 FOR UPDATE`, id,
	).Scan(&row.ID, &row.UserID, &row.TokenHash, &row.ExpiresAt,
		&row.RevokedAt, &row.ReplacedBy, &row.CreatedAt)
	if err != nil {
		return RefreshTokenRow{}, wrapNotFound(err)
	}
	return row, nil
}

// Revoke marks a token revoked, optionally recording its successor.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, tx pgx.Tx, id string, replacedBy *string) error {
	_, err := tx.Exec(ctx,
		"UPDATE refresh_tokens SET revoked_at = NOW(), replaced_by = $2 WHERE id = $1",
		id, replacedBy,
	)
	return err
}

// RevokeAllForUser revokes every live token a user holds. Used on logout
// and on refresh-token reuse detection.
func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	_, err := tx.Exec(ctx,
		"UPDATE refresh_tokens SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL",
		userID,
	)
	return err
}

// DeleteStale removes rows that expired, or were revoked, before the
// cutoff. Called by the prune worker.
func (r *RefreshTokenRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM refresh_tokens WHERE expires_at < $1 OR (revoked_at IS NOT NULL AND revoked_at < $1)",
		cutoff,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
