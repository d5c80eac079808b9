package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aegisid/aegis-backend/internal/authz"
	"github.com/aegisid/aegis-backend/internal/config"
	"github.com/aegisid/aegis-backend/internal/model"
	"github.com/aegisid/aegis-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is deactivated")
	ErrEmailTaken         = errors.New("email already registered")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
)

const (
	loginThrottleLimit  = 10
	loginThrottleWindow = 15 * time.Minute
)

// AuthService handles authentication: credentials, token pairs, refresh
// rotation and logout revocation.
type AuthService struct {
	cfg         *config.Config
	rdb         *redis.Client
	tokens      *TokenService
	userRepo    *repository.UserRepository
	roleRepo    *repository.RoleRepository
	refreshRepo *repository.RefreshTokenRepository
	log         zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	cfg *config.Config,
	rdb *redis.Client,
	tokens *TokenService,
	userRepo *repository.UserRepository,
	roleRepo *repository.RoleRepository,
	refreshRepo *repository.RefreshTokenRepository,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		cfg:         cfg,
		rdb:         rdb,
		tokens:      tokens,
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		refreshRepo: refreshRepo,
		log:         log.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
// The caller learns only that the pair did not match, never which part
// was wrong.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Register creates an active, non-superuser account with no roles.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	taken, err := s.userRepo.EmailTaken(ctx, req.Email, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		IsActive:     true,
		IsSuperuser:  false,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// Login validates credentials and returns a fresh token pair with the
// user's effective permissions.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	throttled, err := s.isThrottled(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("Login throttle check failed, allowing attempt")
	} else if throttled {
		return nil, ErrTooManyAttempts
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.recordFailure(ctx, email)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.CheckPassword(user.PasswordHash, password); err != nil {
		s.recordFailure(ctx, email)
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	roles, err := s.roleRepo.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}

	pair, err := s.issuePair(ctx, user, authz.Scopes(roles))
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		TokenPair:   *pair,
		User:        user,
		Permissions: authz.EffectivePermissions(roles),
	}, nil
}

// Refresh exchanges a valid refresh token for a new pair, revoking the
// old token. Presenting an already-rotated token is treated as theft and
// revokes every token the user holds.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*model.TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(raw)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrTokenInvalid
	}

	tx, err := s.refreshRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row, err := s.refreshRepo.GetForUpdate(ctx, tx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}

	if row.RevokedAt != nil {
		// Rotation reuse: someone is replaying an old token.
		s.log.Warn().Str("user_id", userID.String()).Str("jti", claims.ID).
			Msg("Revoked refresh token presented, revoking all sessions")
		if err := s.refreshRepo.RevokeAllForUser(ctx, tx, userID); err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		return nil, ErrTokenInvalid
	}

	if row.TokenHash != s.tokens.HashRefreshToken(raw) || row.UserID != userID {
		return nil, ErrTokenInvalid
	}
	if time.Now().After(row.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	roles, err := s.roleRepo.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}

	pair, newJTI, err := s.issuePairTx(ctx, tx, user, authz.Scopes(roles))
	if err != nil {
		return nil, err
	}
	if err := s.refreshRepo.Revoke(ctx, tx, row.ID, &newJTI); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes all of the user's refresh tokens and denylists the
// presented access token for its remaining lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	userID, err := claims.UserID()
	if err != nil {
		return ErrTokenInvalid
	}

	tx, err := s.refreshRepo.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.refreshRepo.RevokeAllForUser(ctx, tx, userID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return nil
	}
	key := config.CacheKey.RevokedAccessKey(claims.ID)
	return s.rdb.Set(ctx, key, "1", remaining).Err()
}

// IsAccessRevoked reports whether an access token JTI was denylisted at
// logout.
func (s *AuthService) IsAccessRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, config.CacheKey.RevokedAccessKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// issuePair issues a token pair outside an existing transaction.
func (s *AuthService) issuePair(ctx context.Context, user *model.User, scopes []string) (*model.TokenPair, error) {
	tx, err := s.refreshRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	pair, _, err := s.issuePairTx(ctx, tx, user, scopes)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return pair, nil
}

// issuePairTx issues and records a token pair within tx, returning the
// new refresh token's JTI for rotation bookkeeping.
func (s *AuthService) issuePairTx(ctx context.Context, tx pgx.Tx, user *model.User, scopes []string) (*model.TokenPair, string, error) {
	access, err := s.tokens.IssueAccessToken(user, scopes)
	if err != nil {
		return nil, "", err
	}

	refresh, jti, expiresAt, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	row := repository.RefreshTokenRow{
		ID:        jti,
		UserID:    user.ID,
		TokenHash: s.tokens.HashRefreshToken(refresh),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.refreshRepo.Create(ctx, tx, row); err != nil {
		return nil, "", fmt.Errorf("store refresh token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, jti, nil
}

func (s *AuthService) isThrottled(ctx context.Context, email string) (bool, error) {
	n, err := s.rdb.Get(ctx, config.CacheKey.LoginThrottleKey(email)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return n >= loginThrottleLimit, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	key := config.CacheKey.LoginThrottleKey(email)
	pipe := s.rdb.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, loginThrottleWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Failed to record login failure")
	}
}
