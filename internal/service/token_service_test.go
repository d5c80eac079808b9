package service

import (
	"testing"
	"time"

	"github.com/aegisid/aegis-backend/internal/config"
	"github.com/aegisid/aegis-backend/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:       "test-secret-key",
		Algorithm:       "HS256",
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
}

func testUser() *model.User {
	return &model.User{
		ID:          uuid.New(),
		Email:       "alice@example.com",
		IsActive:    true,
		IsSuperuser: false,
	}
}

func TestNewTokenService_AlgorithmPinning(t *testing.T) {
	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		cfg := testConfig()
		cfg.Algorithm = alg
		_, err := NewTokenService(cfg)
		assert.NoError(t, err, alg)
	}

	for _, alg := range []string{"RS256", "ES256", "none", ""} {
		cfg := testConfig()
		cfg.Algorithm = alg
		_, err := NewTokenService(cfg)
		assert.Error(t, err, alg)
	}
}

func TestIssueAccessToken_RoundTrip(t *testing.T) {
	cfg := testConfig()
	svc, err := NewTokenService(cfg)
	require.NoError(t, err)

	user := testUser()
	scopes := []string{"role:auditor", "user:read"}

	raw, err := svc.IssueAccessToken(user, scopes)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := svc.VerifyAccess(raw)
	require.NoError(t, err)

	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, scopes, claims.Scopes)
	assert.NotEmpty(t, claims.ID)

	parsedID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, parsedID)
}

func TestIssueRefreshToken_RoundTrip(t *testing.T) {
	cfg := testConfig()
	svc, err := NewTokenService(cfg)
	require.NoError(t, err)

	userID := uuid.New()
	raw, jti, expiresAt, err := svc.IssueRefreshToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	require.NotEmpty(t, jti)
	assert.WithinDuration(t, time.Now().Add(cfg.RefreshTokenTTL), expiresAt, time.Minute)

	claims, err := svc.VerifyRefresh(raw)
	require.NoError(t, err)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	assert.Empty(t, claims.Scopes)
}

func TestVerify_Expired(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTokenTTL = -1 * time.Minute
	svc, err := NewTokenService(cfg)
	require.NoError(t, err)

	raw, err := svc.IssueAccessToken(testUser(), nil)
	require.NoError(t, err)

	_, err = svc.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer, err := NewTokenService(testConfig())
	require.NoError(t, err)

	otherCfg := testConfig()
	otherCfg.SecretKey = "a-different-secret"
	verifier, err := NewTokenService(otherCfg)
	require.NoError(t, err)

	raw, err := issuer.IssueAccessToken(testUser(), nil)
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenSignature)
}

func TestVerify_Garbage(t *testing.T) {
	svc, err := NewTokenService(testConfig())
	require.NoError(t, err)

	_, err = svc.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_TypeMismatch(t *testing.T) {
	svc, err := NewTokenService(testConfig())
	require.NoError(t, err)

	access, err := svc.IssueAccessToken(testUser(), nil)
	require.NoError(t, err)

	refresh, _, _, err := svc.IssueRefreshToken(uuid.New())
	require.NoError(t, err)

	_, err = svc.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = svc.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestHashRefreshToken_Deterministic(t *testing.T) {
	svc, err := NewTokenService(testConfig())
	require.NoError(t, err)

	raw, _, _, err := svc.IssueRefreshToken(uuid.New())
	require.NoError(t, err)

	h1 := svc.HashRefreshToken(raw)
	h2 := svc.HashRefreshToken(raw)
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, raw, h1)
	assert.Len(t, h1, 64) // SHA-256 hex

	other, err := NewTokenService(testConfig())
	require.NoError(t, err)
	other.cfg.SecretKey = "a-different-secret"
	assert.NotEqual(t, h1, other.HashRefreshToken(raw))
}
