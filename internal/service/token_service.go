package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/aegisid/aegis-backend/internal/config"
	"github.com/aegisid/aegis-backend/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token verification errors. Expiry and bad signatures are reported
// distinctly so callers can decide between prompting a refresh and
// forcing a re-login.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrWrongTokenType = errors.New("wrong token type")
)

// TokenType distinguishes access vs refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims extends JWT standard claims with app-specific fields.
// Scopes carry "role:<code>" entries plus the user's effective
// permission codes; they are only set on access tokens.
type Claims struct {
	jwt.RegisteredClaims
	TokenType   TokenType `json:"token_type"`
	Email       string    `json:"email,omitempty"`
	IsSuperuser bool      `json:"is_superuser,omitempty"`
	Scopes      []string  `json:"scopes,omitempty"`
}

// UserID parses the subject claim back into a user ID.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// TokenService issues and verifies JWTs. Configuration (secret, declared
// algorithm, per-type expiries) is injected explicitly; verification is
// pure and stateless.
type TokenService struct {
	cfg    *config.Config
	method jwt.SigningMethod
}

// NewTokenService creates a TokenService pinned to the configured
// signing algorithm. Fails on algorithms outside the HMAC family.
func NewTokenService(cfg *config.Config) (*TokenService, error) {
	var method jwt.SigningMethod
	switch cfg.Algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm: %s", cfg.Algorithm)
	}
	return &TokenService{cfg: cfg, method: method}, nil
}

// IssueAccessToken creates a short-lived access JWT for a user with the
// given scopes embedded.
func (s *TokenService) IssueAccessToken(user *model.User, scopes []string) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
		},
		TokenType:   TokenTypeAccess,
		Email:       user.Email,
		IsSuperuser: user.IsSuperuser,
		Scopes:      scopes,
	}

	token := jwt.NewWithClaims(s.method, claims)
	signed, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// IssueRefreshToken creates a long-lived refresh JWT. The JTI and expiry
// are returned so the caller can track the token server-side for rotation.
func (s *TokenService) IssueRefreshToken(userID uuid.UUID) (raw string, jti string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	jti = uuid.New().String()
	expiresAt = now.Add(s.cfg.RefreshTokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TokenType: TokenTypeRefresh,
	}

	token := jwt.NewWithClaims(s.method, claims)
	raw, err = token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		err = fmt.Errorf("sign refresh token: %w", err)
	}
	return
}

// Verify parses and validates a JWT, returning the claims. Only HMAC
// signing methods are accepted regardless of the token's alg header.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		default:
			return nil, ErrTokenInvalid
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// VerifyAccess validates a token and ensures it is an access token.
func (s *TokenService) VerifyAccess(tokenStr string) (*Claims, error) {
	claims, err := s.Verify(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// VerifyRefresh validates a token and ensures it is a refresh token.
func (s *TokenService) VerifyRefresh(tokenStr string) (*Claims, error) {
	claims, err := s.Verify(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, ErrWrongTokenType
	}
	if claims.ID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// HashRefreshToken derives the deterministic HMAC-SHA256 digest stored in
// place of the raw refresh token.
func (s *TokenService) HashRefreshToken(raw string) string {
	h := hmac.New(sha256.New, []byte(s.cfg.SecretKey))
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}
