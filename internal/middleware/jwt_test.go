package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aegisid/aegis-backend/internal/config"
	"github.com/aegisid/aegis-backend/internal/model"
	"github.com/aegisid/aegis-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenService(t *testing.T, accessTTL time.Duration) *service.TokenService {
	t.Helper()
	svc, err := service.NewTokenService(&config.Config{
		SecretKey:       "middleware-test-secret",
		Algorithm:       "HS256",
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: 24 * time.Hour,
	})
	require.NoError(t, err)
	return svc
}

func protectedRouter(tokens *service.TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", RequireAccessToken(tokens), func(c *gin.Context) {
		claims := GetClaims(c)
		c.JSON(http.StatusOK, gin.H{"subject": claims.Subject})
	})
	return r
}

func hitWithToken(r *gin.Engine, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func TestRequireAccessToken_Valid(t *testing.T) {
	tokens := newTokenService(t, 30*time.Minute)
	user := &model.User{ID: uuid.New(), Email: "bob@example.com"}

	raw, err := tokens.IssueAccessToken(user, []string{"user:read"})
	require.NoError(t, err)

	w := hitWithToken(protectedRouter(tokens), raw)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), user.ID.String())
}

func TestRequireAccessToken_Missing(t *testing.T) {
	tokens := newTokenService(t, 30*time.Minute)

	w := hitWithToken(protectedRouter(tokens), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_REQUIRED", errCode(t, w))
}

func TestRequireAccessToken_Expired(t *testing.T) {
	issuer := newTokenService(t, -time.Minute)
	raw, err := issuer.IssueAccessToken(&model.User{ID: uuid.New()}, nil)
	require.NoError(t, err)

	verifier := newTokenService(t, 30*time.Minute)
	w := hitWithToken(protectedRouter(verifier), raw)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_EXPIRED", errCode(t, w))
}

func TestRequireAccessToken_BadSignature(t *testing.T) {
	other, err := service.NewTokenService(&config.Config{
		SecretKey:       "someone-elses-secret",
		Algorithm:       "HS256",
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	require.NoError(t, err)

	raw, err := other.IssueAccessToken(&model.User{ID: uuid.New()}, nil)
	require.NoError(t, err)

	tokens := newTokenService(t, 30*time.Minute)
	w := hitWithToken(protectedRouter(tokens), raw)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_SIGNATURE", errCode(t, w))
}

func TestRequireAccessToken_RefreshTokenRejected(t *testing.T) {
	tokens := newTokenService(t, 30*time.Minute)
	raw, _, _, err := tokens.IssueRefreshToken(uuid.New())
	require.NoError(t, err)

	w := hitWithToken(protectedRouter(tokens), raw)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_INVALID", errCode(t, w))
}
