package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aegisid/aegis-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func rbacRouter(claims *service.Claims, guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guarded", func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextKeyClaims, claims)
		}
		c.Next()
	}, guard, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func hit(r *gin.Engine) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/guarded", nil)
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRequirePermission_Granted(t *testing.T) {
	claims := &service.Claims{Scopes: []string{"role:auditor", "user:read"}}
	r := rbacRouter(claims, RequirePermission("user:read"))
	assert.Equal(t, http.StatusOK, hit(r))
}

func TestRequirePermission_Denied(t *testing.T) {
	claims := &service.Claims{Scopes: []string{"role:auditor", "user:read"}}
	r := rbacRouter(claims, RequirePermission("user:delete"))
	assert.Equal(t, http.StatusForbidden, hit(r))
}

func TestRequirePermission_SuperuserBypass(t *testing.T) {
	claims := &service.Claims{IsSuperuser: true}
	r := rbacRouter(claims, RequirePermission("user:delete"))
	assert.Equal(t, http.StatusOK, hit(r))
}

func TestRequirePermission_NoClaims(t *testing.T) {
	r := rbacRouter(nil, RequirePermission("user:read"))
	assert.Equal(t, http.StatusUnauthorized, hit(r))
}

func TestRequireAnyPermission(t *testing.T) {
	claims := &service.Claims{Scopes: []string{"role:editor", "role:update"}}
	r := rbacRouter(claims, RequireAnyPermission("role:read", "role:update"))
	assert.Equal(t, http.StatusOK, hit(r))

	r = rbacRouter(claims, RequireAnyPermission("user:read", "user:create"))
	assert.Equal(t, http.StatusForbidden, hit(r))
}

func TestRequireSuperuser(t *testing.T) {
	r := rbacRouter(&service.Claims{IsSuperuser: true}, RequireSuperuser())
	assert.Equal(t, http.StatusOK, hit(r))

	r = rbacRouter(&service.Claims{Scopes: []string{"user:read"}}, RequireSuperuser())
	assert.Equal(t, http.StatusForbidden, hit(r))
}
