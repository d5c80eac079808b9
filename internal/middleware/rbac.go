package middleware

import (
	"net/http"

	"github.com/aegisid/aegis-backend/internal/authz"
	"github.com/aegisid/aegis-backend/internal/response"
	"github.com/gin-gonic/gin"
)

// RequirePermission checks that the access token carries the required
// permission scope. Superusers pass every check; everyone else is denied
// unless the scope is present (fail-closed).
func RequirePermission(permissionCode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if claims.IsSuperuser || authz.Allowed(claims.Scopes, permissionCode) {
			c.Next()
			return
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
	}
}

// RequireAnyPermission checks that the access token carries at least one
// of the specified permission scopes.
func RequireAnyPermission(codes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if claims.IsSuperuser || authz.AllowedAny(claims.Scopes, codes...) {
			c.Next()
			return
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
	}
}

// RequireSuperuser restricts a route to superusers.
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		if !claims.IsSuperuser {
			response.AbortFail(c, http.StatusForbidden, response.ErrSuperuserOnly)
			return
		}
		c.Next()
	}
}
