package middleware

import (
	"net/http"

	"github.com/aegisid/aegis-backend/internal/response"
	"github.com/aegisid/aegis-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// CheckRevocation rejects access tokens whose JTI was denylisted at
// logout. Must run after RequireAccessToken. Redis errors fail open so a
// cache outage does not lock every user out; the token still expires on
// its own.
func CheckRevocation(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		revoked, err := authService.IsAccessRevoked(c.Request.Context(), claims.ID)
		if err == nil && revoked {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionRevoked)
			return
		}

		c.Next()
	}
}
