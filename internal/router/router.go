package router

import (
	"net/http"
	"time"

	"github.com/aegisid/aegis-backend/internal/config"
	"github.com/aegisid/aegis-backend/internal/handler"
	"github.com/aegisid/aegis-backend/internal/metrics"
	"github.com/aegisid/aegis-backend/internal/middleware"
	"github.com/aegisid/aegis-backend/internal/model"
	"github.com/aegisid/aegis-backend/internal/response"
	"github.com/aegisid/aegis-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	User       *handler.UserHandler
	Role       *handler.RoleHandler
	Permission *handler.PermissionHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	tokenService *service.TokenService,
	authService *service.AuthService,
	handlers *Handlers,
	m *metrics.Metrics,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request IDs and metrics apply to every route.
	router.Use(response.RequestIDMiddleware())
	router.Use(m.Middleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Prometheus scrape endpoint.
	router.GET("/metrics", m.Handler())

	// Rate limiter for credential endpoints.
	authLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMin, time.Minute)

	requireAuth := []gin.HandlerFunc{
		middleware.RequireAccessToken(tokenService),
		middleware.CheckRevocation(authService),
	}

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)
		auth.POST("/refresh", authLimiter.Middleware(), handlers.Auth.Refresh)

		// Authenticated profile routes
		auth.POST("/logout", append(requireAuth, handlers.Auth.Logout)...)
		auth.GET("/me", append(requireAuth, handlers.Auth.GetProfile)...)
		auth.PUT("/me", append(requireAuth, handlers.Auth.UpdateProfile)...)
	}

	// ─── 2. User Management (JWT + RBAC) ───────────────────────────────
	users := router.Group("/api/v1/users")
	users.Use(requireAuth...)
	{
		users.GET("",
			middleware.RequirePermission(string(model.PermissionUserRead)),
			handlers.User.List,
		)
		users.POST("",
			middleware.RequirePermission(string(model.PermissionUserCreate)),
			handlers.User.Create,
		)
		users.GET("/:id",
			middleware.RequirePermission(string(model.PermissionUserRead)),
			handlers.User.Get,
		)
		users.PUT("/:id",
			middleware.RequirePermission(string(model.PermissionUserUpdate)),
			handlers.User.Update,
		)
		users.DELETE("/:id",
			middleware.RequirePermission(string(model.PermissionUserDelete)),
			handlers.User.Deactivate,
		)
		users.PUT("/:id/roles",
			middleware.RequirePermission(string(model.PermissionUserUpdate)),
			handlers.User.AssignRoles,
		)
	}

	// ─── 3. Role Management (JWT + RBAC) ───────────────────────────────
	roles := router.Group("/api/v1/roles")
	roles.Use(requireAuth...)
	{
		roles.GET("",
			middleware.RequirePermission(string(model.PermissionRoleRead)),
			handlers.Role.List,
		)
		roles.GET("/:id",
			middleware.RequirePermission(string(model.PermissionRoleRead)),
			handlers.Role.Get,
		)
		roles.POST("",
			middleware.RequirePermission(string(model.PermissionRoleCreate)),
			handlers.Role.Create,
		)
		roles.PUT("/:id",
			middleware.RequirePermission(string(model.PermissionRoleUpdate)),
			handlers.Role.Update,
		)
		roles.DELETE("/:id",
			middleware.RequirePermission(string(model.PermissionRoleDelete)),
			handlers.Role.Delete,
		)
	}

	// ─── 4. Permission Catalog (JWT; writes superuser-only) ────────────
	permissions := router.Group("/api/v1/permissions")
	permissions.Use(requireAuth...)
	{
		permissions.GET("",
			middleware.RequirePermission(string(model.PermissionRoleRead)),
			handlers.Permission.List,
		)
		permissions.POST("",
			middleware.RequireSuperuser(),
			handlers.Permission.Create,
		)
		permissions.PUT("/:id",
			middleware.RequireSuperuser(),
			handlers.Permission.Update,
		)
		permissions.DELETE("/:id",
			middleware.RequireSuperuser(),
			handlers.Permission.Delete,
		)
	}

	return router
}
