package handler

import (
	"errors"
	"net/http"

	"github.com/aegisid/aegis-backend/internal/metrics"
	"github.com/aegisid/aegis-backend/internal/middleware"
	"github.com/aegisid/aegis-backend/internal/model"
	"github.com/aegisid/aegis-backend/internal/response"
	"github.com/aegisid/aegis-backend/internal/service"
	"github.com/aegisid/aegis-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
	metrics     *metrics.Metrics
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authService *service.AuthService,
	userService *service.UserService,
	m *metrics.Metrics,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		metrics:     m,
	}
}

// Register godoc
// POST /api/v1/auth/register
// Creates an active, non-superuser account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

// Login godoc
// POST /api/v1/auth/login
// Validates email + password, returns an access/refresh token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			h.metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		case errors.Is(err, service.ErrInactiveUser):
			h.metrics.LoginsTotal.WithLabelValues("inactive").Inc()
			response.Fail(c, http.StatusForbidden, response.ErrInactiveUser)
		case errors.Is(err, service.ErrTooManyAttempts):
			h.metrics.LoginsTotal.WithLabelValues("throttled").Inc()
			response.Fail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	h.metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.metrics.TokensIssued.WithLabelValues("access").Inc()
	h.metrics.TokensIssued.WithLabelValues("refresh").Inc()

	response.Success(c, http.StatusOK, result)
}

// Refresh godoc
// POST /api/v1/auth/refresh
// Exchanges a valid refresh token for a new pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenExpired):
			response.Fail(c, http.StatusUnauthorized, response.ErrTokenExpired)
		case errors.Is(err, service.ErrTokenSignature):
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidSignature)
		case errors.Is(err, service.ErrInactiveUser):
			response.Fail(c, http.StatusForbidden, response.ErrInactiveUser)
		case errors.Is(err, service.ErrTokenInvalid), errors.Is(err, service.ErrWrongTokenType):
			response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	h.metrics.TokensIssued.WithLabelValues("access").Inc()
	h.metrics.TokensIssued.WithLabelValues("refresh").Inc()

	response.Success(c, http.StatusOK, pair)
}

// Logout godoc
// POST /api/v1/auth/logout
// Revokes all refresh tokens and denylists the presented access token.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// GetProfile godoc
// GET /api/v1/auth/me
// Returns the profile of the currently authenticated user.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	userID, err := claims.UserID()
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// UpdateProfile godoc
// PUT /api/v1/auth/me
// Updates the current user's email, name or password.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	userID, err := claims.UserID()
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	var req model.UpdateProfileRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		case errors.Is(err, service.ErrUserNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}
