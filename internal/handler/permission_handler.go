package handler

import (
	"errors"
	"net/http"

	"github.com/aegisid/aegis-backend/internal/model"
	"github.com/aegisid/aegis-backend/internal/response"
	"github.com/aegisid/aegis-backend/internal/service"
	"github.com/aegisid/aegis-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// PermissionHandler handles permission catalog endpoints.
type PermissionHandler struct {
	permService *service.PermissionService
}

// NewPermissionHandler creates a new PermissionHandler.
func NewPermissionHandler(permService *service.PermissionService) *PermissionHandler {
	return &PermissionHandler{permService: permService}
}

// List gets the permission catalog.
func (h *PermissionHandler) List(c *gin.Context) {
	permissions, err := h.permService.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"permissions": permissions})
}

// Create adds a catalog entry. Superuser only.
func (h *PermissionHandler) Create(c *gin.Context) {
	var req model.CreatePermissionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	permission, err := h.permService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrPermissionCodeTaken) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"permission": permission})
}

// Update renames a catalog entry. Superuser only.
func (h *PermissionHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req model.UpdatePermissionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.permService.Update(c.Request.Context(), id, &req); err != nil {
		if errors.Is(err, service.ErrPermissionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// Delete removes a catalog entry no role grants. Superuser only.
func (h *PermissionHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.permService.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrPermissionNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrPermissionInUse):
			response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
