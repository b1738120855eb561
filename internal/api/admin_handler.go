package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"formcraft-backend-go/internal/core"
	"formcraft-backend-go/internal/models"
)

// AdminHandler backs the admin console. Every route sits behind RequireAdmin.
type AdminHandler struct {
	adminService   core.AdminService
	userService    core.UserService
	contactService core.ContactService
	logger         *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(as core.AdminService, us core.UserService, cs core.ContactService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{adminService: as, userService: us, contactService: cs, logger: logger}
}

// mapAdminErrorToStatus maps errors of the admin console to HTTP status codes and ErrorResponse.
func mapAdminErrorToStatus(c *gin.Context, logger *zap.Logger, err error) {
	var statusCode int
	var errResponse ErrorResponse
	var verr *core.ValidationError

	switch {
	case errors.As(err, &verr):
		validationError(c, verr)
		return
	case errors.Is(err, core.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrUserNotFound.Error()}
	case errors.Is(err, core.ErrContactNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrContactNotFound.Error()}
	case errors.Is(err, core.ErrAdminRestricted):
		statusCode = http.StatusForbidden
		errResponse = ErrorResponse{Error: core.ErrAdminRestricted.Error()}
	case errors.Is(err, core.ErrInvalidRole):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: core.ErrInvalidRole.Error()}
	default:
		internalError(c, logger, err)
		return
	}
	c.JSON(statusCode, errResponse)
}

// Overview handles GET /admin/overview
func (h *AdminHandler) Overview(c *gin.Context) {
	overview, err := h.adminService.Overview(c.Request.Context())
	if err != nil {
		mapAdminErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// ListUsers handles GET /admin/users?limit=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers(c.Request.Context(), limitParam(c))
	if err != nil {
		mapAdminErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// ListForms handles GET /admin/forms?status=&limit=
func (h *AdminHandler) ListForms(c *gin.Context) {
	forms, err := h.adminService.ListForms(c.Request.Context(), c.Query("status"), limitParam(c))
	if err != nil {
		mapAdminErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, forms)
}

// ListActivity handles GET /admin/activity?userId=&limit=
func (h *AdminHandler) ListActivity(c *gin.Context) {
	entries, err := h.adminService.ListActivity(c.Request.Context(), c.Query("userId"), limitParam(c))
	if err != nil {
		mapAdminErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ListContacts handles GET /admin/contacts?limit=
func (h *AdminHandler) ListContacts(c *gin.Context) {
	messages, err := h.adminService.ListContacts(c.Request.Context(), limitParam(c))
	if err != nil {
		mapAdminErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// SetUserRole handles PUT /admin/users/:userId/role
func (h *AdminHandler) SetUserRole(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	var req models.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	user, err := h.userService.SetRole(c.Request.Context(), s, c.Param("userId"), req.Role)
	if err != nil {
		mapAdminErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// MarkContactRead handles PUT /admin/contacts/:messageId/read
func (h *AdminHandler) MarkContactRead(c *gin.Context) {
	if err := h.contactService.MarkRead(c.Request.Context(), c.Param("messageId")); err != nil {
		mapAdminErrorToStatus(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
