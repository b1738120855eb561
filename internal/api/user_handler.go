package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"formcraft-backend-go/internal/core"
)

// UserHandler handles user-profile related API endpoints.
type UserHandler struct {
	userService core.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us core.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: us, logger: logger}
}

// mapUserErrorToStatus maps errors from core.UserService to HTTP status codes and ErrorResponse.
func mapUserErrorToStatus(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, core.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrUserNotFound.Error()})
	default:
		internalError(c, logger, err)
	}
}

// GetCurrentUserProfile handles the GET /api/v1/users/me endpoint.
// A caller who never synced gets 404 and is expected to call /users/sync.
func (h *UserHandler) GetCurrentUserProfile(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	user, err := h.userService.GetByID(c.Request.Context(), s.UID)
	if err != nil {
		mapUserErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
