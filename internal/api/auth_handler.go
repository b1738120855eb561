package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"formcraft-backend-go/internal/core"
	"formcraft-backend-go/internal/models"
)

// AuthHandler handles account and session endpoints.
type AuthHandler struct {
	identityService core.IdentityService
	userService     core.UserService
	logger          *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(is core.IdentityService, us core.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{identityService: is, userService: us, logger: logger}
}

// mapAuthErrorToStatus maps identity provider and profile errors to HTTP status codes and ErrorResponse.
func mapAuthErrorToStatus(c *gin.Context, logger *zap.Logger, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrInvalidEmail):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: core.ErrInvalidEmail.Error()}
	case errors.Is(err, core.ErrWeakPassword):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: core.ErrWeakPassword.Error()}
	case errors.Is(err, core.ErrEmailAlreadyInUse):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: core.ErrEmailAlreadyInUse.Error()}
	case errors.Is(err, core.ErrSessionExpired), errors.Is(err, core.ErrSessionRevoked), errors.Is(err, core.ErrInvalidToken):
		statusCode = http.StatusUnauthorized
		errResponse = ErrorResponse{Error: err.Error()}
	case errors.Is(err, core.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrUserNotFound.Error()}
	case errors.Is(err, core.ErrIdentityProvider):
		statusCode = http.StatusBadGateway
		errResponse = ErrorResponse{Error: core.ErrIdentityProvider.Error()}
	default:
		internalError(c, logger, err)
		return
	}
	c.JSON(statusCode, errResponse)
}

// SignUp handles POST /api/v1/auth/signup.
// It creates an email/password account. The client then signs in with the
// identity provider and calls /users/sync to create the profile.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	user, err := h.identityService.SignUp(c.Request.Context(), req)
	if err != nil {
		mapAuthErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// SignOut handles POST /api/v1/auth/signout by revoking the caller's refresh tokens.
func (h *AuthHandler) SignOut(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	if err := h.identityService.SignOut(c.Request.Context(), s); err != nil {
		mapAuthErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Signed out"})
}

// Session handles GET /api/v1/auth/session.
func (h *AuthHandler) Session(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(s))
}

// SyncUser handles POST /api/v1/users/sync.
// It is called by the client after every sign-in: the first call creates the
// profile, later calls refresh it and the last login time.
func (h *AuthHandler) SyncUser(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	user, created, err := h.userService.SyncOnLogin(c.Request.Context(), s)
	if err != nil {
		mapAuthErrorToStatus(c, h.logger, err)
		return
	}
	if created {
		h.logger.Info("User profile created", zap.String("user_id", s.UID))
		c.JSON(http.StatusCreated, user)
		return
	}
	c.JSON(http.StatusOK, user)
}
