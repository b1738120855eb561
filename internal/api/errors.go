package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"formcraft-backend-go/internal/core"
	"formcraft-backend-go/internal/session"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// validationError answers 400 with the per-field messages of verr.
func validationError(c *gin.Context, verr *core.ValidationError) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrValidation.Error(), Fields: verr.Fields})
}

// internalError logs err and answers with a generic 500 so internal details
// never reach the client.
func internalError(c *gin.Context, logger *zap.Logger, err error) {
	logger.Error("Unhandled error",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
}

// badRequest reports a malformed body or parameter.
func badRequest(c *gin.Context, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

// currentSession returns the session attached by the auth middleware.
// It writes a 401 and returns false when there is none.
func currentSession(c *gin.Context) (*session.Session, bool) {
	s, ok := session.FromGin(c)
	if !ok || s.UID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return nil, false
	}
	return s, true
}

// limitParam reads ?limit=, clamped to (0, maxListLimit].
func limitParam(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
