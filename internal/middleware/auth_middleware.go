package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"formcraft-backend-go/internal/core"
	"formcraft-backend-go/internal/session"
)

// ErrorResponse is a local definition for sending standardized error messages.
// It mirrors the one in internal/api/dto_models.go to avoid import cycles.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
}

var errMissingToken = errors.New("authorization header is required")

// AuthMiddleware provides Gin middleware for Firebase token authentication.
type AuthMiddleware struct {
	verifier   TokenVerifier
	adminEmail string
	logger     *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
// It panics if the verifier is nil, as this is a critical setup dependency.
func NewAuthMiddleware(verifier TokenVerifier, adminEmail string, logger *zap.Logger) *AuthMiddleware {
	if verifier == nil {
		panic("Firebase Auth client is not initialized for AuthMiddleware")
	}
	return &AuthMiddleware{verifier: verifier, adminEmail: adminEmail, logger: logger}
}

// bearerToken extracts the token of an "Authorization: Bearer {token}" header.
func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", errMissingToken
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("authorization header format must be 'Bearer {token}'")
	}
	return parts[1], nil
}

// authenticate verifies the token and attaches the resulting session.
// Revoked tokens (signed out sessions) are rejected.
func (m *AuthMiddleware) authenticate(c *gin.Context, idToken string) error {
	token, err := m.verifier.VerifyIDTokenAndCheckRevoked(c.Request.Context(), idToken)
	if err != nil {
		return err
	}
	s := session.New(session.Claims{
		UID:      token.UID,
		Claims:   token.Claims,
		Provider: token.Firebase.SignInProvider,
		AuthTime: token.AuthTime,
		IssuedAt: token.IssuedAt,
	}, m.adminEmail)
	session.Attach(c, s)
	return nil
}

// VerifyToken is a Gin middleware handler function that requires a valid Firebase ID token
// in the Authorization header and attaches the caller's session to the request.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		idToken, err := bearerToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: capitalize(err.Error())})
			return
		}
		if err := m.authenticate(c, idToken); err != nil {
			m.logger.Warn("Rejected ID token", zap.String("path", c.Request.URL.Path), zap.Error(err))
			// Only the user-facing translation goes back to the client.
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: core.TranslateAuthError(err).Error()})
			return
		}
		c.Next()
	}
}

// OptionalToken attaches a session when a valid token is present and lets
// anonymous requests through. An invalid token is treated as anonymous.
func (m *AuthMiddleware) OptionalToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if idToken, err := bearerToken(c); err == nil {
			if err := m.authenticate(c, idToken); err != nil {
				m.logger.Debug("Ignoring invalid optional ID token", zap.Error(err))
			}
		}
		c.Next()
	}
}

// RequireAdmin rejects requests whose session does not hold the admin role.
// It must run after VerifyToken.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := session.FromGin(c)
		if !ok || !s.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Admin access required"})
			return
		}
		c.Next()
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
