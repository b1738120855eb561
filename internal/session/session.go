// Package session carries the signed-in identity through a request.
//
// A Session is created by the auth middleware from a verified identity token
// and lives for a single request. It is torn down explicitly by signing out,
// which revokes the account's refresh tokens so later token checks fail.
package session

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"formcraft-backend-go/internal/models"
)

// ginKey is the gin context key the session is stored under.
const ginKey = "session"

type ctxKey struct{}

// Session is the identity of the caller of a request.
type Session struct {
	UID           string
	Email         string
	EmailVerified bool
	DisplayName   string
	PhotoURL      string
	Provider      string // sign-in provider, e.g. "password" or "google.com"
	Role          string
	AuthTime      time.Time
	IssuedAt      time.Time
}

// Claims is the subset of a verified token a session is built from.
type Claims struct {
	UID      string
	Claims   map[string]interface{}
	Provider string
	AuthTime int64
	IssuedAt int64
}

// New builds a session from verified token claims. The admin role is granted
// only when the token's email is verified and matches adminEmail.
func New(c Claims, adminEmail string) *Session {
	s := &Session{
		UID:      c.UID,
		Provider: c.Provider,
		Role:     models.RoleUser,
	}
	if email, ok := c.Claims["email"].(string); ok {
		s.Email = email
	}
	if verified, ok := c.Claims["email_verified"].(bool); ok {
		s.EmailVerified = verified
	}
	if name, ok := c.Claims["name"].(string); ok {
		s.DisplayName = name
	}
	if picture, ok := c.Claims["picture"].(string); ok {
		s.PhotoURL = picture
	}
	if c.AuthTime > 0 {
		s.AuthTime = time.Unix(c.AuthTime, 0).UTC()
	}
	if c.IssuedAt > 0 {
		s.IssuedAt = time.Unix(c.IssuedAt, 0).UTC()
	}
	if s.EmailVerified && IsAdminEmail(s.Email, adminEmail) {
		s.Role = models.RoleAdmin
	}
	return s
}

// IsAdminEmail compares an email with the configured admin address, ignoring case.
func IsAdminEmail(email, adminEmail string) bool {
	email = strings.TrimSpace(email)
	adminEmail = strings.TrimSpace(adminEmail)
	return email != "" && adminEmail != "" && strings.EqualFold(email, adminEmail)
}

// VerifiedEmail returns the session's email when the identity provider has
// verified it, and "" otherwise.
func (s *Session) VerifiedEmail() string {
	if s == nil || !s.EmailVerified {
		return ""
	}
	return s.Email
}

// IsAdmin reports whether the session holds the admin role.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == models.RoleAdmin
}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored in ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}

// Attach stores s on both the gin context and its request context.
func Attach(c *gin.Context, s *Session) {
	c.Set(ginKey, s)
	c.Request = c.Request.WithContext(WithSession(c.Request.Context(), s))
}

// FromGin returns the session attached to the gin context, if any.
func FromGin(c *gin.Context) (*Session, bool) {
	v, exists := c.Get(ginKey)
	if !exists {
		return nil, false
	}
	s, ok := v.(*Session)
	return s, ok && s != nil
}
