package api

import (
	"time"

	"formcraft-backend-go/internal/core"
	"formcraft-backend-go/internal/session"
)

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string            `json:"error"`             // A high-level error message or code
	Details string            `json:"details,omitempty"` // More specific details about the error, if available
	Fields  map[string]string `json:"fields,omitempty"`  // Per-field validation messages
	Title   string            `json:"title,omitempty"`   // Title of a closed form
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SessionResponse describes the caller's signed-in session for GET /auth/session.
type SessionResponse struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	PhotoURL    string    `json:"photoURL,omitempty"`
	Provider    string    `json:"provider,omitempty"`
	Role        string    `json:"role"`
	IsAdmin     bool      `json:"isAdmin"`
	AuthTime    time.Time `json:"authTime"`
	IssuedAt    time.Time `json:"issuedAt"`
}

func newSessionResponse(s *session.Session) SessionResponse {
	return SessionResponse{
		UID:         s.UID,
		Email:       s.Email,
		DisplayName: s.DisplayName,
		PhotoURL:    s.PhotoURL,
		Provider:    s.Provider,
		Role:        s.Role,
		IsAdmin:     s.IsAdmin(),
		AuthTime:    s.AuthTime,
		IssuedAt:    s.IssuedAt,
	}
}

// GeneratedFormResponse wraps an AI draft. FormID is set when the draft was saved.
type GeneratedFormResponse struct {
	*core.GeneratedForm
	FormID string `json:"formId,omitempty"`
}
