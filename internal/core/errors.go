package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errors returned by the services. Handlers map them onto HTTP status codes.
var (
	ErrFormNotFound              = errors.New("form not found")
	ErrSubmissionNotFound        = errors.New("submission not found")
	ErrUserNotFound              = errors.New("user not found")
	ErrContactNotFound           = errors.New("contact message not found")
	ErrTemplateNotFound          = errors.New("template not found")
	ErrForbiddenAccess           = errors.New("user does not have permission for this action on the form")
	ErrFormNotAcceptingResponses = errors.New("this form is no longer accepting responses")
	ErrAlreadyResponded          = errors.New("you have already responded to this form")
	ErrValidation                = errors.New("validation failed")
	ErrInvalidStatusTransition   = errors.New("invalid form status transition")
	ErrSlugTaken                 = errors.New("slug is already in use")
	ErrGenerationFailed          = errors.New("could not generate a form for this topic, please try again")
	ErrGeneratorUnavailable      = errors.New("AI form generation is not configured")
	ErrInvalidRole               = errors.New("invalid role")
	ErrAdminRestricted           = errors.New("the admin role is reserved for the configured admin account")
	ErrCollaboratorIsOwner       = errors.New("the owner cannot be added as a collaborator")

	// Identity provider errors, already phrased for end users.
	ErrEmailAlreadyInUse = errors.New("an account with this email already exists")
	ErrInvalidEmail      = errors.New("please enter a valid email address")
	ErrWeakPassword      = errors.New("password must be at least 6 characters")
	ErrSessionExpired    = errors.New("your session has expired, please sign in again")
	ErrSessionRevoked    = errors.New("your session was signed out, please sign in again")
	ErrInvalidToken      = errors.New("invalid authentication token")
	ErrIdentityProvider  = errors.New("something went wrong, please try again")
)

// ValidationError carries per-field messages. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError ready to collect messages.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Add records a message for key, keeping the first message per key.
func (e *ValidationError) Add(key, msg string) {
	if _, exists := e.Fields[key]; !exists {
		e.Fields[key] = msg
	}
}

// Addf records a formatted message for key.
func (e *ValidationError) Addf(key, format string, args ...interface{}) {
	e.Add(key, fmt.Sprintf(format, args...))
}

// HasErrors reports whether any message was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// OrNil returns e when it holds messages and nil otherwise.
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ClosedFormError reports a completed form, carrying its title so the client
// can render a closed notice.
type ClosedFormError struct {
	FormID string
	Title  string
}

func (e *ClosedFormError) Error() string {
	return fmt.Sprintf("form '%s' is closed: %s", e.FormID, ErrFormNotAcceptingResponses)
}

func (e *ClosedFormError) Unwrap() error {
	return ErrFormNotAcceptingResponses
}
