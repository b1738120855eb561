package core

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"

	"formcraft-backend-go/internal/db"
	"formcraft-backend-go/internal/models"
	"formcraft-backend-go/internal/session"
)

const minPasswordLength = 6

// identityService implements IdentityService over the Firebase Auth admin API.
type identityService struct {
	authAdmin AuthAdmin
	userRepo  db.UserRepository
	activity  ActivityService
	logger    *zap.Logger
}

// NewIdentityService creates a new IdentityService instance.
func NewIdentityService(authAdmin AuthAdmin, userRepo db.UserRepository, activity ActivityService, logger *zap.Logger) IdentityService {
	return &identityService{
		authAdmin: authAdmin,
		userRepo:  userRepo,
		activity:  activity,
		logger:    logger,
	}
}

// SignUp creates an email/password account and its profile.
func (s *identityService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	displayName := strings.TrimSpace(req.DisplayName)

	params := (&auth.UserToCreate{}).Email(email).Password(req.Password)
	if displayName != "" {
		params = params.DisplayName(displayName)
	}
	record, err := s.authAdmin.CreateUser(ctx, params)
	if err != nil {
		return nil, TranslateAuthError(err)
	}

	// A fresh password account has an unverified email, so it never starts
	// as admin. The role is granted on the first verified sign-in.
	now := time.Now().UTC()
	user := &models.User{
		ID:          record.UID,
		Email:       email,
		DisplayName: displayName,
		Provider:    "password",
		Role:        models.RoleUser,
		CreatedAt:   now,
		UpdatedAt:   now,
		LastLoginAt: now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil && !errors.Is(err, db.ErrAlreadyExists) {
		// The account exists; the profile is created again on first sign-in.
		s.logger.Warn("Failed to create profile after sign-up", zap.String("uid", record.UID), zap.Error(err))
	}
	s.activity.Record(ctx, models.ActivityLog{
		UserID:     user.ID,
		Action:     models.ActionUserSignUp,
		TargetType: models.TargetUser,
		TargetID:   user.ID,
		Details:    map[string]interface{}{"provider": user.Provider},
	})
	return user, nil
}

// SignOut ends every session of the caller by revoking refresh tokens.
func (s *identityService) SignOut(ctx context.Context, sess *session.Session) error {
	if sess == nil || sess.UID == "" {
		return ErrInvalidToken
	}
	if err := s.authAdmin.RevokeRefreshTokens(ctx, sess.UID); err != nil {
		return TranslateAuthError(err)
	}
	s.activity.Record(ctx, models.ActivityLog{
		UserID:     sess.UID,
		Action:     models.ActionUserSignOut,
		TargetType: models.TargetUser,
		TargetID:   sess.UID,
	})
	return nil
}

// providerCodes maps identity provider error codes that may appear in raw
// error text onto user-facing errors.
var providerCodes = []struct {
	code string
	err  error
}{
	{"EMAIL_EXISTS", ErrEmailAlreadyInUse},
	{"email-already-exists", ErrEmailAlreadyInUse},
	{"INVALID_EMAIL", ErrInvalidEmail},
	{"invalid-email", ErrInvalidEmail},
	{"WEAK_PASSWORD", ErrWeakPassword},
	{"invalid-password", ErrWeakPassword},
	{"USER_NOT_FOUND", ErrUserNotFound},
	{"user-not-found", ErrUserNotFound},
}

// TranslateAuthError maps identity provider errors to user-facing errors.
// Errors it does not recognize become ErrIdentityProvider.
func TranslateAuthError(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		ErrEmailAlreadyInUse, ErrInvalidEmail, ErrWeakPassword, ErrUserNotFound,
		ErrSessionExpired, ErrSessionRevoked, ErrInvalidToken,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	switch {
	case auth.IsEmailAlreadyExists(err):
		return ErrEmailAlreadyInUse
	case auth.IsUserNotFound(err):
		return ErrUserNotFound
	case auth.IsIDTokenExpired(err):
		return ErrSessionExpired
	case auth.IsIDTokenRevoked(err):
		return ErrSessionRevoked
	case auth.IsIDTokenInvalid(err):
		return ErrInvalidToken
	}
	msg := err.Error()
	for _, known := range providerCodes {
		if strings.Contains(msg, known.code) {
			return known.err
		}
	}
	return ErrIdentityProvider
}

func isValidEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@")+1:], ".")
}
