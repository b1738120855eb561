package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"formcraft-backend-go/internal/db"
	"formcraft-backend-go/internal/models"
	"formcraft-backend-go/internal/session"
)

// userService implements the UserService interface.
type userService struct {
	userRepo   db.UserRepository
	activity   ActivityService
	adminEmail string
	logger     *zap.Logger
	now        func() time.Time
}

// NewUserService creates a new UserService instance. adminEmail is the only
// address that may hold the admin role.
func NewUserService(userRepo db.UserRepository, activity ActivityService, adminEmail string, logger *zap.Logger) UserService {
	return &userService{
		userRepo:   userRepo,
		activity:   activity,
		adminEmail: adminEmail,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *userService) roleFor(email string, verified bool) string {
	if verified && session.IsAdminEmail(email, s.adminEmail) {
		return models.RoleAdmin
	}
	return models.RoleUser
}

// SyncOnLogin creates the profile on first sign-in and refreshes it afterwards.
// The stored role always follows the configured admin email, and only a
// verified address is granted admin.
func (s *userService) SyncOnLogin(ctx context.Context, sess *session.Session) (*models.User, bool, error) {
	if sess == nil || sess.UID == "" {
		return nil, false, errors.New("SyncOnLogin: session is required")
	}
	now := s.now()

	user, err := s.userRepo.GetByID(ctx, sess.UID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			return nil, false, fmt.Errorf("failed to get user by ID '%s' from repository: %w", sess.UID, err)
		}
		newUser := &models.User{
			ID:          sess.UID,
			Email:       strings.ToLower(sess.Email),
			DisplayName: sess.DisplayName,
			PhotoURL:    sess.PhotoURL,
			Provider:    sess.Provider,
			Role:        s.roleFor(sess.Email, sess.EmailVerified),
			CreatedAt:   now,
			UpdatedAt:   now,
			LastLoginAt: now,
		}
		if createErr := s.userRepo.Create(ctx, newUser); createErr != nil {
			if !errors.Is(createErr, db.ErrAlreadyExists) {
				return nil, false, fmt.Errorf("failed to create user (id: %s) after not found: %w", sess.UID, createErr)
			}
			// A concurrent first request created the profile.
			existing, getErr := s.userRepo.GetByID(ctx, sess.UID)
			if getErr != nil {
				return nil, false, fmt.Errorf("failed to reload user '%s': %w", sess.UID, getErr)
			}
			return existing, false, nil
		}
		s.activity.Record(ctx, models.ActivityLog{
			UserID:     newUser.ID,
			Action:     models.ActionUserSignUp,
			TargetType: models.TargetUser,
			TargetID:   newUser.ID,
			Details:    map[string]interface{}{"provider": newUser.Provider, "role": newUser.Role},
		})
		return newUser, true, nil
	}

	before := *user
	if sess.Email != "" {
		user.Email = strings.ToLower(sess.Email)
	}
	if sess.DisplayName != "" {
		user.DisplayName = sess.DisplayName
	}
	if sess.PhotoURL != "" {
		user.PhotoURL = sess.PhotoURL
	}
	if sess.Provider != "" {
		user.Provider = sess.Provider
	}
	user.Role = s.roleFor(user.Email, sess.EmailVerified)
	if before.Role == models.RoleAdmin && user.Role != models.RoleAdmin {
		s.logger.Warn("Demoting stored admin whose email no longer matches the configured admin", zap.String("userID", user.ID))
	}
	user.UpdatedAt = now
	user.LastLoginAt = now

	// An unchanged profile only needs its login time stamped.
	if user.Email == before.Email && user.DisplayName == before.DisplayName && user.PhotoURL == before.PhotoURL &&
		user.Provider == before.Provider && user.Role == before.Role {
		if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
			return nil, false, fmt.Errorf("failed to stamp login for user '%s': %w", user.ID, err)
		}
	} else if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, false, fmt.Errorf("failed to refresh user '%s' on login: %w", user.ID, err)
	}
	s.activity.Record(ctx, models.ActivityLog{
		UserID:     user.ID,
		Action:     models.ActionUserLogin,
		TargetType: models.TargetUser,
		TargetID:   user.ID,
	})
	return user, false, nil
}

// GetByID retrieves a user by their ID.
func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email.
func (s *userService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with email '%s'", ErrUserNotFound, email)
		}
		return nil, fmt.Errorf("failed to get user by email from repository: %w", err)
	}
	return user, nil
}

// ListUsers returns the most recently created users.
func (s *userService) ListUsers(ctx context.Context, limit int) ([]*models.User, error) {
	return s.userRepo.List(ctx, limit)
}

// SetRole changes a user's role. Only the configured admin email may be admin,
// and that account cannot be demoted.
func (s *userService) SetRole(ctx context.Context, actor *session.Session, userID, role string) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if role != s.roleFor(user.Email, true) {
		return nil, ErrAdminRestricted
	}
	if user.Role == role {
		return user, nil
	}
	if err := s.userRepo.SetRole(ctx, userID, role); err != nil {
		return nil, fmt.Errorf("failed to set role of user '%s': %w", userID, err)
	}
	previous := user.Role
	user.Role = role

	actorID := ""
	if actor != nil {
		actorID = actor.UID
	}
	s.activity.Record(ctx, models.ActivityLog{
		UserID:     actorID,
		Action:     models.ActionUserRoleChange,
		TargetType: models.TargetUser,
		TargetID:   userID,
		Details:    map[string]interface{}{"from": previous, "to": role},
	})
	return user, nil
}
