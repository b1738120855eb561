package core

import (
	"context"

	"go.uber.org/zap"

	"formcraft-backend-go/internal/db"
	"formcraft-backend-go/internal/models"
)

type clientInfoKey struct{}

// ClientInfo describes the network origin of a request.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// WithClientInfo attaches the request origin to ctx so activity entries can record it.
func WithClientInfo(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, clientInfoKey{}, info)
}

// ClientInfoFrom returns the request origin stored in ctx.
func ClientInfoFrom(ctx context.Context) ClientInfo {
	info, _ := ctx.Value(clientInfoKey{}).(ClientInfo)
	return info
}

// activityService implements the ActivityService interface.
type activityService struct {
	activityRepo db.ActivityRepository
	logger       *zap.Logger
}

// NewActivityService creates a new ActivityService instance.
func NewActivityService(activityRepo db.ActivityRepository, logger *zap.Logger) ActivityService {
	return &activityService{activityRepo: activityRepo, logger: logger}
}

// Record stores an activity entry, filling in the request origin from ctx.
// Storage failures are logged and swallowed.
func (s *activityService) Record(ctx context.Context, entry models.ActivityLog) {
	info := ClientInfoFrom(ctx)
	if entry.IPAddress == "" {
		entry.IPAddress = info.IPAddress
	}
	if entry.UserAgent == "" {
		entry.UserAgent = info.UserAgent
	}
	if err := s.activityRepo.Create(ctx, entry); err != nil {
		s.logger.Warn("Failed to record activity",
			zap.String("action", entry.Action),
			zap.String("targetId", entry.TargetID),
			zap.Error(err))
	}
}

// List returns the most recent activity entries.
func (s *activityService) List(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	return s.activityRepo.List(ctx, limit)
}

// ListByUser returns the most recent activity entries of one user.
func (s *activityService) ListByUser(ctx context.Context, userID string, limit int) ([]*models.ActivityLog, error) {
	return s.activityRepo.ListByUser(ctx, userID, limit)
}
