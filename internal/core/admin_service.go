package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"formcraft-backend-go/internal/db"
	"formcraft-backend-go/internal/models"
)

// AdminOverview holds the headline counts of the admin console.
type AdminOverview struct {
	Users          int64 `json:"users"`
	Forms          int64 `json:"forms"`
	PublishedForms int64 `json:"publishedForms"`
	Submissions    int64 `json:"submissions"`
	UnreadContacts int64 `json:"unreadContacts"`
}

// adminService implements the AdminService interface.
type adminService struct {
	userRepo       db.UserRepository
	formRepo       db.FormRepository
	submissionRepo db.SubmissionRepository
	contactRepo    db.ContactRepository
	activity       ActivityService
	logger         *zap.Logger
}

// NewAdminService creates a new AdminService instance.
func NewAdminService(
	ur db.UserRepository,
	fr db.FormRepository,
	sr db.SubmissionRepository,
	cr db.ContactRepository,
	as ActivityService,
	logger *zap.Logger,
) AdminService {
	return &adminService{
		userRepo:       ur,
		formRepo:       fr,
		submissionRepo: sr,
		contactRepo:    cr,
		activity:       as,
		logger:         logger,
	}
}

// Overview runs the count aggregations concurrently.
func (s *adminService) Overview(ctx context.Context) (*AdminOverview, error) {
	var out AdminOverview
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.Users, err = s.userRepo.Count(gctx)
		return wrapCount("users", err)
	})
	g.Go(func() (err error) {
		out.Forms, err = s.formRepo.Count(gctx, "")
		return wrapCount("forms", err)
	})
	g.Go(func() (err error) {
		out.PublishedForms, err = s.formRepo.Count(gctx, models.StatusPublished)
		return wrapCount("published forms", err)
	})
	g.Go(func() (err error) {
		out.Submissions, err = s.submissionRepo.Count(gctx)
		return wrapCount("submissions", err)
	})
	g.Go(func() (err error) {
		out.UnreadContacts, err = s.contactRepo.CountUnread(gctx)
		return wrapCount("unread contact messages", err)
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to build admin overview", zap.Error(err))
		return nil, err
	}
	return &out, nil
}

func wrapCount(what string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to count %s: %w", what, err)
	}
	return nil
}

func (s *adminService) ListUsers(ctx context.Context, limit int) ([]*models.User, error) {
	users, err := s.userRepo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

// ListForms returns the most recently updated forms of all users. With
// status "published" only the forms currently open to respondents are listed.
func (s *adminService) ListForms(ctx context.Context, status string, limit int) ([]*models.Form, error) {
	var (
		forms []*models.Form
		err   error
	)
	switch models.FormStatus(strings.ToLower(strings.TrimSpace(status))) {
	case "":
		forms, err = s.formRepo.ListAll(ctx, limit)
	case models.StatusPublished:
		forms, err = s.formRepo.ListPublished(ctx, limit)
	default:
		verr := NewValidationError()
		verr.Addf("status", "Unknown status filter %q", status)
		return nil, verr
	}
	if err != nil {
		return nil, err
	}
	if forms == nil {
		forms = []*models.Form{}
	}
	return forms, nil
}

// ListActivity returns the activity trail, optionally for one user.
func (s *adminService) ListActivity(ctx context.Context, userID string, limit int) ([]*models.ActivityLog, error) {
	var (
		entries []*models.ActivityLog
		err     error
	)
	if userID != "" {
		entries, err = s.activity.ListByUser(ctx, userID, limit)
	} else {
		entries, err = s.activity.List(ctx, limit)
	}
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*models.ActivityLog{}
	}
	return entries, nil
}

func (s *adminService) ListContacts(ctx context.Context, limit int) ([]*models.ContactMessage, error) {
	msgs, err := s.contactRepo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []*models.ContactMessage{}
	}
	return msgs, nil
}
