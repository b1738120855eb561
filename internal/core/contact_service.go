package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"formcraft-backend-go/internal/db"
	"formcraft-backend-go/internal/models"
)

const (
	maxContactName    = 100
	maxContactSubject = 200
	maxContactMessage = 5000
)

// contactService implements the ContactService interface.
type contactService struct {
	contactRepo   db.ContactRepository
	notifications NotificationService
	activity      ActivityService
	logger        *zap.Logger
}

// NewContactService creates a new ContactService instance.
func NewContactService(cr db.ContactRepository, ns NotificationService, as ActivityService, logger *zap.Logger) ContactService {
	return &contactService{contactRepo: cr, notifications: ns, activity: as, logger: logger}
}

// Submit validates and stores a contact message, then notifies the admin.
func (s *contactService) Submit(ctx context.Context, req models.ContactRequest) (*models.ContactMessage, error) {
	msg := &models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
		Status:  models.ContactStatusNew,
	}

	verr := NewValidationError()
	switch {
	case msg.Name == "":
		verr.Add("name", "Name is required")
	case len(msg.Name) > maxContactName:
		verr.Addf("name", "Name must be at most %d characters", maxContactName)
	}
	if !isValidEmail(msg.Email) {
		verr.Add("email", ErrInvalidEmail.Error())
	}
	if len(msg.Subject) > maxContactSubject {
		verr.Addf("subject", "Subject must be at most %d characters", maxContactSubject)
	}
	switch {
	case msg.Message == "":
		verr.Add("message", "Message is required")
	case len(msg.Message) > maxContactMessage:
		verr.Addf("message", "Message must be at most %d characters", maxContactMessage)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if _, err := s.contactRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store contact message: %w", err)
	}
	s.notifications.NotifyContact(ctx, msg)
	s.activity.Record(ctx, models.ActivityLog{
		Action:     models.ActionContactMessageNew,
		TargetType: models.TargetContact,
		TargetID:   msg.ID,
	})
	return msg, nil
}

func (s *contactService) List(ctx context.Context, limit int) ([]*models.ContactMessage, error) {
	msgs, err := s.contactRepo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []*models.ContactMessage{}
	}
	return msgs, nil
}

func (s *contactService) MarkRead(ctx context.Context, messageID string) error {
	if err := s.contactRepo.MarkRead(ctx, messageID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: '%s'", ErrContactNotFound, messageID)
		}
		return err
	}
	return nil
}
