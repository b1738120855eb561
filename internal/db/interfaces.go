package db

import (
	"context"
	"time"

	"formcraft-backend-go/internal/models"
)

// UserRepository defines the storage operations for the users collection.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
	SetRole(ctx context.Context, userID, role string) error
	List(ctx context.Context, limit int) ([]*models.User, error)
	Count(ctx context.Context) (int64, error)
}

// FormRepository defines the storage operations for the forms collection.
type FormRepository interface {
	Create(ctx context.Context, form *models.Form) (string, error) // Returns new form ID
	GetByID(ctx context.Context, formID string) (*models.Form, error)
	GetBySlug(ctx context.Context, slug string) (*models.Form, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Form, error)
	ListSharedWith(ctx context.Context, email string) ([]*models.Form, error)
	ListPublished(ctx context.Context, limit int) ([]*models.Form, error)
	ListAll(ctx context.Context, limit int) ([]*models.Form, error)
	Update(ctx context.Context, form *models.Form) error
	UpdateStatus(ctx context.Context, formID string, status models.FormStatus, publishedAt *time.Time) error
	Delete(ctx context.Context, formID string) error
	IncrementViews(ctx context.Context, formID string) error
	IncrementResponses(ctx context.Context, formID string) error
	SlugExists(ctx context.Context, slug, excludeFormID string) (bool, error)
	Count(ctx context.Context, status models.FormStatus) (int64, error) // Empty status counts all forms
}

// SubmissionRepository defines the storage operations for forms/{formId}/submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, formID string, submission *models.Submission) (string, error)
	ListByForm(ctx context.Context, formID string) ([]*models.Submission, error)
	GetByID(ctx context.Context, formID, submissionID string) (*models.Submission, error)
	Delete(ctx context.Context, formID, submissionID string) error
	DeleteAllForForm(ctx context.Context, formID string) (int, error)
	ExistsForRespondent(ctx context.Context, formID, uid, email string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// ActivityRepository defines the storage operations for activity_logs.
type ActivityRepository interface {
	Create(ctx context.Context, entry models.ActivityLog) error
	List(ctx context.Context, limit int) ([]*models.ActivityLog, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.ActivityLog, error)
}

// ContactRepository defines the storage operations for contact_messages.
type ContactRepository interface {
	Create(ctx context.Context, msg *models.ContactMessage) (string, error)
	List(ctx context.Context, limit int) ([]*models.ContactMessage, error)
	MarkRead(ctx context.Context, messageID string) error
	CountUnread(ctx context.Context) (int64, error)
}
