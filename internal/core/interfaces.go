package core

import (
	"context"
	"io"

	"firebase.google.com/go/v4/auth"

	"formcraft-backend-go/internal/models"
	"formcraft-backend-go/internal/session"
	"formcraft-backend-go/internal/templates"
)

// UserService defines user profile operations.
type UserService interface {
	// SyncOnLogin creates the profile on first sign-in and refreshes it on later ones.
	// It reports whether the profile was created.
	SyncOnLogin(ctx context.Context, s *session.Session) (*models.User, bool, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, limit int) ([]*models.User, error)
	SetRole(ctx context.Context, actor *session.Session, userID, role string) (*models.User, error)
}

// IdentityService performs administrative operations against the identity provider.
type IdentityService interface {
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error)
	SignOut(ctx context.Context, s *session.Session) error
}

// FormService defines form authoring operations.
type FormService interface {
	CreateForm(ctx context.Context, actor *session.Session, req models.CreateFormRequest) (*models.Form, error)
	CreateGeneratedForm(ctx context.Context, actor *session.Session, gen *GeneratedForm) (*models.Form, error)
	CreateFromTemplate(ctx context.Context, actor *session.Session, templateID string) (*models.Form, error)
	GetForm(ctx context.Context, actor *session.Session, formID string) (*models.Form, error)
	ListForms(ctx context.Context, actor *session.Session, query models.FormListQuery) ([]*models.Form, error)
	UpdateForm(ctx context.Context, actor *session.Session, formID string, req models.UpdateFormRequest) (*models.Form, error)
	DeleteForm(ctx context.Context, actor *session.Session, formID string) error
	PublishForm(ctx context.Context, actor *session.Session, formID string) (*models.Form, error)
	CompleteForm(ctx context.Context, actor *session.Session, formID string) (*models.Form, error)
	UnpublishForm(ctx context.Context, actor *session.Session, formID string) (*models.Form, error)
	DuplicateForm(ctx context.Context, actor *session.Session, formID string) (*models.Form, error)
	SetSlug(ctx context.Context, actor *session.Session, formID, slug string) (*models.Form, error)
	AddCollaborator(ctx context.Context, actor *session.Session, formID, email string) (*models.Form, error)
	RemoveCollaborator(ctx context.Context, actor *session.Session, formID, email string) (*models.Form, error)
}

// PublicFormService serves published forms to respondents.
type PublicFormService interface {
	GetPublishedForm(ctx context.Context, idOrSlug string) (*models.PublicForm, error)
}

// SubmissionService handles respondent answers.
type SubmissionService interface {
	Submit(ctx context.Context, idOrSlug string, req models.SubmitRequest, respondent Respondent) (*models.SubmitResponse, error)
	ListSubmissions(ctx context.Context, actor *session.Session, formID string) ([]*models.Submission, error)
	GetSubmission(ctx context.Context, actor *session.Session, formID, submissionID string) (*models.Submission, error)
	DeleteSubmission(ctx context.Context, actor *session.Session, formID, submissionID string) error
	ExportCSV(ctx context.Context, actor *session.Session, formID string, w io.Writer) error
}

// GeneratorService turns a topic into a form draft through the LLM port.
type GeneratorService interface {
	Generate(ctx context.Context, topic string) (*GeneratedForm, error)
}

// ActivityService records the activity trail. Recording never fails the caller.
type ActivityService interface {
	Record(ctx context.Context, entry models.ActivityLog)
	List(ctx context.Context, limit int) ([]*models.ActivityLog, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.ActivityLog, error)
}

// NotificationService enqueues outbound mail. Failures are logged, never returned.
type NotificationService interface {
	NotifyNewSubmission(ctx context.Context, form *models.Form, submission *models.Submission)
	NotifyContact(ctx context.Context, msg *models.ContactMessage)
}

// ContactService handles the public contact form.
type ContactService interface {
	Submit(ctx context.Context, req models.ContactRequest) (*models.ContactMessage, error)
	List(ctx context.Context, limit int) ([]*models.ContactMessage, error)
	MarkRead(ctx context.Context, messageID string) error
}

// AdminService backs the admin console.
type AdminService interface {
	Overview(ctx context.Context) (*AdminOverview, error)
	ListUsers(ctx context.Context, limit int) ([]*models.User, error)
	ListForms(ctx context.Context, status string, limit int) ([]*models.Form, error)
	ListActivity(ctx context.Context, userID string, limit int) ([]*models.ActivityLog, error)
	ListContacts(ctx context.Context, limit int) ([]*models.ContactMessage, error)
}

// TemplateService exposes the starter form catalogue.
type TemplateService interface {
	List() []templates.Template
	Get(id string) (templates.Template, error)
}

// MailQueue is the outbound mail port. Enqueueing is the only delivery step this service performs.
type MailQueue interface {
	Enqueue(ctx context.Context, msg models.MailMessage) error
}

// FormGenerator is the LLM port. It returns the raw JSON text of the model's answer.
type FormGenerator interface {
	GenerateFormJSON(ctx context.Context, prompt string) (string, error)
}

// AuthAdmin is the subset of the Firebase Auth client the identity service uses.
type AuthAdmin interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// Respondent identifies who is submitting answers.
type Respondent struct {
	Session *session.Session // Nil for anonymous respondents
	Receipt string           // Receipt token from an earlier submission, if any
}
