package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"formcraft-backend-go/internal/db"
	"formcraft-backend-go/internal/models"
	"formcraft-backend-go/internal/session"
)

// submissionService implements the SubmissionService interface.
type submissionService struct {
	formRepo       db.FormRepository
	submissionRepo db.SubmissionRepository
	receipts       *ReceiptService
	notifications  NotificationService
	activity       ActivityService
	logger         *zap.Logger
}

// NewSubmissionService creates a new SubmissionService instance.
func NewSubmissionService(
	fr db.FormRepository,
	sr db.SubmissionRepository,
	receipts *ReceiptService,
	ns NotificationService,
	as ActivityService,
	logger *zap.Logger,
) SubmissionService {
	return &submissionService{
		formRepo:       fr,
		submissionRepo: sr,
		receipts:       receipts,
		notifications:  ns,
		activity:       as,
		logger:         logger,
	}
}

// Submit validates and stores one response to a published form. Exactly one
// submission document is written; notifications and the activity entry are
// best effort.
func (s *submissionService) Submit(ctx context.Context, idOrSlug string, req models.SubmitRequest, respondent Respondent) (*models.SubmitResponse, error) {
	form, err := resolveByIDOrSlug(ctx, s.formRepo, idOrSlug)
	if err != nil {
		return nil, err
	}
	if err := ensurePublished(form); err != nil {
		return nil, err
	}

	answers, verr := validateAnswers(form, req.Answers)

	var uid string
	email := strings.ToLower(strings.TrimSpace(req.RespondentEmail))
	if respondent.Session != nil {
		uid = respondent.Session.UID
		if email == "" && form.Settings.CollectEmails {
			email = strings.ToLower(respondent.Session.Email)
		}
	}
	switch {
	case email != "" && !isValidEmail(email):
		verr.Add("respondentEmail", ErrInvalidEmail.Error())
	case email == "" && form.Settings.CollectEmails:
		verr.Add("respondentEmail", "Email is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if form.Settings.LimitOneResponse {
		if s.receipts.HasResponded(respondent.Receipt, form.ID) {
			return nil, ErrAlreadyResponded
		}
		found, err := s.submissionRepo.ExistsForRespondent(ctx, form.ID, uid, email)
		if err != nil {
			return nil, fmt.Errorf("failed to check earlier responses to form '%s': %w", form.ID, err)
		}
		if found {
			return nil, ErrAlreadyResponded
		}
	}

	submission := &models.Submission{
		FormID:          form.ID,
		Answers:         answers,
		RespondentEmail: email,
		RespondentUID:   uid,
	}
	submissionID, err := s.submissionRepo.Create(ctx, form.ID, submission)
	if err != nil {
		return nil, fmt.Errorf("failed to store submission for form '%s': %w", form.ID, err)
	}
	submission.ID = submissionID
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}

	if err := s.formRepo.IncrementResponses(ctx, form.ID); err != nil {
		s.logger.Warn("Failed to count response", zap.String("formID", form.ID), zap.Error(err))
	}

	receipt, err := s.receipts.Issue(form.ID, submissionID)
	if err != nil {
		s.logger.Warn("Failed to issue response receipt", zap.String("formID", form.ID), zap.Error(err))
	}

	s.notifications.NotifyNewSubmission(ctx, form, submission)
	s.activity.Record(ctx, models.ActivityLog{
		UserID:     uid,
		Action:     models.ActionSubmissionCreate,
		TargetType: models.TargetSubmission,
		TargetID:   submissionID,
		Details:    map[string]interface{}{"formId": form.ID},
	})

	return &models.SubmitResponse{
		SubmissionID:        submissionID,
		Receipt:             receipt,
		ConfirmationMessage: form.Settings.ConfirmationMessage,
	}, nil
}

func (s *submissionService) loadViewable(ctx context.Context, actor *session.Session, formID string) (*models.Form, error) {
	form, err := loadForm(ctx, s.formRepo, formID)
	if err != nil {
		return nil, err
	}
	if !canView(form, actor) {
		return nil, fmt.Errorf("%w: user cannot view responses of form '%s'", ErrForbiddenAccess, formID)
	}
	return form, nil
}

// ListSubmissions returns the responses of a form, newest first.
func (s *submissionService) ListSubmissions(ctx context.Context, actor *session.Session, formID string) ([]*models.Submission, error) {
	if _, err := s.loadViewable(ctx, actor, formID); err != nil {
		return nil, err
	}
	subs, err := s.submissionRepo.ListByForm(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions of form '%s': %w", formID, err)
	}
	if subs == nil {
		subs = []*models.Submission{}
	}
	return subs, nil
}

// GetSubmission returns one response.
func (s *submissionService) GetSubmission(ctx context.Context, actor *session.Session, formID, submissionID string) (*models.Submission, error) {
	if _, err := s.loadViewable(ctx, actor, formID); err != nil {
		return nil, err
	}
	sub, err := s.submissionRepo.GetByID(ctx, formID, submissionID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: submission '%s'", ErrSubmissionNotFound, submissionID)
		}
		return nil, fmt.Errorf("failed to get submission '%s': %w", submissionID, err)
	}
	return sub, nil
}

// DeleteSubmission removes one response. Owner only. The responses counter
// keeps counting received responses and is not decremented.
func (s *submissionService) DeleteSubmission(ctx context.Context, actor *session.Session, formID, submissionID string) error {
	form, err := loadForm(ctx, s.formRepo, formID)
	if err != nil {
		return err
	}
	if !isOwner(form, actor) {
		return fmt.Errorf("%w: only the owner can delete responses of form '%s'", ErrForbiddenAccess, formID)
	}
	if err := s.submissionRepo.Delete(ctx, formID, submissionID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: submission '%s'", ErrSubmissionNotFound, submissionID)
		}
		return fmt.Errorf("failed to delete submission '%s': %w", submissionID, err)
	}
	s.activity.Record(ctx, models.ActivityLog{
		UserID:     actor.UID,
		Action:     models.ActionSubmissionDelete,
		TargetType: models.TargetSubmission,
		TargetID:   submissionID,
		Details:    map[string]interface{}{"formId": formID},
	})
	return nil
}

// ExportCSV writes all responses of a form as CSV, oldest first. Columns are
// the submission metadata followed by one column per input field.
func (s *submissionService) ExportCSV(ctx context.Context, actor *session.Session, formID string, w io.Writer) error {
	form, err := s.loadViewable(ctx, actor, formID)
	if err != nil {
		return err
	}
	subs, err := s.submissionRepo.ListByForm(ctx, formID)
	if err != nil {
		return fmt.Errorf("failed to list submissions of form '%s': %w", formID, err)
	}
	return writeSubmissionsCSV(w, form, subs)
}

func writeSubmissionsCSV(w io.Writer, form *models.Form, subs []*models.Submission) error {
	inputs := form.InputFields()
	cw := csv.NewWriter(w)

	header := []string{"Submission ID", "Submitted At", "Respondent Email"}
	for _, f := range inputs {
		header = append(header, csvCell(f.Label))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := len(subs) - 1; i >= 0; i-- {
		sub := subs[i]
		row := []string{sub.ID, sub.SubmittedAt.UTC().Format(time.RFC3339), csvCell(sub.RespondentEmail)}
		for _, f := range inputs {
			row = append(row, answerCell(f, sub.Answers[f.ID]))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatAnswer renders an answer as display text.
func formatAnswer(f models.Field, v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		if f.Kind == models.FieldSignature {
			return "[signature]"
		}
		return t
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case float64:
		return formatNumber(t)
	case int64:
		return formatNumber(float64(t))
	case []string:
		return strings.Join(productNames(f, t), "; ")
	case []interface{}:
		items := make([]string, 0, len(t))
		for _, item := range t {
			items = append(items, fmt.Sprint(item))
		}
		return strings.Join(productNames(f, items), "; ")
	default:
		return fmt.Sprint(t)
	}
}

func productNames(f models.Field, ids []string) []string {
	if f.Kind != models.FieldProduct {
		return ids
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		name := id
		for _, p := range f.Products {
			if p.ID == id {
				name = p.Name
			}
		}
		names = append(names, name)
	}
	return names
}

// answerCell renders an answer for a CSV row. Numbers are written as-is so
// spreadsheets keep them numeric.
func answerCell(f models.Field, v interface{}) string {
	switch t := v.(type) {
	case float64:
		return formatNumber(t)
	case int64:
		return formatNumber(float64(t))
	}
	return csvCell(formatAnswer(f, v))
}

// csvCell neutralizes values a spreadsheet would evaluate as a formula.
func csvCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@", rune(s[0])) {
		return "'" + s
	}
	return s
}
