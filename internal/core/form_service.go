package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"formcraft-backend-go/internal/db"
	"formcraft-backend-go/internal/models"
	"formcraft-backend-go/internal/session"
)

const (
	maxListForms    = 500
	maxSlugAttempts = 5
	copyTitlePrefix = "Copy of "
)

// formService implements the FormService interface.
type formService struct {
	formRepo       db.FormRepository
	submissionRepo db.SubmissionRepository
	templates      TemplateService
	activity       ActivityService
	cache          *PublicFormCache
	logger         *zap.Logger
	now            func() time.Time
}

// NewFormService creates a new FormService instance.
func NewFormService(
	fr db.FormRepository,
	sr db.SubmissionRepository,
	ts TemplateService,
	as ActivityService,
	cache *PublicFormCache,
	logger *zap.Logger,
) FormService {
	return &formService{
		formRepo:       fr,
		submissionRepo: sr,
		templates:      ts,
		activity:       as,
		cache:          cache,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// actorEmail is the address collaborator grants are matched against. Only
// verified addresses count.
func actorEmail(actor *session.Session) string {
	return strings.ToLower(strings.TrimSpace(actor.VerifiedEmail()))
}

func isOwner(form *models.Form, actor *session.Session) bool {
	return actor != nil && actor.UID != "" && form.OwnerID == actor.UID
}

// canEdit reports whether actor owns or collaborates on form.
func canEdit(form *models.Form, actor *session.Session) bool {
	return isOwner(form, actor) || form.HasCollaborator(actorEmail(actor))
}

// canView extends canEdit with read access for the admin.
func canView(form *models.Form, actor *session.Session) bool {
	return canEdit(form, actor) || actor.IsAdmin()
}

func (s *formService) record(ctx context.Context, actor *session.Session, action, formID string, details map[string]interface{}) {
	entry := models.ActivityLog{
		Action:     action,
		TargetType: models.TargetForm,
		TargetID:   formID,
		Details:    details,
	}
	if actor != nil {
		entry.UserID = actor.UID
	}
	s.activity.Record(ctx, entry)
}

// loadForm fetches a form, translating storage not-found into ErrFormNotFound.
func loadForm(ctx context.Context, repo db.FormRepository, formID string) (*models.Form, error) {
	form, err := repo.GetByID(ctx, formID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: form with ID '%s'", ErrFormNotFound, formID)
		}
		return nil, fmt.Errorf("failed to get form '%s' from repository: %w", formID, err)
	}
	return form, nil
}

func (s *formService) loadEditable(ctx context.Context, actor *session.Session, formID string) (*models.Form, error) {
	form, err := loadForm(ctx, s.formRepo, formID)
	if err != nil {
		return nil, err
	}
	if !canEdit(form, actor) {
		return nil, fmt.Errorf("%w: user cannot edit form '%s'", ErrForbiddenAccess, formID)
	}
	return form, nil
}

func (s *formService) loadOwned(ctx context.Context, actor *session.Session, formID string) (*models.Form, error) {
	form, err := loadForm(ctx, s.formRepo, formID)
	if err != nil {
		return nil, err
	}
	if !isOwner(form, actor) {
		return nil, fmt.Errorf("%w: only the owner can do this on form '%s'", ErrForbiddenAccess, formID)
	}
	return form, nil
}

func (s *formService) create(ctx context.Context, actor *session.Session, req models.CreateFormRequest, action string, details map[string]interface{}) (*models.Form, error) {
	if actor == nil || actor.UID == "" {
		return nil, ErrForbiddenAccess
	}
	verr := NewValidationError()
	validateFormMeta(verr, req.Title, req.Description)
	fields, fieldErr := normalizeFields(req.Fields)
	for k, v := range fieldErr.Fields {
		verr.Add(k, v)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := s.now()
	form := &models.Form{
		OwnerID:       actor.UID,
		OwnerEmail:    strings.ToLower(strings.TrimSpace(actor.Email)),
		Title:         strings.TrimSpace(req.Title),
		Description:   strings.TrimSpace(req.Description),
		Fields:        fields,
		Theme:         models.DefaultTheme(),
		Settings:      models.DefaultSettings(),
		Collaborators: []string{},
		Status:        models.StatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if form.Fields == nil {
		form.Fields = []models.Field{}
	}
	if req.Theme != nil {
		form.Theme = *req.Theme
	}
	if req.Settings != nil {
		form.Settings = *req.Settings
	}

	formID, err := s.formRepo.Create(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("failed to create form in repository: %w", err)
	}
	form.ID = formID
	form.FillDerived()

	if details == nil {
		details = map[string]interface{}{}
	}
	details["title"] = form.Title
	details["fields"] = len(form.Fields)
	s.record(ctx, actor, action, form.ID, details)
	return form, nil
}

// CreateForm creates a draft form owned by actor.
func (s *formService) CreateForm(ctx context.Context, actor *session.Session, req models.CreateFormRequest) (*models.Form, error) {
	return s.create(ctx, actor, req, models.ActionFormCreate, nil)
}

// CreateGeneratedForm saves an AI generated form as a draft.
func (s *formService) CreateGeneratedForm(ctx context.Context, actor *session.Session, gen *GeneratedForm) (*models.Form, error) {
	if gen == nil {
		return nil, ErrGenerationFailed
	}
	req := models.CreateFormRequest{Title: gen.Title, Description: gen.Description, Fields: gen.Fields}
	return s.create(ctx, actor, req, models.ActionFormGenerate, map[string]interface{}{"topic": gen.Topic})
}

// CreateFromTemplate instantiates a starter template as a draft form.
func (s *formService) CreateFromTemplate(ctx context.Context, actor *session.Session, templateID string) (*models.Form, error) {
	tmpl, err := s.templates.Get(templateID)
	if err != nil {
		return nil, err
	}
	req := models.CreateFormRequest{
		Title:       tmpl.Form.Title,
		Description: tmpl.Form.Description,
		Fields:      tmpl.Fields(),
	}
	return s.create(ctx, actor, req, models.ActionFormCreate, map[string]interface{}{"template": tmpl.ID})
}

// GetForm returns a form the actor may view.
func (s *formService) GetForm(ctx context.Context, actor *session.Session, formID string) (*models.Form, error) {
	form, err := loadForm(ctx, s.formRepo, formID)
	if err != nil {
		return nil, err
	}
	if !canView(form, actor) {
		return nil, fmt.Errorf("%w: user cannot view form '%s'", ErrForbiddenAccess, formID)
	}
	return form, nil
}

// ListForms returns the forms owned by or shared with actor, filtered and sorted.
func (s *formService) ListForms(ctx context.Context, actor *session.Session, query models.FormListQuery) ([]*models.Form, error) {
	if actor == nil || actor.UID == "" {
		return nil, ErrForbiddenAccess
	}
	status := models.FormStatus(strings.ToLower(strings.TrimSpace(query.Status)))
	if status != "" && !status.Valid() {
		verr := NewValidationError()
		verr.Addf("status", "Unknown status %q", query.Status)
		return nil, verr
	}
	sortBy := strings.ToLower(strings.TrimSpace(query.Sort))
	switch sortBy {
	case "":
		sortBy = models.SortNewest
	case models.SortNewest, models.SortOldest, models.SortTitle, models.SortResponses, models.SortViews:
	default:
		verr := NewValidationError()
		verr.Addf("sort", "Unknown sort order %q", query.Sort)
		return nil, verr
	}

	owned, err := s.formRepo.ListByOwner(ctx, actor.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned forms for user '%s': %w", actor.UID, err)
	}
	var shared []*models.Form
	if email := actorEmail(actor); email != "" {
		shared, err = s.formRepo.ListSharedWith(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to list shared forms for user '%s': %w", actor.UID, err)
		}
	}

	search := strings.ToLower(strings.TrimSpace(query.Search))
	seen := make(map[string]bool, len(owned)+len(shared))
	forms := make([]*models.Form, 0, len(owned)+len(shared))
	for _, f := range append(owned, shared...) {
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		if status != "" && f.Status != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(f.Title), search) &&
			!strings.Contains(strings.ToLower(f.Description), search) {
			continue
		}
		f.FillDerived()
		forms = append(forms, f)
	}

	sortForms(forms, sortBy)

	limit := query.Limit
	if limit <= 0 || limit > maxListForms {
		limit = maxListForms
	}
	if len(forms) > limit {
		forms = forms[:limit]
	}
	return forms, nil
}

func sortForms(forms []*models.Form, sortBy string) {
	less := map[string]func(a, b *models.Form) bool{
		models.SortNewest:    func(a, b *models.Form) bool { return a.CreatedAt.After(b.CreatedAt) },
		models.SortOldest:    func(a, b *models.Form) bool { return a.CreatedAt.Before(b.CreatedAt) },
		models.SortTitle:     func(a, b *models.Form) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) },
		models.SortResponses: func(a, b *models.Form) bool { return a.Stats.Responses > b.Stats.Responses },
		models.SortViews:     func(a, b *models.Form) bool { return a.Stats.Views > b.Stats.Views },
	}[sortBy]
	sort.SliceStable(forms, func(i, j int) bool { return less(forms[i], forms[j]) })
}

// UpdateForm applies a partial update. Fields are replaced as a whole and re-validated.
func (s *formService) UpdateForm(ctx context.Context, actor *session.Session, formID string, req models.UpdateFormRequest) (*models.Form, error) {
	form, err := s.loadEditable(ctx, actor, formID)
	if err != nil {
		return nil, err
	}
	before := *form
	changed := []string{}

	if req.Title != nil {
		form.Title = strings.TrimSpace(*req.Title)
		changed = append(changed, "title")
	}
	if req.Description != nil {
		form.Description = strings.TrimSpace(*req.Description)
		changed = append(changed, "description")
	}
	verr := NewValidationError()
	validateFormMeta(verr, form.Title, form.Description)
	if req.Fields != nil {
		fields, fieldErr := normalizeFields(*req.Fields)
		for k, v := range fieldErr.Fields {
			verr.Add(k, v)
		}
		form.Fields = fields
		if form.Fields == nil {
			form.Fields = []models.Field{}
		}
		changed = append(changed, "fields")
	}
	if req.Theme != nil {
		form.Theme = *req.Theme
		changed = append(changed, "theme")
	}
	if req.Settings != nil {
		form.Settings = *req.Settings
		changed = append(changed, "settings")
	}
	if form.Status == models.StatusPublished && len(form.InputFields()) == 0 {
		verr.Add("fields", "A published form needs at least one question")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	form.UpdatedAt = s.now()
	if err := s.formRepo.Update(ctx, form); err != nil {
		return nil, fmt.Errorf("failed to update form '%s' in repository: %w", formID, err)
	}
	s.cache.Invalidate(ctx, &before, form)
	form.FillDerived()

	s.record(ctx, actor, models.ActionFormUpdate, form.ID, map[string]interface{}{"changed": changed})
	return form, nil
}

// DeleteForm removes a form and all of its submissions. Owner only.
func (s *formService) DeleteForm(ctx context.Context, actor *session.Session, formID string) error {
	form, err := s.loadOwned(ctx, actor, formID)
	if err != nil {
		return err
	}
	deleted, err := s.submissionRepo.DeleteAllForForm(ctx, formID)
	if err != nil {
		return fmt.Errorf("failed to delete submissions of form '%s': %w", formID, err)
	}
	if err := s.formRepo.Delete(ctx, formID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: form with ID '%s'", ErrFormNotFound, formID)
		}
		return fmt.Errorf("failed to delete form '%s' from repository: %w", formID, err)
	}
	s.cache.Invalidate(ctx, form)

	s.record(ctx, actor, models.ActionFormDelete, formID, map[string]interface{}{
		"title":              form.Title,
		"deletedSubmissions": deleted,
	})
	return nil
}

// PublishForm moves a draft or completed form to published and gives it a slug.
func (s *formService) PublishForm(ctx context.Context, actor *session.Session, formID string) (*models.Form, error) {
	form, err := s.loadEditable(ctx, actor, formID)
	if err != nil {
		return nil, err
	}
	if form.Status != models.StatusDraft && form.Status != models.StatusCompleted {
		return nil, fmt.Errorf("%w: cannot publish a %s form", ErrInvalidStatusTransition, form.Status)
	}
	if len(form.InputFields()) == 0 {
		verr := NewValidationError()
		verr.Add("fields", "Add at least one question before publishing")
		return nil, verr
	}
	if form.Slug == "" {
		slug, err := s.uniqueSlug(ctx, form)
		if err != nil {
			return nil, err
		}
		form.Slug = slug
	}

	now := s.now()
	from := form.Status
	form.Status = models.StatusPublished
	form.PublishedAt = &now
	form.UpdatedAt = now
	if err := s.formRepo.Update(ctx, form); err != nil {
		return nil, fmt.Errorf("failed to publish form '%s': %w", formID, err)
	}
	s.cache.Invalidate(ctx, form)
	form.FillDerived()

	s.record(ctx, actor, models.ActionFormPublish, formID, map[string]interface{}{"from": string(from), "slug": form.Slug})
	return form, nil
}

func (s *formService) uniqueSlug(ctx context.Context, form *models.Form) (string, error) {
	for i := 0; i < maxSlugAttempts; i++ {
		slug := candidateSlug(form.Title)
		taken, err := s.formRepo.SlugExists(ctx, slug, form.ID)
		if err != nil {
			return "", fmt.Errorf("failed to check slug availability: %w", err)
		}
		if !taken {
			return slug, nil
		}
	}
	return "", fmt.Errorf("%w: could not find a free slug", ErrSlugTaken)
}

// CompleteForm closes a published form to new responses.
func (s *formService) CompleteForm(ctx context.Context, actor *session.Session, formID string) (*models.Form, error) {
	return s.transition(ctx, actor, formID, models.StatusPublished, models.StatusCompleted, models.ActionFormComplete)
}

// UnpublishForm takes a published form back to draft.
func (s *formService) UnpublishForm(ctx context.Context, actor *session.Session, formID string) (*models.Form, error) {
	return s.transition(ctx, actor, formID, models.StatusPublished, models.StatusDraft, models.ActionFormUnpublish)
}

func (s *formService) transition(ctx context.Context, actor *session.Session, formID string, from, to models.FormStatus, action string) (*models.Form, error) {
	form, err := s.loadEditable(ctx, actor, formID)
	if err != nil {
		return nil, err
	}
	if form.Status != from {
		return nil, fmt.Errorf("%w: cannot move a %s form to %s", ErrInvalidStatusTransition, form.Status, to)
	}
	if err := s.formRepo.UpdateStatus(ctx, formID, to, nil); err != nil {
		return nil, fmt.Errorf("failed to set status of form '%s': %w", formID, err)
	}
	form.Status = to
	form.UpdatedAt = s.now()
	s.cache.Invalidate(ctx, form)
	form.FillDerived()

	s.record(ctx, actor, action, formID, map[string]interface{}{"from": string(from), "to": string(to)})
	return form, nil
}

// DuplicateForm copies a form into a new draft owned by actor.
func (s *formService) DuplicateForm(ctx context.Context, actor *session.Session, formID string) (*models.Form, error) {
	source, err := s.loadEditable(ctx, actor, formID)
	if err != nil {
		return nil, err
	}
	title := truncateRunes(copyTitlePrefix+source.Title, maxTitleLength)
	fields := make([]models.Field, len(source.Fields))
	copy(fields, source.Fields)
	theme, settings := source.Theme, source.Settings

	form, err := s.create(ctx, actor, models.CreateFormRequest{
		Title:       title,
		Description: source.Description,
		Fields:      fields,
		Theme:       &theme,
		Settings:    &settings,
	}, models.ActionFormDuplicate, map[string]interface{}{"sourceId": source.ID})
	if err != nil {
		return nil, err
	}
	return form, nil
}

// SetSlug assigns a custom public slug.
func (s *formService) SetSlug(ctx context.Context, actor *session.Session, formID, slug string) (*models.Form, error) {
	form, err := s.loadEditable(ctx, actor, formID)
	if err != nil {
		return nil, err
	}
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !validSlug(slug) {
		verr := NewValidationError()
		verr.Addf("slug", "Slugs are %d to %d lowercase letters, digits and dashes, and cannot be a reserved word", minSlugLength, maxSlugLength)
		return nil, verr
	}
	if slug == form.Slug {
		return form, nil
	}
	taken, err := s.formRepo.SlugExists(ctx, slug, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug availability: %w", err)
	}
	if taken {
		return nil, ErrSlugTaken
	}

	before := *form
	form.Slug = slug
	form.UpdatedAt = s.now()
	if err := s.formRepo.Update(ctx, form); err != nil {
		return nil, fmt.Errorf("failed to set slug of form '%s': %w", formID, err)
	}
	s.cache.Invalidate(ctx, &before, form)
	form.FillDerived()

	s.record(ctx, actor, models.ActionFormUpdate, formID, map[string]interface{}{"changed": []string{"slug"}, "slug": slug})
	return form, nil
}

// AddCollaborator shares a form with another account. Owner only.
func (s *formService) AddCollaborator(ctx context.Context, actor *session.Session, formID, email string) (*models.Form, error) {
	form, err := s.loadOwned(ctx, actor, formID)
	if err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if !isValidEmail(email) {
		verr := NewValidationError()
		verr.Add("email", ErrInvalidEmail.Error())
		return nil, verr
	}
	if email == form.OwnerEmail || strings.EqualFold(email, strings.TrimSpace(actor.Email)) {
		return nil, ErrCollaboratorIsOwner
	}
	if form.HasCollaborator(email) {
		form.FillDerived()
		return form, nil
	}

	form.Collaborators = append(form.Collaborators, email)
	form.UpdatedAt = s.now()
	if err := s.formRepo.Update(ctx, form); err != nil {
		return nil, fmt.Errorf("failed to add collaborator to form '%s': %w", formID, err)
	}
	form.FillDerived()

	s.record(ctx, actor, models.ActionFormShare, formID, map[string]interface{}{"collaborator": email})
	return form, nil
}

// RemoveCollaborator revokes a collaborator's access. Owner only.
func (s *formService) RemoveCollaborator(ctx context.Context, actor *session.Session, formID, email string) (*models.Form, error) {
	form, err := s.loadOwned(ctx, actor, formID)
	if err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if !form.HasCollaborator(email) {
		form.FillDerived()
		return form, nil
	}

	kept := make([]string, 0, len(form.Collaborators))
	for _, c := range form.Collaborators {
		if c != email {
			kept = append(kept, c)
		}
	}
	form.Collaborators = kept
	form.UpdatedAt = s.now()
	if err := s.formRepo.Update(ctx, form); err != nil {
		return nil, fmt.Errorf("failed to remove collaborator from form '%s': %w", formID, err)
	}
	form.FillDerived()

	s.record(ctx, actor, models.ActionFormUnshare, formID, map[string]interface{}{"collaborator": email})
	return form, nil
}
