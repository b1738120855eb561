package core

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"formcraft-backend-go/internal/db"
	"formcraft-backend-go/internal/models"
)

// resolveByIDOrSlug looks a form up by document id first, then by slug.
func resolveByIDOrSlug(ctx context.Context, repo db.FormRepository, idOrSlug string) (*models.Form, error) {
	if idOrSlug == "" {
		return nil, ErrFormNotFound
	}
	form, err := repo.GetByID(ctx, idOrSlug)
	if err == nil {
		return form, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to get form '%s': %w", idOrSlug, err)
	}
	form, err = repo.GetBySlug(ctx, idOrSlug)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: no form with id or slug '%s'", ErrFormNotFound, idOrSlug)
		}
		return nil, fmt.Errorf("failed to get form by slug '%s': %w", idOrSlug, err)
	}
	return form, nil
}

// ensurePublished hides drafts and reports completed forms as closed.
func ensurePublished(form *models.Form) error {
	switch form.Status {
	case models.StatusPublished:
		return nil
	case models.StatusCompleted:
		return &ClosedFormError{FormID: form.ID, Title: form.Title}
	default:
		return fmt.Errorf("%w: form '%s' is not published", ErrFormNotFound, form.ID)
	}
}

// publicFormService implements the PublicFormService interface.
type publicFormService struct {
	formRepo db.FormRepository
	cache    *PublicFormCache
	logger   *zap.Logger
	shuffle  func(n int, swap func(i, j int))
}

// NewPublicFormService creates a new PublicFormService instance.
func NewPublicFormService(fr db.FormRepository, cache *PublicFormCache, logger *zap.Logger) PublicFormService {
	return &publicFormService{formRepo: fr, cache: cache, logger: logger, shuffle: rand.Shuffle}
}

// GetPublishedForm returns the respondent view of a published form and counts one view.
func (s *publicFormService) GetPublishedForm(ctx context.Context, idOrSlug string) (*models.PublicForm, error) {
	form, cached := s.cache.Get(ctx, idOrSlug)
	if cached && form.Status != models.StatusPublished {
		// Stale entry; the repository is authoritative for status.
		s.cache.Invalidate(ctx, form)
		cached = false
	}
	if !cached {
		var err error
		form, err = resolveByIDOrSlug(ctx, s.formRepo, idOrSlug)
		if err != nil {
			return nil, err
		}
		if err := ensurePublished(form); err != nil {
			return nil, err
		}
		s.cache.Put(ctx, form)
		if err := s.confirmCached(ctx, form); err != nil {
			return nil, err
		}
	}

	if err := s.formRepo.IncrementViews(ctx, form.ID); err != nil {
		s.logger.Warn("Failed to count form view", zap.String("formID", form.ID), zap.Error(err))
	}

	public := form.ToPublic()
	if form.Settings.ShuffleQuestions {
		s.shuffleInputs(public.Fields)
	}
	return &public, nil
}

// confirmCached re-reads the status of a form just written to the cache. A
// status change that invalidated the cache between the read and the write
// would otherwise leave the old published copy cached until it expires.
func (s *publicFormService) confirmCached(ctx context.Context, form *models.Form) error {
	current, err := s.formRepo.GetByID(ctx, form.ID)
	if err != nil {
		s.cache.Invalidate(ctx, form)
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: form '%s' was deleted", ErrFormNotFound, form.ID)
		}
		s.logger.Warn("Failed to confirm cached form status", zap.String("formID", form.ID), zap.Error(err))
		return nil
	}
	if current.Status != models.StatusPublished {
		s.cache.Invalidate(ctx, form, current)
		return ensurePublished(current)
	}
	return nil
}

// shuffleInputs permutes input fields among their own positions so headings
// and content blocks stay where the author put them.
func (s *publicFormService) shuffleInputs(fields []models.Field) {
	var idx []int
	for i, f := range fields {
		if f.Kind.IsInput() {
			idx = append(idx, i)
		}
	}
	s.shuffle(len(idx), func(i, j int) {
		fields[idx[i]], fields[idx[j]] = fields[idx[j]], fields[idx[i]]
	})
}
