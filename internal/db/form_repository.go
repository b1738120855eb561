package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"formcraft-backend-go/internal/models"
)

const formsCollection = "forms"

// firestoreFormRepository implements FormRepository using Firestore.
type firestoreFormRepository struct {
	client *firestore.Client
}

// NewFirestoreFormRepository creates a new form repository.
func NewFirestoreFormRepository(client *firestore.Client) FormRepository {
	return &firestoreFormRepository{client: client}
}

func setFormID(f *models.Form, id string) {
	f.ID = id
	f.FillDerived()
}

// Create adds a new form with an auto-generated ID and sets form.ID.
func (r *firestoreFormRepository) Create(ctx context.Context, form *models.Form) (string, error) {
	docRef := r.client.Collection(formsCollection).NewDoc()
	form.ID = docRef.ID
	if _, err := docRef.Create(ctx, form); err != nil {
		return "", fmt.Errorf("failed to create form: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves a form by document ID.
func (r *firestoreFormRepository) GetByID(ctx context.Context, formID string) (*models.Form, error) {
	if formID == "" {
		return nil, errors.New("formID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(formsCollection).Doc(formID).Get(ctx)
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("form '%s'", formID))
	}
	var form models.Form
	if err := docSnap.DataTo(&form); err != nil {
		return nil, fmt.Errorf("failed to decode form data for ID '%s': %w", formID, err)
	}
	setFormID(&form, docSnap.Ref.ID)
	return &form, nil
}

// GetBySlug retrieves a form by its public slug.
func (r *firestoreFormRepository) GetBySlug(ctx context.Context, slug string) (*models.Form, error) {
	if slug == "" {
		return nil, errors.New("slug cannot be empty for GetBySlug operation")
	}
	iter := r.client.Collection(formsCollection).Where("slug", "==", slug).Limit(1).Documents(ctx)
	forms, err := decodeAll(iter, setFormID)
	if err != nil {
		return nil, fmt.Errorf("failed to query form by slug '%s': %w", slug, err)
	}
	if len(forms) == 0 {
		return nil, fmt.Errorf("form with slug '%s' not found: %w", slug, ErrNotFound)
	}
	return forms[0], nil
}

// ListByOwner returns every form owned by a user. Ordering is left to the caller.
func (r *firestoreFormRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Form, error) {
	if ownerID == "" {
		return nil, errors.New("ownerID cannot be empty for ListByOwner operation")
	}
	iter := r.client.Collection(formsCollection).Where("ownerId", "==", ownerID).Documents(ctx)
	forms, err := decodeAll(iter, setFormID)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms for owner '%s': %w", ownerID, err)
	}
	return forms, nil
}

// ListSharedWith returns forms listing email as a collaborator.
func (r *firestoreFormRepository) ListSharedWith(ctx context.Context, email string) ([]*models.Form, error) {
	if email == "" {
		return nil, nil
	}
	iter := r.client.Collection(formsCollection).Where("collaborators", "array-contains", email).Documents(ctx)
	forms, err := decodeAll(iter, setFormID)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms shared with '%s': %w", email, err)
	}
	return forms, nil
}

// ListPublished returns published forms.
func (r *firestoreFormRepository) ListPublished(ctx context.Context, limit int) ([]*models.Form, error) {
	iter := r.client.Collection(formsCollection).
		Where("status", "==", string(models.StatusPublished)).
		Limit(normalizeLimit(limit, defaultListLimit)).
		Documents(ctx)
	forms, err := decodeAll(iter, setFormID)
	if err != nil {
		return nil, fmt.Errorf("failed to list published forms: %w", err)
	}
	return forms, nil
}

// ListAll returns the most recently created forms across all owners.
func (r *firestoreFormRepository) ListAll(ctx context.Context, limit int) ([]*models.Form, error) {
	iter := r.client.Collection(formsCollection).
		OrderBy("createdAt", firestore.Desc).
		Limit(normalizeLimit(limit, defaultListLimit)).
		Documents(ctx)
	forms, err := decodeAll(iter, setFormID)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	return forms, nil
}

// Update writes the editable fields of a form. Counters are left untouched so
// concurrent view and response increments are not lost.
func (r *firestoreFormRepository) Update(ctx context.Context, form *models.Form) error {
	if form.ID == "" {
		return errors.New("form ID cannot be empty for Update operation")
	}
	collaborators := form.Collaborators
	if collaborators == nil {
		collaborators = []string{}
	}
	_, err := r.client.Collection(formsCollection).Doc(form.ID).Update(ctx, []firestore.Update{
		{Path: "title", Value: form.Title},
		{Path: "description", Value: form.Description},
		{Path: "slug", Value: form.Slug},
		{Path: "fields", Value: form.Fields},
		{Path: "theme", Value: form.Theme},
		{Path: "settings", Value: form.Settings},
		{Path: "collaborators", Value: collaborators},
		{Path: "status", Value: string(form.Status)},
		{Path: "publishedAt", Value: form.PublishedAt},
		{Path: "updatedAt", Value: form.UpdatedAt},
	})
	if err != nil {
		return translateError(err, fmt.Sprintf("form '%s'", form.ID))
	}
	return nil
}

// UpdateStatus changes the lifecycle status of a form.
func (r *firestoreFormRepository) UpdateStatus(ctx context.Context, formID string, status models.FormStatus, publishedAt *time.Time) error {
	updates := []firestore.Update{
		{Path: "status", Value: string(status)},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	}
	if publishedAt != nil {
		updates = append(updates, firestore.Update{Path: "publishedAt", Value: *publishedAt})
	}
	if _, err := r.client.Collection(formsCollection).Doc(formID).Update(ctx, updates); err != nil {
		return translateError(err, fmt.Sprintf("form '%s'", formID))
	}
	return nil
}

// Delete removes the form document. Submissions must be removed by the caller first.
func (r *firestoreFormRepository) Delete(ctx context.Context, formID string) error {
	if formID == "" {
		return errors.New("formID cannot be empty for Delete operation")
	}
	if _, err := r.client.Collection(formsCollection).Doc(formID).Delete(ctx, firestore.Exists); err != nil {
		return translateError(err, fmt.Sprintf("form '%s'", formID))
	}
	return nil
}

// IncrementViews atomically adds one view.
func (r *firestoreFormRepository) IncrementViews(ctx context.Context, formID string) error {
	return r.increment(ctx, formID, "stats.views")
}

// IncrementResponses atomically adds one response.
func (r *firestoreFormRepository) IncrementResponses(ctx context.Context, formID string) error {
	return r.increment(ctx, formID, "stats.responses")
}

func (r *firestoreFormRepository) increment(ctx context.Context, formID, path string) error {
	_, err := r.client.Collection(formsCollection).Doc(formID).Update(ctx, []firestore.Update{
		{Path: path, Value: firestore.Increment(1)},
	})
	if err != nil {
		return translateError(err, fmt.Sprintf("form '%s'", formID))
	}
	return nil
}

// SlugExists reports whether a form other than excludeFormID uses slug.
func (r *firestoreFormRepository) SlugExists(ctx context.Context, slug, excludeFormID string) (bool, error) {
	iter := r.client.Collection(formsCollection).Where("slug", "==", slug).Limit(2).Documents(ctx)
	forms, err := decodeAll(iter, setFormID)
	if err != nil {
		return false, fmt.Errorf("failed to check slug '%s': %w", slug, err)
	}
	for _, f := range forms {
		if f.ID != excludeFormID {
			return true, nil
		}
	}
	return false, nil
}

// Count returns the number of forms, optionally restricted to a status.
func (r *firestoreFormRepository) Count(ctx context.Context, status models.FormStatus) (int64, error) {
	q := r.client.Collection(formsCollection).Query
	if status != "" {
		q = q.Where("status", "==", string(status))
	}
	n, err := countQuery(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("failed to count forms: %w", err)
	}
	return n, nil
}
