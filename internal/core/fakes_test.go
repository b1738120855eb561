package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"formcraft-backend-go/internal/db"
	"formcraft-backend-go/internal/models"
	"formcraft-backend-go/internal/session"
)

// In-memory repositories used by the service tests.

func cloneForm(f *models.Form) *models.Form {
	c := *f
	c.Fields = append([]models.Field(nil), f.Fields...)
	c.Collaborators = append([]string(nil), f.Collaborators...)
	return &c
}

type fakeFormRepo struct {
	mu        sync.Mutex
	forms     map[string]*models.Form
	nextID    int
	updateErr error
	takenSlug map[string]bool
	views     int
}

func newFakeFormRepo() *fakeFormRepo {
	return &fakeFormRepo{forms: map[string]*models.Form{}, takenSlug: map[string]bool{}}
}

var _ db.FormRepository = (*fakeFormRepo)(nil)

func (r *fakeFormRepo) put(f *models.Form) *models.Form {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.ID == "" {
		r.nextID++
		f.ID = fmt.Sprintf("form-%d", r.nextID)
	}
	r.forms[f.ID] = cloneForm(f)
	return f
}

func (r *fakeFormRepo) get(id string) *models.Form {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.forms[id]
	if !ok {
		return nil
	}
	return cloneForm(f)
}

func (r *fakeFormRepo) Create(_ context.Context, form *models.Form) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := fmt.Sprintf("form-%d", r.nextID)
	c := cloneForm(form)
	c.ID = id
	r.forms[id] = c
	return id, nil
}

func (r *fakeFormRepo) GetByID(_ context.Context, formID string) (*models.Form, error) {
	if f := r.get(formID); f != nil {
		f.FillDerived()
		return f, nil
	}
	return nil, db.ErrNotFound
}

func (r *fakeFormRepo) GetBySlug(_ context.Context, slug string) (*models.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.forms {
		if f.Slug == slug {
			return cloneForm(f), nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *fakeFormRepo) filter(keep func(*models.Form) bool) []*models.Form {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Form
	for _, f := range r.forms {
		if keep(f) {
			out = append(out, cloneForm(f))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeFormRepo) ListByOwner(_ context.Context, ownerID string) ([]*models.Form, error) {
	return r.filter(func(f *models.Form) bool { return f.OwnerID == ownerID }), nil
}

func (r *fakeFormRepo) ListSharedWith(_ context.Context, email string) ([]*models.Form, error) {
	return r.filter(func(f *models.Form) bool { return f.HasCollaborator(email) }), nil
}

func (r *fakeFormRepo) ListPublished(_ context.Context, limit int) ([]*models.Form, error) {
	return r.filter(func(f *models.Form) bool { return f.Status == models.StatusPublished }), nil
}

func (r *fakeFormRepo) ListAll(_ context.Context, limit int) ([]*models.Form, error) {
	return r.filter(func(*models.Form) bool { return true }), nil
}

func (r *fakeFormRepo) Update(_ context.Context, form *models.Form) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.forms[form.ID]
	if !ok {
		return db.ErrNotFound
	}
	c := cloneForm(form)
	c.Stats = stored.Stats
	r.forms[form.ID] = c
	return nil
}

func (r *fakeFormRepo) UpdateStatus(_ context.Context, formID string, status models.FormStatus, publishedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.forms[formID]
	if !ok {
		return db.ErrNotFound
	}
	f.Status = status
	if publishedAt != nil {
		f.PublishedAt = publishedAt
	}
	return nil
}

func (r *fakeFormRepo) Delete(_ context.Context, formID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.forms[formID]; !ok {
		return db.ErrNotFound
	}
	delete(r.forms, formID)
	return nil
}

func (r *fakeFormRepo) IncrementViews(_ context.Context, formID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.forms[formID]
	if !ok {
		return db.ErrNotFound
	}
	f.Stats.Views++
	r.views++
	return nil
}

func (r *fakeFormRepo) IncrementResponses(_ context.Context, formID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.forms[formID]
	if !ok {
		return db.ErrNotFound
	}
	f.Stats.Responses++
	return nil
}

func (r *fakeFormRepo) SlugExists(_ context.Context, slug, excludeFormID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.takenSlug[slug] {
		return true, nil
	}
	for id, f := range r.forms {
		if f.Slug == slug && id != excludeFormID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFormRepo) Count(_ context.Context, status models.FormStatus) (int64, error) {
	return int64(len(r.filter(func(f *models.Form) bool { return status == "" || f.Status == status }))), nil
}

type fakeSubmissionRepo struct {
	mu     sync.Mutex
	subs   map[string]map[string]*models.Submission
	order  []string
	nextID int
	now    time.Time
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{
		subs: map[string]map[string]*models.Submission{},
		now:  time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

var _ db.SubmissionRepository = (*fakeSubmissionRepo)(nil)

func (r *fakeSubmissionRepo) Create(_ context.Context, formID string, submission *models.Submission) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := fmt.Sprintf("sub-%d", r.nextID)
	r.now = r.now.Add(time.Minute)
	c := *submission
	c.ID, c.FormID, c.SubmittedAt = id, formID, r.now
	if r.subs[formID] == nil {
		r.subs[formID] = map[string]*models.Submission{}
	}
	r.subs[formID][id] = &c
	r.order = append(r.order, id)
	submission.ID, submission.FormID, submission.SubmittedAt = id, formID, r.now
	return id, nil
}

// ListByForm returns newest first, like the Firestore query.
func (r *fakeSubmissionRepo) ListByForm(_ context.Context, formID string) ([]*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Submission
	for _, s := range r.subs[formID] {
		c := *s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (r *fakeSubmissionRepo) GetByID(_ context.Context, formID, submissionID string) (*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[formID][submissionID]
	if !ok {
		return nil, db.ErrNotFound
	}
	c := *s
	return &c, nil
}

func (r *fakeSubmissionRepo) Delete(_ context.Context, formID, submissionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[formID][submissionID]; !ok {
		return db.ErrNotFound
	}
	delete(r.subs[formID], submissionID)
	return nil
}

func (r *fakeSubmissionRepo) DeleteAllForForm(_ context.Context, formID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.subs[formID])
	delete(r.subs, formID)
	return n, nil
}

func (r *fakeSubmissionRepo) ExistsForRespondent(_ context.Context, formID, uid, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs[formID] {
		if (uid != "" && s.RespondentUID == uid) || (email != "" && s.RespondentEmail == email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSubmissionRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, subs := range r.subs {
		n += int64(len(subs))
	}
	return n, nil
}

func (r *fakeSubmissionRepo) countFor(formID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs[formID])
}

type fakeUserRepo struct {
	mu         sync.Mutex
	users      map[string]*models.User
	createErr  error
	fullWrites int
	loginOnly  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

var _ db.UserRepository = (*fakeUserRepo)(nil)

func (r *fakeUserRepo) GetByID(_ context.Context, userID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(email) {
			c := *u
			return &c, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; ok {
		return db.ErrAlreadyExists
	}
	c := *user
	r.users[user.ID] = &c
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return db.ErrNotFound
	}
	c := *user
	r.users[user.ID] = &c
	r.fullWrites++
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return db.ErrNotFound
	}
	u.LastLoginAt = at
	u.UpdatedAt = at
	r.loginOnly++
	return nil
}

func (r *fakeUserRepo) SetRole(_ context.Context, userID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return db.ErrNotFound
	}
	u.Role = role
	return nil
}

func (r *fakeUserRepo) List(context.Context, int) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		c := *u
		out = append(out, &c)
	}
	return out, nil
}

func (r *fakeUserRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

type fakeActivityRepo struct {
	mu        sync.Mutex
	entries   []models.ActivityLog
	createErr error
}

var _ db.ActivityRepository = (*fakeActivityRepo)(nil)

func (r *fakeActivityRepo) Create(_ context.Context, entry models.ActivityLog) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeActivityRepo) List(_ context.Context, limit int) ([]*models.ActivityLog, error) {
	return r.ListByUser(context.Background(), "", limit)
}

func (r *fakeActivityRepo) ListByUser(_ context.Context, userID string, limit int) ([]*models.ActivityLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ActivityLog
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if userID != "" && e.UserID != userID {
			continue
		}
		out = append(out, &e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeActivityRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakeContactRepo struct {
	mu     sync.Mutex
	msgs   map[string]*models.ContactMessage
	nextID int
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{msgs: map[string]*models.ContactMessage{}}
}

var _ db.ContactRepository = (*fakeContactRepo)(nil)

func (r *fakeContactRepo) Create(_ context.Context, msg *models.ContactMessage) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := fmt.Sprintf("msg-%d", r.nextID)
	msg.ID = id
	c := *msg
	r.msgs[id] = &c
	return id, nil
}

func (r *fakeContactRepo) List(context.Context, int) ([]*models.ContactMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ContactMessage
	for _, m := range r.msgs {
		c := *m
		out = append(out, &c)
	}
	return out, nil
}

func (r *fakeContactRepo) MarkRead(_ context.Context, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.msgs[messageID]
	if !ok {
		return db.ErrNotFound
	}
	m.Status = models.ContactStatusRead
	return nil
}

func (r *fakeContactRepo) CountUnread(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.msgs {
		if m.Status == models.ContactStatusNew {
			n++
		}
	}
	return n, nil
}

// Shared fixtures.

const testAdminEmail = "admin@formcraft.app"

func ownerSession() *session.Session {
	return &session.Session{UID: "owner-1", Email: "owner@example.com", EmailVerified: true, Role: models.RoleUser}
}

func collaboratorSession() *session.Session {
	return &session.Session{UID: "collab-1", Email: "collab@example.com", EmailVerified: true, Role: models.RoleUser}
}

func strangerSession() *session.Session {
	return &session.Session{UID: "stranger-1", Email: "stranger@example.com", EmailVerified: true, Role: models.RoleUser}
}

func adminSession() *session.Session {
	return &session.Session{UID: "admin-1", Email: testAdminEmail, EmailVerified: true, Role: models.RoleAdmin}
}

func floatPtr(f float64) *float64 { return &f }

func strPtr(s string) *string { return &s }

func sampleFields() []models.Field {
	return []models.Field{
		{ID: "intro", Kind: models.FieldHeading, Label: "About you"},
		{ID: "name", Kind: models.FieldText, Label: "Name", Required: true},
		{ID: "email", Kind: models.FieldEmail, Label: "Email"},
		{ID: "color", Kind: models.FieldSelect, Label: "Favourite colour", Options: []string{"Red", "Blue"}},
		{ID: "score", Kind: models.FieldRating, Label: "Score"},
	}
}

func publishedForm(repo *fakeFormRepo) *models.Form {
	return repo.put(&models.Form{
		OwnerID:       "owner-1",
		OwnerEmail:    "owner@example.com",
		Title:         "Customer survey",
		Slug:          "customer-survey",
		Fields:        sampleFields(),
		Theme:         models.DefaultTheme(),
		Settings:      models.DefaultSettings(),
		Collaborators: []string{"collab@example.com"},
		Status:        models.StatusPublished,
	})
}

func newTestActivity() (*fakeActivityRepo, ActivityService) {
	repo := &fakeActivityRepo{}
	return repo, NewActivityService(repo, zap.NewNop())
}
