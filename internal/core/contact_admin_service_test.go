package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"formcraft-backend-go/internal/models"
)

func TestContactService_Submit(t *testing.T) {
	t.Parallel()
	repo := newFakeContactRepo()
	queue := &MailQueueMock{EnqueueFunc: func(context.Context, models.MailMessage) error { return nil }}
	activityRepo, activity := newTestActivity()
	svc := NewContactService(repo, NewNotificationService(queue, testAdminEmail, "", zap.NewNop()), activity, zap.NewNop())

	msg, err := svc.Submit(context.Background(), models.ContactRequest{Name: " Ada ", Email: "ADA@example.com", Message: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", msg.ID)
	assert.Equal(t, "ada@example.com", msg.Email)
	assert.Equal(t, models.ContactStatusNew, msg.Status)
	assert.Len(t, queue.EnqueueCalls(), 1)
	assert.Equal(t, []string{models.ActionContactMessageNew}, activityRepo.actions())

	_, err = svc.Submit(context.Background(), models.ContactRequest{Name: "", Email: "bad", Message: strings.Repeat("x", maxContactMessage+1)})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 3)

	require.NoError(t, svc.MarkRead(context.Background(), "msg-1"))
	unread, err := repo.CountUnread(context.Background())
	require.NoError(t, err)
	assert.Zero(t, unread)
	assert.ErrorIs(t, svc.MarkRead(context.Background(), "msg-404"), ErrContactNotFound)
}

func TestAdminService_Overview(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	users := newFakeUserRepo()
	forms := newFakeFormRepo()
	subs := newFakeSubmissionRepo()
	contacts := newFakeContactRepo()
	_, activity := newTestActivity()

	require.NoError(t, users.Create(ctx, &models.User{ID: "u1", Email: "a@example.com"}))
	require.NoError(t, users.Create(ctx, &models.User{ID: "u2", Email: "b@example.com"}))
	published := publishedForm(forms)
	forms.put(&models.Form{OwnerID: "u1", Title: "Draft", Status: models.StatusDraft})
	_, err := subs.Create(ctx, published.ID, &models.Submission{})
	require.NoError(t, err)
	_, err = contacts.Create(ctx, &models.ContactMessage{Status: models.ContactStatusNew})
	require.NoError(t, err)
	_, err = contacts.Create(ctx, &models.ContactMessage{Status: models.ContactStatusRead})
	require.NoError(t, err)

	svc := NewAdminService(users, forms, subs, contacts, activity, zap.NewNop())
	overview, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, &AdminOverview{Users: 2, Forms: 2, PublishedForms: 1, Submissions: 1, UnreadContacts: 1}, overview)
}

func TestAdminService_ListActivity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	activityRepo, activity := newTestActivity()
	activity.Record(ctx, models.ActivityLog{UserID: "u1", Action: models.ActionFormCreate})
	activity.Record(ctx, models.ActivityLog{UserID: "u2", Action: models.ActionFormDelete})
	svc := NewAdminService(newFakeUserRepo(), newFakeFormRepo(), newFakeSubmissionRepo(), newFakeContactRepo(), activity, zap.NewNop())

	all, err := svc.ListActivity(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, models.ActionFormDelete, all[0].Action, "newest first")

	mine, err := svc.ListActivity(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.ActionFormCreate, mine[0].Action)

	forms, err := svc.ListForms(ctx, "", 10)
	require.NoError(t, err)
	assert.NotNil(t, forms)
	assert.Len(t, activityRepo.actions(), 2)
}

func TestAdminService_ListForms_PublishedFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	forms := newFakeFormRepo()
	live := publishedForm(forms)
	forms.put(&models.Form{OwnerID: "owner-1", Title: "Draft", Status: models.StatusDraft})
	completed := publishedForm(forms)
	completed.Status = models.StatusCompleted
	forms.put(completed)
	_, activity := newTestActivity()
	svc := NewAdminService(newFakeUserRepo(), forms, newFakeSubmissionRepo(), newFakeContactRepo(), activity, zap.NewNop())

	all, err := svc.ListForms(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	published, err := svc.ListForms(ctx, " Published ", 10)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, live.ID, published[0].ID, "completed forms drop out of the published listing")

	_, err = svc.ListForms(ctx, "archived", 10)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestActivityService_RecordFillsClientInfo(t *testing.T) {
	t.Parallel()
	repo, activity := newTestActivity()
	ctx := WithClientInfo(context.Background(), ClientInfo{IPAddress: "203.0.113.7", UserAgent: "test-agent"})

	activity.Record(ctx, models.ActivityLog{Action: models.ActionUserLogin})
	entries, err := repo.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "203.0.113.7", entries[0].IPAddress)
	assert.Equal(t, "test-agent", entries[0].UserAgent)

	repo.createErr = errors.New("down")
	assert.NotPanics(t, func() { activity.Record(ctx, models.ActivityLog{Action: models.ActionUserLogin}) })
}
