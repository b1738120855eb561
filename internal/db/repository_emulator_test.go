package db

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formcraft-backend-go/internal/models"
)

// newEmulatorClient connects to the Firestore emulator or skips the test.
func newEmulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set; skipping Firestore repository tests")
	}
	projectID := fmt.Sprintf("formcraft-test-%d", time.Now().UnixNano())
	client, err := firestore.NewClient(context.Background(), projectID)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestFormRepository_Lifecycle(t *testing.T) {
	client := newEmulatorClient(t)
	ctx := context.Background()
	repo := NewFirestoreFormRepository(client)

	form := &models.Form{
		OwnerID:       "owner-1",
		Title:         "Feedback",
		Fields:        []models.Field{{ID: "q1", Kind: models.FieldText, Label: "Name"}},
		Theme:         models.DefaultTheme(),
		Settings:      models.DefaultSettings(),
		Collaborators: []string{"friend@example.com"},
		Status:        models.StatusDraft,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	id, err := repo.Create(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, id, form.ID)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Feedback", got.Title)
	assert.Equal(t, models.FieldText, got.Fields[0].Kind)

	require.NoError(t, repo.IncrementViews(ctx, id))
	require.NoError(t, repo.IncrementViews(ctx, id))
	require.NoError(t, repo.IncrementResponses(ctx, id))

	got.Title = "Feedback v2"
	got.Slug = "feedback"
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Feedback v2", got.Title)
	assert.EqualValues(t, 2, got.Stats.Views)
	assert.EqualValues(t, 1, got.Stats.Responses)
	assert.Equal(t, 50.0, got.Stats.CompletionRate)

	bySlug, err := repo.GetBySlug(ctx, "feedback")
	require.NoError(t, err)
	assert.Equal(t, id, bySlug.ID)

	taken, err := repo.SlugExists(ctx, "feedback", "")
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = repo.SlugExists(ctx, "feedback", id)
	require.NoError(t, err)
	assert.False(t, taken)

	shared, err := repo.ListSharedWith(ctx, "friend@example.com")
	require.NoError(t, err)
	assert.Len(t, shared, 1)

	now := time.Now().UTC()
	require.NoError(t, repo.UpdateStatus(ctx, id, models.StatusPublished, &now))
	published, err := repo.Count(ctx, models.StatusPublished)
	require.NoError(t, err)
	assert.EqualValues(t, 1, published)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmissionRepository_CreateListDelete(t *testing.T) {
	client := newEmulatorClient(t)
	ctx := context.Background()
	repo := NewFirestoreSubmissionRepository(client)

	for i := 0; i < 3; i++ {
		sub := &models.Submission{
			Answers:         map[string]interface{}{"q1": fmt.Sprintf("answer %d", i)},
			RespondentEmail: fmt.Sprintf("Person%d@Example.com", i),
		}
		id, err := repo.Create(ctx, "form-1", sub)
		require.NoError(t, err)
		assert.NotEmpty(t, id)
		assert.False(t, sub.SubmittedAt.IsZero())
	}

	subs, err := repo.ListByForm(ctx, "form-1")
	require.NoError(t, err)
	assert.Len(t, subs, 3)

	found, err := repo.ExistsForRespondent(ctx, "form-1", "", "person1@example.com")
	require.NoError(t, err)
	assert.True(t, found)
	found, err = repo.ExistsForRespondent(ctx, "form-1", "nobody", "")
	require.NoError(t, err)
	assert.False(t, found)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	deleted, err := repo.DeleteAllForForm(ctx, "form-1")
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	_, err = repo.GetByID(ctx, "form-1", subs[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	client := newEmulatorClient(t)
	ctx := context.Background()
	repo := NewFirestoreUserRepository(client)

	now := time.Now().UTC()
	user := &models.User{ID: "uid-1", Email: "Ada@Example.com", Role: models.RoleUser, CreatedAt: now, UpdatedAt: now, LastLoginAt: now}
	require.NoError(t, repo.Create(ctx, user))
	assert.ErrorIs(t, repo.Create(ctx, user), ErrAlreadyExists)

	byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", byEmail.ID)

	require.NoError(t, repo.SetRole(ctx, "uid-1", models.RoleAdmin))
	got, err := repo.GetByID(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContactRepositoryAndMailQueue(t *testing.T) {
	client := newEmulatorClient(t)
	ctx := context.Background()

	contacts := NewFirestoreContactRepository(client)
	id, err := contacts.Create(ctx, &models.ContactMessage{Name: "Bo", Email: "bo@example.com", Message: "hi", Status: models.ContactStatusNew})
	require.NoError(t, err)

	unread, err := contacts.CountUnread(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	require.NoError(t, contacts.MarkRead(ctx, id))
	unread, err = contacts.CountUnread(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, unread)
	assert.ErrorIs(t, contacts.MarkRead(ctx, "missing"), ErrNotFound)

	queue := NewFirestoreMailQueue(client, "mail")
	require.NoError(t, queue.Enqueue(ctx, models.MailMessage{To: []string{"bo@example.com"}, Message: models.MailContent{Subject: "Hello"}}))
	assert.Error(t, queue.Enqueue(ctx, models.MailMessage{}))

	docs, err := client.Collection("mail").Documents(ctx).GetAll()
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}
