package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"formcraft-backend-go/internal/models"
)

func TestNotificationService_NotifyNewSubmission(t *testing.T) {
	t.Parallel()
	queue := &MailQueueMock{EnqueueFunc: func(context.Context, models.MailMessage) error { return nil }}
	svc := NewNotificationService(queue, testAdminEmail, "https://formcraft.app/", zap.NewNop())
	form := &models.Form{
		ID:         "f1",
		OwnerEmail: "owner@example.com",
		Title:      "Bake <sale>",
		Fields:     sampleFields(),
		Settings:   models.FormSettings{NotifyOwner: true, SendRespondentCopy: true},
	}
	sub := &models.Submission{
		RespondentEmail: "resp@example.com",
		Answers:         map[string]interface{}{"name": "Ada & Co", "score": float64(5)},
	}

	svc.NotifyNewSubmission(context.Background(), form, sub)

	calls := queue.EnqueueCalls()
	require.Len(t, calls, 2)

	owner := calls[0].Msg
	assert.Equal(t, []string{"owner@example.com"}, owner.To)
	assert.Equal(t, "resp@example.com", owner.ReplyTo)
	assert.Equal(t, "New response to Bake <sale>", owner.Message.Subject)
	assert.Contains(t, owner.Message.Text, "Name: Ada & Co")
	assert.Contains(t, owner.Message.Text, "https://formcraft.app/forms/f1/responses")
	assert.Contains(t, owner.Message.HTML, "Ada &amp; Co")
	assert.Contains(t, owner.Message.HTML, "Bake &lt;sale&gt;")
	assert.NotContains(t, owner.Message.Text, "Email:", "unanswered fields are left out")

	copyMail := calls[1].Msg
	assert.Equal(t, []string{"resp@example.com"}, copyMail.To)
	assert.NotContains(t, copyMail.Message.Text, "/responses")
}

func TestNotificationService_RespectsSettings(t *testing.T) {
	t.Parallel()
	queue := &MailQueueMock{EnqueueFunc: func(context.Context, models.MailMessage) error { return nil }}
	svc := NewNotificationService(queue, testAdminEmail, "https://formcraft.app", zap.NewNop())
	form := &models.Form{ID: "f1", OwnerEmail: "owner@example.com", Title: "Quiet", Settings: models.FormSettings{SendRespondentCopy: true}}

	svc.NotifyNewSubmission(context.Background(), form, &models.Submission{})
	assert.Empty(t, queue.EnqueueCalls(), "no owner mail when disabled and no copy without an address")
}

func TestNotificationService_NotifyContact(t *testing.T) {
	t.Parallel()
	queue := &MailQueueMock{EnqueueFunc: func(context.Context, models.MailMessage) error { return nil }}
	svc := NewNotificationService(queue, testAdminEmail, "https://formcraft.app", zap.NewNop())

	svc.NotifyContact(context.Background(), &models.ContactMessage{Name: "Ada", Email: "ada@example.com", Subject: "Hello", Message: "Hi there"})

	calls := queue.EnqueueCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{testAdminEmail}, calls[0].Msg.To)
	assert.Equal(t, "ada@example.com", calls[0].Msg.ReplyTo)
	assert.Equal(t, "New contact message: Hello", calls[0].Msg.Message.Subject)
	assert.Contains(t, calls[0].Msg.Message.Text, "Message: Hi there")
}
