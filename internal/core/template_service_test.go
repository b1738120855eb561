package core

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formcraft-backend-go/internal/models"
	"formcraft-backend-go/internal/templates"
)

func TestTemplateService(t *testing.T) {
	t.Parallel()
	svc, err := NewTemplateService()
	require.NoError(t, err)

	list := svc.List()
	require.NotEmpty(t, list)
	list[0].ID = "mutated"
	assert.NotEqual(t, "mutated", svc.List()[0].ID, "List returns a copy")

	tmpl, err := svc.Get("customer-feedback")
	require.NoError(t, err)
	assert.NotEmpty(t, tmpl.Form.Fields)

	_, err = svc.Get("missing")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestTemplateService_TemplatesAreValidForms(t *testing.T) {
	t.Parallel()
	svc, err := NewTemplateService()
	require.NoError(t, err)

	for _, tmpl := range svc.List() {
		_, verr := normalizeFields(tmpl.Fields())
		assert.False(t, verr.HasErrors(), "%s: %v", tmpl.ID, verr.Fields)
	}
	custom := NewTemplateServiceFrom([]templates.Template{{ID: "x", Name: "X"}})
	assert.Len(t, custom.List(), 1)
}

type publisherFunc func(ctx context.Context, queue string, body []byte) error

func (f publisherFunc) Publish(ctx context.Context, queue string, body []byte) error {
	return f(ctx, queue, body)
}

func TestBrokerMailQueue_Enqueue(t *testing.T) {
	t.Parallel()
	var gotQueue string
	var got models.MailMessage
	q := NewBrokerMailQueue(publisherFunc(func(_ context.Context, queue string, body []byte) error {
		gotQueue = queue
		return json.Unmarshal(body, &got)
	}), "mail")

	err := q.Enqueue(context.Background(), models.MailMessage{
		To:      []string{"a@example.com"},
		Message: models.MailContent{Subject: "Hi", Text: "Body"},
	})
	require.NoError(t, err)
	assert.Equal(t, "mail", gotQueue)
	assert.Equal(t, []string{"a@example.com"}, got.To)
	assert.Equal(t, "Hi", got.Message.Subject)
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.CreatedAt.IsZero())

	assert.Error(t, q.Enqueue(context.Background(), models.MailMessage{}))

	failing := NewBrokerMailQueue(publisherFunc(func(context.Context, string, []byte) error {
		return errors.New("channel closed")
	}), "mail")
	assert.Error(t, failing.Enqueue(context.Background(), models.MailMessage{To: []string{"a@example.com"}}))
}
