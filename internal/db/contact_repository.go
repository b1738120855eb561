package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"formcraft-backend-go/internal/models"
)

const contactMessagesCollection = "contact_messages"

type firestoreContactRepository struct {
	client *firestore.Client
}

// NewFirestoreContactRepository creates a new contact message repository.
func NewFirestoreContactRepository(client *firestore.Client) ContactRepository {
	return &firestoreContactRepository{client: client}
}

func (r *firestoreContactRepository) Create(ctx context.Context, msg *models.ContactMessage) (string, error) {
	docRef := r.client.Collection(contactMessagesCollection).NewDoc()
	wr, err := docRef.Create(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("failed to create contact message: %w", err)
	}
	msg.ID = docRef.ID
	msg.CreatedAt = wr.UpdateTime
	return docRef.ID, nil
}

func (r *firestoreContactRepository) List(ctx context.Context, limit int) ([]*models.ContactMessage, error) {
	iter := r.client.Collection(contactMessagesCollection).
		OrderBy("createdAt", firestore.Desc).
		Limit(normalizeLimit(limit, defaultListLimit)).
		Documents(ctx)
	msgs, err := decodeAll(iter, func(m *models.ContactMessage, id string) { m.ID = id })
	if err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}
	return msgs, nil
}

func (r *firestoreContactRepository) MarkRead(ctx context.Context, messageID string) error {
	_, err := r.client.Collection(contactMessagesCollection).Doc(messageID).Update(ctx, []firestore.Update{
		{Path: "status", Value: models.ContactStatusRead},
	})
	if err != nil {
		return translateError(err, fmt.Sprintf("contact message '%s'", messageID))
	}
	return nil
}

func (r *firestoreContactRepository) CountUnread(ctx context.Context) (int64, error) {
	q := r.client.Collection(contactMessagesCollection).Where("status", "==", models.ContactStatusNew)
	n, err := countQuery(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread contact messages: %w", err)
	}
	return n, nil
}
