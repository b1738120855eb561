package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"

	"formcraft-backend-go/internal/models"
)

// FirestoreMailQueue enqueues outbound mail by writing documents to the
// collection watched by the mail extension.
type FirestoreMailQueue struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreMailQueue creates a mail queue writing to collection.
func NewFirestoreMailQueue(client *firestore.Client, collection string) *FirestoreMailQueue {
	if collection == "" {
		collection = "mail"
	}
	return &FirestoreMailQueue{client: client, collection: collection}
}

// Enqueue writes one mail document.
func (q *FirestoreMailQueue) Enqueue(ctx context.Context, msg models.MailMessage) error {
	if len(msg.To) == 0 {
		return errors.New("mail message has no recipients")
	}
	if _, _, err := q.client.Collection(q.collection).Add(ctx, msg); err != nil {
		return fmt.Errorf("failed to enqueue mail to %v: %w", msg.To, err)
	}
	return nil
}
