package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"formcraft-backend-go/internal/models"
)

// Publisher is the subset of a message broker the mail queue needs.
type Publisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
}

// BrokerMailQueue enqueues mail as JSON messages on a broker queue consumed by the mail relay.
type BrokerMailQueue struct {
	publisher Publisher
	queue     string
}

// NewBrokerMailQueue creates a MailQueue publishing to queue.
func NewBrokerMailQueue(publisher Publisher, queue string) *BrokerMailQueue {
	return &BrokerMailQueue{publisher: publisher, queue: queue}
}

func (q *BrokerMailQueue) Enqueue(ctx context.Context, msg models.MailMessage) error {
	if len(msg.To) == 0 {
		return errors.New("mail message has no recipients")
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode mail message: %w", err)
	}
	if err := q.publisher.Publish(ctx, q.queue, body); err != nil {
		return fmt.Errorf("failed to publish mail to %v: %w", msg.To, err)
	}
	return nil
}
