// Package relay drains the broker-backed mail queue into an SMTP server.
//
// It stands in for the managed mail extension during local development, when
// MAIL_QUEUE=rabbitmq routes outbound mail through RabbitMQ instead of the
// Firestore `mail` collection.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"formcraft-backend-go/internal/models"
	"formcraft-backend-go/pkg/messagequeue"
)

// Sender delivers one mail. *mailer.SMTPMailer satisfies it.
type Sender interface {
	Send(to []string, subject, text, html string) error
}

// Consumer is the subset of messagequeue.MessageQueue the relay needs.
type Consumer interface {
	Consume(ctx context.Context, queueName string, handler messagequeue.Handler) error
}

// Handler decodes queued MailMessages and hands them to sender. Malformed
// messages return an error so the broker drops them instead of redelivering.
func Handler(sender Sender, logger *zap.Logger) messagequeue.Handler {
	return func(ctx context.Context, body []byte) error {
		var msg models.MailMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to decode mail message: %w", err)
		}
		if len(msg.To) == 0 {
			return errors.New("mail message has no recipients")
		}
		if err := sender.Send(msg.To, msg.Message.Subject, msg.Message.Text, msg.Message.HTML); err != nil {
			return err
		}
		logger.Info("Mail relayed",
			zap.String("id", msg.ID),
			zap.Strings("to", msg.To),
			zap.String("subject", msg.Message.Subject),
		)
		return nil
	}
}

// Run consumes queueName until ctx is cancelled.
func Run(ctx context.Context, consumer Consumer, queueName string, sender Sender, logger *zap.Logger) error {
	logger.Info("Mail relay started", zap.String("queue", queueName))
	err := consumer.Consume(ctx, queueName, Handler(sender, logger))
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mail relay stopped: %w", err)
	}
	logger.Info("Mail relay stopped")
	return nil
}
