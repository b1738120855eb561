// Command mailrelay drains the RabbitMQ mail queue into an SMTP server.
// It is meant for local development with MAIL_QUEUE=rabbitmq.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"formcraft-backend-go/internal/config"
	"formcraft-backend-go/internal/logging"
	"formcraft-backend-go/internal/relay"
	"formcraft-backend-go/pkg/mailer"
	"formcraft-backend-go/pkg/messagequeue"
)

func main() {
	logger, err := logging.New(os.Getenv("GIN_MODE"), os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	appConfig, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	if appConfig.MailQueue != config.MailQueueRabbitMQ {
		logger.Fatal("mailrelay requires MAIL_QUEUE=rabbitmq", zap.String("mailQueue", appConfig.MailQueue))
	}
	if appConfig.SMTPHost == "" {
		logger.Fatal("SMTP_HOST is required for the mail relay")
	}

	rmq, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: appConfig.RabbitMQURL}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer rmq.Close()

	smtpMailer := mailer.NewSMTPMailer(appConfig.SMTPHost, appConfig.SMTPPort, appConfig.SMTPUser, appConfig.SMTPPass, appConfig.MailFrom)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := relay.Run(ctx, rmq, appConfig.MailQueueName, smtpMailer, logger); err != nil {
		logger.Error("Mail relay exited with error", zap.Error(err))
	}
}
