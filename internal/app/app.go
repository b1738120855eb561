// Package app wires configuration, Firebase clients, repositories and services
// into the object graph shared by the server and the admin CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"formcraft-backend-go/internal/ai"
	"formcraft-backend-go/internal/api"
	"formcraft-backend-go/internal/config"
	"formcraft-backend-go/internal/core"
	"formcraft-backend-go/internal/db"
	"formcraft-backend-go/pkg/cache"
	"formcraft-backend-go/pkg/messagequeue"
)

// App holds the initialized clients and services.
type App struct {
	Config   *config.Config
	Firebase *db.Clients
	Services api.Services

	cache  cache.Cache
	broker messagequeue.MessageQueue
}

// New initializes every dependency. On error, anything already opened is closed.
func New(ctx context.Context, appConfig *config.Config, logger *zap.Logger) (_ *App, err error) {
	a := &App{Config: appConfig}
	defer func() {
		if err != nil {
			if closeErr := a.Close(); closeErr != nil {
				logger.Warn("Failed to release resources after init error", zap.Error(closeErr))
			}
		}
	}()

	// --- Firebase Admin SDK (Firestore and Auth clients) ---
	a.Firebase, err = db.InitFirebase(ctx, appConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase: %w", err)
	}
	fs := a.Firebase.Firestore

	// --- Repositories ---
	userRepo := db.NewFirestoreUserRepository(fs)
	formRepo := db.NewFirestoreFormRepository(fs)
	submissionRepo := db.NewFirestoreSubmissionRepository(fs)
	activityRepo := db.NewFirestoreActivityRepository(fs)
	contactRepo := db.NewFirestoreContactRepository(fs)

	// --- Public form cache (Redis when configured) ---
	a.cache = cache.NoopCache{}
	if appConfig.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(ctx, cache.NewRedisCacheConfig{
			Address:  appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		a.cache = redisCache
		logger.Info("Public form cache backed by Redis", zap.String("address", appConfig.RedisAddr))
	} else {
		logger.Info("REDIS_ADDR not set, public form cache disabled")
	}

	// --- Outbound mail queue ---
	var mailQueue core.MailQueue
	switch appConfig.MailQueue {
	case config.MailQueueRabbitMQ:
		rmq, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: appConfig.RabbitMQURL}, logger)
		if err != nil {
			return nil, err
		}
		a.broker = rmq
		mailQueue = core.NewBrokerMailQueue(rmq, appConfig.MailQueueName)
	default:
		mailQueue = db.NewFirestoreMailQueue(fs, appConfig.MailQueueName)
	}
	logger.Info("Mail queue configured", zap.String("backend", appConfig.MailQueue), zap.String("queue", appConfig.MailQueueName))

	// --- AI form generation (optional) ---
	var generator core.FormGenerator
	if appConfig.GeneratorEnabled() {
		gemini, err := ai.NewGeminiClient(ctx, appConfig.GeminiAPIKey, appConfig.GeminiModel, logger)
		if err != nil {
			return nil, err
		}
		generator = gemini
	} else {
		logger.Warn("GEMINI_API_KEY not set, AI form generation disabled")
	}

	// --- Services ---
	receiptKey, err := appConfig.ReceiptKeyBytes()
	if err != nil {
		return nil, err
	}
	receipts, err := core.NewReceiptService(receiptKey)
	if err != nil {
		return nil, err
	}
	templateService, err := core.NewTemplateService()
	if err != nil {
		return nil, err
	}

	activityService := core.NewActivityService(activityRepo, logger)
	publicCache := core.NewPublicFormCache(a.cache, appConfig.PublicFormCacheTTL, logger)
	notificationService := core.NewNotificationService(mailQueue, appConfig.AdminEmail, appConfig.PublicBaseURL, logger)

	a.Services = api.Services{
		Users:       core.NewUserService(userRepo, activityService, appConfig.AdminEmail, logger),
		Identity:    core.NewIdentityService(a.Firebase.Auth, userRepo, activityService, logger),
		Forms:       core.NewFormService(formRepo, submissionRepo, templateService, activityService, publicCache, logger),
		PublicForms: core.NewPublicFormService(formRepo, publicCache, logger),
		Submissions: core.NewSubmissionService(formRepo, submissionRepo, receipts, notificationService, activityService, logger),
		Generator:   core.NewGeneratorService(generator, logger),
		Contact:     core.NewContactService(contactRepo, notificationService, activityService, logger),
		Admin:       core.NewAdminService(userRepo, formRepo, submissionRepo, contactRepo, activityService, logger),
		Templates:   templateService,
	}
	logger.Info("Core services initialized successfully.")
	return a, nil
}

// Close releases Firestore, Redis and RabbitMQ connections.
func (a *App) Close() error {
	var errs []error
	if a.broker != nil {
		errs = append(errs, a.broker.Close())
	}
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	errs = append(errs, a.Firebase.Close())
	return errors.Join(errs...)
}
