package db

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"formcraft-backend-go/internal/config"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// ErrAlreadyExists is returned when creating a document whose ID is taken.
var ErrAlreadyExists = errors.New("document already exists")

// Clients bundles the Firebase clients the service needs.
type Clients struct {
	Firestore *firestore.Client
	Auth      *auth.Client
}

// Close releases the Firestore connection.
func (c *Clients) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}

// InitFirebase initializes the Firebase Admin SDK and returns Firestore and Auth clients.
// Credentials come from a file path, a base64 encoded service account, or ADC, in that order.
func InitFirebase(ctx context.Context, appConfig *config.Config, logger *zap.Logger) (*Clients, error) {
	if appConfig == nil {
		return nil, errors.New("InitFirebase: appConfig cannot be nil")
	}

	var opts []option.ClientOption
	switch {
	case appConfig.GoogleApplicationCredentials != "":
		logger.Info("Initializing Firebase with credentials file", zap.String("path", appConfig.GoogleApplicationCredentials))
		if _, err := os.Stat(appConfig.GoogleApplicationCredentials); os.IsNotExist(err) {
			logger.Warn("Credentials file does not exist, falling back on ADC may fail", zap.String("path", appConfig.GoogleApplicationCredentials))
		}
		opts = append(opts, option.WithCredentialsFile(appConfig.GoogleApplicationCredentials))
	case appConfig.FirebaseServiceAccountJSONBase64 != "":
		logger.Info("Initializing Firebase with base64 encoded service account JSON")
		decodedJSON, err := base64.StdEncoding.DecodeString(appConfig.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FIREBASE_SERVICE_ACCOUNT_JSON_BASE64: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(decodedJSON))
	case appConfig.FirestoreEmulatorHost != "":
		logger.Info("Initializing Firebase against the Firestore emulator", zap.String("host", appConfig.FirestoreEmulatorHost))
		if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
			// The Firestore client only reads the emulator address from the environment.
			if err := os.Setenv("FIRESTORE_EMULATOR_HOST", appConfig.FirestoreEmulatorHost); err != nil {
				return nil, fmt.Errorf("failed to export FIRESTORE_EMULATOR_HOST: %w", err)
			}
		}
		opts = append(opts, option.WithoutAuthentication())
	default:
		logger.Info("Initializing Firebase using Application Default Credentials")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: appConfig.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Firestore: %w", err)
	}
	logger.Info("Firestore client initialized", zap.String("projectID", appConfig.FirebaseProjectID))

	authClient, err := app.Auth(ctx)
	if err != nil {
		_ = fsClient.Close()
		return nil, fmt.Errorf("app.Auth: %w", err)
	}
	logger.Info("Firebase Auth client initialized")

	return &Clients{Firestore: fsClient, Auth: authClient}, nil
}

// translateError maps gRPC status codes onto the package sentinels.
func translateError(err error, what string) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%s not found: %w", what, ErrNotFound)
	case codes.AlreadyExists:
		return fmt.Errorf("%s already exists: %w", what, ErrAlreadyExists)
	default:
		return fmt.Errorf("firestore error on %s: %w", what, err)
	}
}

// decodeAll drains iter into typed values, assigning each the document ID.
func decodeAll[T any](iter *firestore.DocumentIterator, setID func(*T, string)) ([]*T, error) {
	defer iter.Stop()
	var out []*T
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		var v T
		if err := doc.DataTo(&v); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", doc.Ref.ID, err)
		}
		setID(&v, doc.Ref.ID)
		out = append(out, &v)
	}
	return out, nil
}

// countQuery runs a server-side count aggregation.
func countQuery(ctx context.Context, q firestore.Query) (int64, error) {
	results, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, err
	}
	raw, ok := results["all"]
	if !ok {
		return 0, errors.New("count aggregation returned no result")
	}
	switch v := raw.(type) {
	case *firestorepb.Value:
		return v.GetIntegerValue(), nil
	case int64:
		return v, nil
	default:
		return 0, fmt.Errorf("unexpected count aggregation type %T", raw)
	}
}

// exists reports whether q matches at least one document.
func exists(ctx context.Context, q firestore.Query) (bool, error) {
	iter := q.Limit(1).Documents(ctx)
	defer iter.Stop()
	_, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)
