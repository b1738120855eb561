package db

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"

	"formcraft-backend-go/internal/models"
)

const activityLogsCollection = "activity_logs"

// firestoreActivityRepository implements ActivityRepository using Firestore.
type firestoreActivityRepository struct {
	client *firestore.Client
}

// NewFirestoreActivityRepository creates a new activity log repository.
func NewFirestoreActivityRepository(client *firestore.Client) ActivityRepository {
	return &firestoreActivityRepository{client: client}
}

// Create adds an activity entry. Timestamp is set server-side.
func (r *firestoreActivityRepository) Create(ctx context.Context, entry models.ActivityLog) error {
	if _, _, err := r.client.Collection(activityLogsCollection).Add(ctx, entry); err != nil {
		return fmt.Errorf("failed to create activity log entry: %w", err)
	}
	return nil
}

// List returns the most recent entries.
func (r *firestoreActivityRepository) List(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	iter := r.client.Collection(activityLogsCollection).
		OrderBy("timestamp", firestore.Desc).
		Limit(normalizeLimit(limit, defaultListLimit)).
		Documents(ctx)
	entries, err := decodeAll(iter, func(e *models.ActivityLog, id string) { e.ID = id })
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	return entries, nil
}

// ListByUser returns the most recent entries of one user.
func (r *firestoreActivityRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.ActivityLog, error) {
	iter := r.client.Collection(activityLogsCollection).Where("userId", "==", userID).Documents(ctx)
	entries, err := decodeAll(iter, func(e *models.ActivityLog, id string) { e.ID = id })
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs for user '%s': %w", userID, err)
	}
	// Sorted here so the query needs no composite index.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Timestamp.After(entries[j].Timestamp) })
	if n := normalizeLimit(limit, defaultListLimit); len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}
