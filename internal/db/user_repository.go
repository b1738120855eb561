package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	"formcraft-backend-go/internal/models"
)

const usersCollection = "users"

// firestoreUserRepository implements UserRepository using Firestore.
type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new user repository.
func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	return &firestoreUserRepository{client: client}
}

// Create adds a new user document keyed by the Firebase Auth UID.
func (r *firestoreUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty for Create operation")
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if _, err := r.client.Collection(usersCollection).Doc(user.ID).Create(ctx, user); err != nil {
		return translateError(err, fmt.Sprintf("user '%s'", user.ID))
	}
	return nil
}

// GetByID retrieves a user by Firebase Auth UID.
func (r *firestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("user '%s'", userID))
	}
	var user models.User
	if err := docSnap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for ID '%s': %w", userID, err)
	}
	user.ID = docSnap.Ref.ID
	return &user, nil
}

// GetByEmail retrieves a user by email. Emails are stored lower-cased.
func (r *firestoreUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("email cannot be empty for GetByEmail operation")
	}
	iter := r.client.Collection(usersCollection).Where("email", "==", email).Limit(1).Documents(ctx)
	users, err := decodeAll(iter, func(u *models.User, id string) { u.ID = id })
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user with email '%s' not found: %w", email, ErrNotFound)
	}
	return users[0], nil
}

// Update overwrites the profile fields of an existing user.
func (r *firestoreUserRepository) Update(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(usersCollection).Doc(user.ID).Update(ctx, []firestore.Update{
		{Path: "email", Value: strings.ToLower(strings.TrimSpace(user.Email))},
		{Path: "displayName", Value: user.DisplayName},
		{Path: "photoURL", Value: user.PhotoURL},
		{Path: "provider", Value: user.Provider},
		{Path: "role", Value: user.Role},
		{Path: "updatedAt", Value: user.UpdatedAt},
		{Path: "lastLoginAt", Value: user.LastLoginAt},
	})
	if err != nil {
		return translateError(err, fmt.Sprintf("user '%s'", user.ID))
	}
	return nil
}

// UpdateLastLogin stamps the login time on a user.
func (r *firestoreUserRepository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "lastLoginAt", Value: at},
		{Path: "updatedAt", Value: at},
	})
	if err != nil {
		return translateError(err, fmt.Sprintf("user '%s'", userID))
	}
	return nil
}

// SetRole changes the stored role of a user.
func (r *firestoreUserRepository) SetRole(ctx context.Context, userID, role string) error {
	_, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "role", Value: role},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return translateError(err, fmt.Sprintf("user '%s'", userID))
	}
	return nil
}

// List returns the most recently created users.
func (r *firestoreUserRepository) List(ctx context.Context, limit int) ([]*models.User, error) {
	iter := r.client.Collection(usersCollection).
		OrderBy("createdAt", firestore.Desc).
		Limit(normalizeLimit(limit, defaultListLimit)).
		Documents(ctx)
	users, err := decodeAll(iter, func(u *models.User, id string) { u.ID = id })
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Count returns the number of user documents.
func (r *firestoreUserRepository) Count(ctx context.Context) (int64, error) {
	n, err := countQuery(ctx, r.client.Collection(usersCollection).Query)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
