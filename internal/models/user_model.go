package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account in the system. The document ID is the Firebase Auth UID.
type User struct {
	ID          string    `json:"id" firestore:"-"`
	Email       string    `json:"email" firestore:"email"`
	DisplayName string    `json:"displayName,omitempty" firestore:"displayName,omitempty"`
	PhotoURL    string    `json:"photoURL,omitempty" firestore:"photoURL,omitempty"`
	Provider    string    `json:"provider,omitempty" firestore:"provider,omitempty"` // e.g. "password", "google.com"
	Role        string    `json:"role" firestore:"role"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt"`
	LastLoginAt time.Time `json:"lastLoginAt" firestore:"lastLoginAt"`
}

// IsAdmin reports whether the stored role is admin.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
