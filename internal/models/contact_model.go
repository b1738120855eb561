package models

import "time"

const (
	ContactStatusNew  = "new"
	ContactStatusRead = "read"
)

// ContactMessage is a message left through the public contact page.
type ContactMessage struct {
	ID        string    `json:"id" firestore:"-"`
	Name      string    `json:"name" firestore:"name"`
	Email     string    `json:"email" firestore:"email"`
	Subject   string    `json:"subject,omitempty" firestore:"subject,omitempty"`
	Message   string    `json:"message" firestore:"message"`
	Status    string    `json:"status" firestore:"status"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}
