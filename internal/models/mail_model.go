package models

import "time"

// MailMessage is the document shape consumed by the mail extension watching
// the `mail` collection. Writing one is the only thing this service does to send email.
type MailMessage struct {
	ID        string      `json:"id,omitempty" firestore:"-"`
	To        []string    `json:"to" firestore:"to"`
	ReplyTo   string      `json:"replyTo,omitempty" firestore:"replyTo,omitempty"`
	Message   MailContent `json:"message" firestore:"message"`
	CreatedAt time.Time   `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}

// MailContent holds the subject and bodies of a queued mail.
type MailContent struct {
	Subject string `json:"subject" firestore:"subject"`
	Text    string `json:"text,omitempty" firestore:"text,omitempty"`
	HTML    string `json:"html,omitempty" firestore:"html,omitempty"`
}
