package models

import "time"

// Submission is one respondent's answer set, stored under forms/{formId}/submissions.
type Submission struct {
	ID              string                 `json:"id" firestore:"-"`
	FormID          string                 `json:"formId" firestore:"-"`
	Answers         map[string]interface{} `json:"answers" firestore:"answers"`
	RespondentEmail string                 `json:"respondentEmail,omitempty" firestore:"respondentEmail,omitempty"`
	RespondentUID   string                 `json:"respondentUid,omitempty" firestore:"respondentUid,omitempty"`
	SubmittedAt     time.Time              `json:"submittedAt" firestore:"submittedAt,serverTimestamp"`
}
