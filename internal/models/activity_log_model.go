package models

import "time"

// Activity actions recorded in the activity_logs collection.
const (
	ActionUserSignUp        = "USER_SIGN_UP"
	ActionUserLogin         = "USER_LOGIN"
	ActionUserSignOut       = "USER_SIGN_OUT"
	ActionUserRoleChange    = "USER_ROLE_CHANGE"
	ActionFormCreate        = "FORM_CREATE"
	ActionFormGenerate      = "FORM_GENERATE"
	ActionFormUpdate        = "FORM_UPDATE"
	ActionFormDelete        = "FORM_DELETE"
	ActionFormPublish       = "FORM_PUBLISH"
	ActionFormUnpublish     = "FORM_UNPUBLISH"
	ActionFormComplete      = "FORM_COMPLETE"
	ActionFormDuplicate     = "FORM_DUPLICATE"
	ActionFormShare         = "FORM_SHARE"
	ActionFormUnshare       = "FORM_UNSHARE"
	ActionSubmissionCreate  = "SUBMISSION_CREATE"
	ActionSubmissionDelete  = "SUBMISSION_DELETE"
	ActionContactMessageNew = "CONTACT_MESSAGE"

	TargetUser       = "USER"
	TargetForm       = "FORM"
	TargetSubmission = "SUBMISSION"
	TargetContact    = "CONTACT"
)

// ActivityLog represents an entry in the activity trail.
type ActivityLog struct {
	ID         string                 `json:"id" firestore:"-"`
	Timestamp  time.Time              `json:"timestamp" firestore:"timestamp,serverTimestamp"`
	UserID     string                 `json:"userId,omitempty" firestore:"userId,omitempty"` // Empty for anonymous respondents
	Action     string                 `json:"action" firestore:"action"`
	TargetType string                 `json:"targetType,omitempty" firestore:"targetType,omitempty"`
	TargetID   string                 `json:"targetId,omitempty" firestore:"targetId,omitempty"`
	IPAddress  string                 `json:"ipAddress,omitempty" firestore:"ipAddress,omitempty"`
	UserAgent  string                 `json:"userAgent,omitempty" firestore:"userAgent,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty" firestore:"details,omitempty"`
}
