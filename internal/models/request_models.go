package models

// CreateFormRequest is the body for creating a new form.
type CreateFormRequest struct {
	Title       string        `json:"title" binding:"required"`
	Description string        `json:"description,omitempty"`
	Fields      []Field       `json:"fields,omitempty"`
	Theme       *Theme        `json:"theme,omitempty"`
	Settings    *FormSettings `json:"settings,omitempty"`
}

// UpdateFormRequest is the body for updating a form.
// Pointers distinguish fields not provided from empty values.
type UpdateFormRequest struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Fields      *[]Field      `json:"fields,omitempty"` // Replaces the whole field list
	Theme       *Theme        `json:"theme,omitempty"`
	Settings    *FormSettings `json:"settings,omitempty"`
}

// SubmitRequest is the body posted by a respondent.
type SubmitRequest struct {
	Answers         map[string]interface{} `json:"answers" binding:"required"`
	RespondentEmail string                 `json:"respondentEmail,omitempty"`
}

// SubmitResponse is returned after a successful submission.
type SubmitResponse struct {
	SubmissionID        string `json:"submissionId"`
	Receipt             string `json:"receipt"`
	ConfirmationMessage string `json:"confirmationMessage,omitempty"`
}

// GenerateFormRequest asks the AI adapter for a form about a topic.
type GenerateFormRequest struct {
	Topic string `json:"topic" binding:"required"`
}

// ContactRequest is the body of the public contact form.
type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message" binding:"required"`
}

// SignUpRequest creates an email/password account.
type SignUpRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName,omitempty"`
}

// SetRoleRequest changes a user's role.
type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SetSlugRequest assigns a custom public slug.
type SetSlugRequest struct {
	Slug string `json:"slug" binding:"required"`
}

// AddCollaboratorRequest shares a form with another account by email.
type AddCollaboratorRequest struct {
	Email string `json:"email" binding:"required"`
}

// Sort orders accepted by FormListQuery.
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortTitle     = "title"
	SortResponses = "responses"
	SortViews     = "views"
)

// FormListQuery filters the dashboard form list.
type FormListQuery struct {
	Status string `form:"status"`
	Search string `form:"search"`
	Sort   string `form:"sort"`
	Limit  int    `form:"limit"`
}
