package models

import (
	"math"
	"time"
)

// FormStatus is the lifecycle state of a form.
type FormStatus string

const (
	StatusDraft     FormStatus = "draft"
	StatusPublished FormStatus = "published"
	StatusCompleted FormStatus = "completed"
)

// Valid reports whether s is a known status.
func (s FormStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusCompleted:
		return true
	}
	return false
}

// Theme describes the look of the rendered form.
type Theme struct {
	PrimaryColor    string `json:"primaryColor" firestore:"primaryColor"`
	BackgroundColor string `json:"backgroundColor" firestore:"backgroundColor"`
	TextColor       string `json:"textColor" firestore:"textColor"`
	FontFamily      string `json:"fontFamily" firestore:"fontFamily"`
	BorderRadius    string `json:"borderRadius" firestore:"borderRadius"`
}

// DefaultTheme is applied to forms created without a theme.
func DefaultTheme() Theme {
	return Theme{
		PrimaryColor:    "#6366f1",
		BackgroundColor: "#ffffff",
		TextColor:       "#111827",
		FontFamily:      "Inter",
		BorderRadius:    "8px",
	}
}

// FormSettings holds the per-form behaviour flags.
type FormSettings struct {
	CollectEmails       bool   `json:"collectEmails" firestore:"collectEmails"`
	LimitOneResponse    bool   `json:"limitOneResponse" firestore:"limitOneResponse"`
	ShuffleQuestions    bool   `json:"shuffleQuestions" firestore:"shuffleQuestions"`
	ShowProgressBar     bool   `json:"showProgressBar" firestore:"showProgressBar"`
	NotifyOwner         bool   `json:"notifyOwner" firestore:"notifyOwner"`
	SendRespondentCopy  bool   `json:"sendRespondentCopy" firestore:"sendRespondentCopy"`
	ConfirmationMessage string `json:"confirmationMessage,omitempty" firestore:"confirmationMessage,omitempty"`
}

// DefaultSettings are applied to new forms.
func DefaultSettings() FormSettings {
	return FormSettings{
		ShowProgressBar: true,
		NotifyOwner:     true,
	}
}

// FormStats are the aggregate counters of a form.
type FormStats struct {
	Views          int64   `json:"views" firestore:"views"`
	Responses      int64   `json:"responses" firestore:"responses"`
	CompletionRate float64 `json:"completionRate" firestore:"-"`
}

// ComputeCompletionRate returns responses/views as a percentage rounded to one
// decimal, 0 without views and never above 100.
func (s FormStats) ComputeCompletionRate() float64 {
	if s.Views <= 0 {
		return 0
	}
	rate := float64(s.Responses) / float64(s.Views) * 100
	if rate > 100 {
		rate = 100
	}
	return math.Round(rate*10) / 10
}

// Form is the schema and configuration authored by a creator.
type Form struct {
	ID            string       `json:"id" firestore:"-"`
	OwnerID       string       `json:"ownerId" firestore:"ownerId"`
	OwnerEmail    string       `json:"ownerEmail,omitempty" firestore:"ownerEmail,omitempty"`
	Title         string       `json:"title" firestore:"title"`
	Description   string       `json:"description,omitempty" firestore:"description,omitempty"`
	Slug          string       `json:"slug,omitempty" firestore:"slug,omitempty"`
	Fields        []Field      `json:"fields" firestore:"fields"`
	Theme         Theme        `json:"theme" firestore:"theme"`
	Settings      FormSettings `json:"settings" firestore:"settings"`
	Collaborators []string     `json:"collaborators" firestore:"collaborators"`
	Status        FormStatus   `json:"status" firestore:"status"`
	Stats         FormStats    `json:"stats" firestore:"stats"`
	CreatedAt     time.Time    `json:"createdAt" firestore:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt" firestore:"updatedAt"`
	PublishedAt   *time.Time   `json:"publishedAt,omitempty" firestore:"publishedAt,omitempty"`
}

// FillDerived populates values that are computed rather than stored.
func (f *Form) FillDerived() {
	f.Stats.CompletionRate = f.Stats.ComputeCompletionRate()
	if f.Collaborators == nil {
		f.Collaborators = []string{}
	}
	if f.Fields == nil {
		f.Fields = []Field{}
	}
}

// InputFields returns the fields that collect answers.
func (f *Form) InputFields() []Field {
	var out []Field
	for _, field := range f.Fields {
		if field.Kind.IsInput() {
			out = append(out, field)
		}
	}
	return out
}

// FieldByID finds a field by identifier.
func (f *Form) FieldByID(id string) (Field, bool) {
	for _, field := range f.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return Field{}, false
}

// HasCollaborator reports whether email is listed as a collaborator (case-insensitive
// matching is handled by callers normalising emails before storage).
func (f *Form) HasCollaborator(email string) bool {
	if email == "" {
		return false
	}
	for _, c := range f.Collaborators {
		if c == email {
			return true
		}
	}
	return false
}

// PublicForm is the projection of a published form served to respondents.
type PublicForm struct {
	ID          string       `json:"id"`
	Slug        string       `json:"slug,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Fields      []Field      `json:"fields"`
	Theme       Theme        `json:"theme"`
	Settings    FormSettings `json:"settings"`
}

// ToPublic builds the respondent-facing projection.
func (f *Form) ToPublic() PublicForm {
	fields := make([]Field, len(f.Fields))
	copy(fields, f.Fields)
	return PublicForm{
		ID:          f.ID,
		Slug:        f.Slug,
		Title:       f.Title,
		Description: f.Description,
		Fields:      fields,
		Theme:       f.Theme,
		Settings:    f.Settings,
	}
}
