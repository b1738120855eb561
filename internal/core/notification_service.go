package core

import (
	"context"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"formcraft-backend-go/internal/models"
)

// notificationService implements the NotificationService interface.
type notificationService struct {
	queue         MailQueue
	adminEmail    string
	publicBaseURL string
	logger        *zap.Logger
}

// NewNotificationService creates a new NotificationService that enqueues mail through queue.
func NewNotificationService(queue MailQueue, adminEmail, publicBaseURL string, logger *zap.Logger) NotificationService {
	return &notificationService{
		queue:         queue,
		adminEmail:    strings.TrimSpace(adminEmail),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

func (s *notificationService) enqueue(ctx context.Context, kind string, msg models.MailMessage) {
	if err := s.queue.Enqueue(ctx, msg); err != nil {
		s.logger.Warn("Failed to enqueue mail", zap.String("kind", kind), zap.Strings("to", msg.To), zap.Error(err))
	}
}

// NotifyNewSubmission mails the owner when enabled and, when enabled and an
// address is known, sends the respondent a copy of their answers.
func (s *notificationService) NotifyNewSubmission(ctx context.Context, form *models.Form, submission *models.Submission) {
	rows := answerRows(form, submission)

	if form.Settings.NotifyOwner && form.OwnerEmail != "" {
		link := fmt.Sprintf("%s/forms/%s/responses", s.publicBaseURL, form.ID)
		subject := fmt.Sprintf("New response to %s", form.Title)
		intro := fmt.Sprintf("Your form \"%s\" received a new response.", form.Title)
		s.enqueue(ctx, "owner", models.MailMessage{
			To:      []string{form.OwnerEmail},
			ReplyTo: submission.RespondentEmail,
			Message: models.MailContent{
				Subject: subject,
				Text:    renderText(intro, rows, "View all responses: "+link),
				HTML:    renderHTML(intro, rows, link, "View all responses"),
			},
		})
	}

	if form.Settings.SendRespondentCopy && submission.RespondentEmail != "" {
		subject := fmt.Sprintf("Your response to %s", form.Title)
		intro := fmt.Sprintf("Thanks for responding to \"%s\". Here is a copy of your answers.", form.Title)
		s.enqueue(ctx, "respondent", models.MailMessage{
			To: []string{submission.RespondentEmail},
			Message: models.MailContent{
				Subject: subject,
				Text:    renderText(intro, rows, ""),
				HTML:    renderHTML(intro, rows, "", ""),
			},
		})
	}
}

// NotifyContact forwards a contact message to the admin address.
func (s *notificationService) NotifyContact(ctx context.Context, msg *models.ContactMessage) {
	if s.adminEmail == "" {
		return
	}
	subject := "New contact message"
	if msg.Subject != "" {
		subject += ": " + msg.Subject
	}
	rows := [][2]string{{"Name", msg.Name}, {"Email", msg.Email}, {"Message", msg.Message}}
	intro := "Someone wrote through the contact page."
	s.enqueue(ctx, "contact", models.MailMessage{
		To:      []string{s.adminEmail},
		ReplyTo: msg.Email,
		Message: models.MailContent{
			Subject: subject,
			Text:    renderText(intro, rows, ""),
			HTML:    renderHTML(intro, rows, "", ""),
		},
	})
}

// answerRows pairs input field labels with display answers in form order.
func answerRows(form *models.Form, submission *models.Submission) [][2]string {
	var rows [][2]string
	for _, f := range form.InputFields() {
		value, ok := submission.Answers[f.ID]
		if !ok {
			continue
		}
		rows = append(rows, [2]string{f.Label, formatAnswer(f, value)})
	}
	return rows
}

func renderText(intro string, rows [][2]string, footer string) string {
	var b strings.Builder
	b.WriteString(intro)
	b.WriteString("\n\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%s: %s\n", r[0], r[1])
	}
	if footer != "" {
		b.WriteString("\n")
		b.WriteString(footer)
		b.WriteString("\n")
	}
	return b.String()
}

func renderHTML(intro string, rows [][2]string, link, linkText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(intro))
	if len(rows) > 0 {
		b.WriteString("<table>")
		for _, r := range rows {
			fmt.Fprintf(&b, "<tr><th align=\"left\">%s</th><td>%s</td></tr>",
				html.EscapeString(r[0]), strings.ReplaceAll(html.EscapeString(r[1]), "\n", "<br>"))
		}
		b.WriteString("</table>")
	}
	if link != "" {
		fmt.Fprintf(&b, "<p><a href=\"%s\">%s</a></p>", html.EscapeString(link), html.EscapeString(linkText))
	}
	return b.String()
}
