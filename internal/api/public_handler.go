package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"formcraft-backend-go/internal/core"
	"formcraft-backend-go/internal/middleware"
	"formcraft-backend-go/internal/models"
	"formcraft-backend-go/internal/session"
)

// PublicHandler serves respondents. No account is needed; a session is used
// when the optional auth middleware found one.
type PublicHandler struct {
	publicFormService core.PublicFormService
	submissionService core.SubmissionService
	contactService    core.ContactService
	logger            *zap.Logger
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(pfs core.PublicFormService, ss core.SubmissionService, cs core.ContactService, logger *zap.Logger) *PublicHandler {
	return &PublicHandler{publicFormService: pfs, submissionService: ss, contactService: cs, logger: logger}
}

// mapPublicErrorToStatus maps errors of the respondent-facing endpoints to HTTP status codes and ErrorResponse.
func mapPublicErrorToStatus(c *gin.Context, logger *zap.Logger, err error) {
	var statusCode int
	var errResponse ErrorResponse
	var verr *core.ValidationError
	var closed *core.ClosedFormError

	switch {
	case errors.As(err, &verr):
		validationError(c, verr)
		return
	case errors.As(err, &closed):
		// A completed form is gone for respondents; the title lets the client render the closed notice.
		statusCode = http.StatusGone
		errResponse = ErrorResponse{Error: core.ErrFormNotAcceptingResponses.Error(), Title: closed.Title}
	case errors.Is(err, core.ErrFormNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrFormNotFound.Error()}
	case errors.Is(err, core.ErrAlreadyResponded):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: core.ErrAlreadyResponded.Error()}
	case errors.Is(err, core.ErrInvalidEmail):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: core.ErrInvalidEmail.Error()}
	default:
		internalError(c, logger, err)
		return
	}
	c.JSON(statusCode, errResponse)
}

// GetPublishedForm handles GET /public/forms/:idOrSlug
// Every successful call counts one view.
func (h *PublicHandler) GetPublishedForm(c *gin.Context) {
	form, err := h.publicFormService.GetPublishedForm(c.Request.Context(), c.Param("idOrSlug"))
	if err != nil {
		mapPublicErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// Submit handles POST /public/forms/:idOrSlug/submissions
// A receipt from an earlier submission is read from the X-Response-Receipt
// header and the new receipt is returned in the body and the same header.
func (h *PublicHandler) Submit(c *gin.Context) {
	var req models.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	respondent := core.Respondent{Receipt: c.GetHeader(middleware.ReceiptHeader)}
	if s, ok := session.FromGin(c); ok {
		respondent.Session = s
	}

	resp, err := h.submissionService.Submit(c.Request.Context(), c.Param("idOrSlug"), req, respondent)
	if err != nil {
		mapPublicErrorToStatus(c, h.logger, err)
		return
	}
	if resp.Receipt != "" {
		c.Header(middleware.ReceiptHeader, resp.Receipt)
	}
	c.JSON(http.StatusCreated, resp)
}

// SubmitContact handles POST /public/contact
func (h *PublicHandler) SubmitContact(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	msg, err := h.contactService.Submit(c.Request.Context(), req)
	if err != nil {
		mapPublicErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, SuccessResponse{Message: "Thanks for reaching out, we will get back to you soon.", Data: gin.H{"id": msg.ID}})
}
