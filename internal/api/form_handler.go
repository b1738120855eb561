package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"formcraft-backend-go/internal/core"
	"formcraft-backend-go/internal/models"
	"formcraft-backend-go/internal/session"
)

// FormHandler handles form authoring endpoints.
type FormHandler struct {
	formService      core.FormService
	generatorService core.GeneratorService
	logger           *zap.Logger
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(fs core.FormService, gs core.GeneratorService, logger *zap.Logger) *FormHandler {
	return &FormHandler{formService: fs, generatorService: gs, logger: logger}
}

// mapFormErrorToStatus maps errors from core.FormService and core.GeneratorService to HTTP status codes and ErrorResponse.
func mapFormErrorToStatus(c *gin.Context, logger *zap.Logger, err error) {
	var statusCode int
	var errResponse ErrorResponse
	var verr *core.ValidationError

	switch {
	case errors.As(err, &verr):
		validationError(c, verr)
		return
	case errors.Is(err, core.ErrFormNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrFormNotFound.Error()}
	case errors.Is(err, core.ErrTemplateNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrTemplateNotFound.Error()}
	case errors.Is(err, core.ErrForbiddenAccess):
		statusCode = http.StatusForbidden
		errResponse = ErrorResponse{Error: core.ErrForbiddenAccess.Error()}
	case errors.Is(err, core.ErrSlugTaken):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: core.ErrSlugTaken.Error()}
	case errors.Is(err, core.ErrInvalidStatusTransition):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: core.ErrInvalidStatusTransition.Error()}
	case errors.Is(err, core.ErrCollaboratorIsOwner):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: core.ErrCollaboratorIsOwner.Error()}
	case errors.Is(err, core.ErrInvalidEmail):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: core.ErrInvalidEmail.Error()}
	case errors.Is(err, core.ErrGenerationFailed):
		// The model is an upstream dependency.
		statusCode = http.StatusBadGateway
		errResponse = ErrorResponse{Error: core.ErrGenerationFailed.Error()}
	case errors.Is(err, core.ErrGeneratorUnavailable):
		statusCode = http.StatusServiceUnavailable
		errResponse = ErrorResponse{Error: core.ErrGeneratorUnavailable.Error()}
	default:
		internalError(c, logger, err)
		return
	}
	c.JSON(statusCode, errResponse)
}

// CreateForm handles POST /forms
func (h *FormHandler) CreateForm(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	var req models.CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	form, err := h.formService.CreateForm(c.Request.Context(), s, req)
	if err != nil {
		mapFormErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, form)
}

// ListForms handles GET /forms?status=&search=&sort=&limit=
// The list holds forms the caller owns and forms shared with them.
func (h *FormHandler) ListForms(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	var query models.FormListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, "Invalid query parameters", err)
		return
	}
	forms, err := h.formService.ListForms(c.Request.Context(), s, query)
	if err != nil {
		mapFormErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, forms)
}

// GetForm handles GET /forms/:formId
func (h *FormHandler) GetForm(c *gin.Context) {
	h.withForm(c, http.StatusOK, h.formService.GetForm)
}

// UpdateForm handles PUT /forms/:formId
func (h *FormHandler) UpdateForm(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	var req models.UpdateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	form, err := h.formService.UpdateForm(c.Request.Context(), s, c.Param("formId"), req)
	if err != nil {
		mapFormErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// DeleteForm handles DELETE /forms/:formId
func (h *FormHandler) DeleteForm(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	if err := h.formService.DeleteForm(c.Request.Context(), s, c.Param("formId")); err != nil {
		mapFormErrorToStatus(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PublishForm handles POST /forms/:formId/publish
func (h *FormHandler) PublishForm(c *gin.Context) {
	h.withForm(c, http.StatusOK, h.formService.PublishForm)
}

// CompleteForm handles POST /forms/:formId/complete
func (h *FormHandler) CompleteForm(c *gin.Context) {
	h.withForm(c, http.StatusOK, h.formService.CompleteForm)
}

// UnpublishForm handles POST /forms/:formId/unpublish
func (h *FormHandler) UnpublishForm(c *gin.Context) {
	h.withForm(c, http.StatusOK, h.formService.UnpublishForm)
}

// DuplicateForm handles POST /forms/:formId/duplicate
func (h *FormHandler) DuplicateForm(c *gin.Context) {
	h.withForm(c, http.StatusCreated, h.formService.DuplicateForm)
}

// SetSlug handles PUT /forms/:formId/slug
func (h *FormHandler) SetSlug(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	var req models.SetSlugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	form, err := h.formService.SetSlug(c.Request.Context(), s, c.Param("formId"), req.Slug)
	if err != nil {
		mapFormErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// AddCollaborator handles POST /forms/:formId/collaborators
func (h *FormHandler) AddCollaborator(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	var req models.AddCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	form, err := h.formService.AddCollaborator(c.Request.Context(), s, c.Param("formId"), req.Email)
	if err != nil {
		mapFormErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// RemoveCollaborator handles DELETE /forms/:formId/collaborators/:email
func (h *FormHandler) RemoveCollaborator(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	form, err := h.formService.RemoveCollaborator(c.Request.Context(), s, c.Param("formId"), c.Param("email"))
	if err != nil {
		mapFormErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// CreateFromTemplate handles POST /forms/from-template/:templateId
func (h *FormHandler) CreateFromTemplate(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	form, err := h.formService.CreateFromTemplate(c.Request.Context(), s, c.Param("templateId"))
	if err != nil {
		mapFormErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, form)
}

// GenerateForm handles POST /forms/generate[?save=true]
// Without save the draft is only returned for the builder to review.
func (h *FormHandler) GenerateForm(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	var req models.GenerateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	save, _ := strconv.ParseBool(c.DefaultQuery("save", "false"))

	generated, err := h.generatorService.Generate(c.Request.Context(), req.Topic)
	if err != nil {
		mapFormErrorToStatus(c, h.logger, err)
		return
	}
	if !save {
		c.JSON(http.StatusOK, GeneratedFormResponse{GeneratedForm: generated})
		return
	}
	form, err := h.formService.CreateGeneratedForm(c.Request.Context(), s, generated)
	if err != nil {
		mapFormErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, GeneratedFormResponse{GeneratedForm: generated, FormID: form.ID})
}

// withForm runs a form-scoped action for the caller and writes the resulting form.
func (h *FormHandler) withForm(c *gin.Context, status int, action func(context.Context, *session.Session, string) (*models.Form, error)) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	form, err := action(c.Request.Context(), s, c.Param("formId"))
	if err != nil {
		mapFormErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(status, form)
}
