package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"formcraft-backend-go/internal/core"
)

// SubmissionHandler handles the response dashboard endpoints of a form.
type SubmissionHandler struct {
	submissionService core.SubmissionService
	logger            *zap.Logger
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(ss core.SubmissionService, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss, logger: logger}
}

// mapSubmissionErrorToStatus maps errors from core.SubmissionService to HTTP status codes and ErrorResponse.
func mapSubmissionErrorToStatus(c *gin.Context, logger *zap.Logger, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrFormNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrFormNotFound.Error()}
	case errors.Is(err, core.ErrSubmissionNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrSubmissionNotFound.Error()}
	case errors.Is(err, core.ErrForbiddenAccess):
		statusCode = http.StatusForbidden
		errResponse = ErrorResponse{Error: core.ErrForbiddenAccess.Error()}
	default:
		internalError(c, logger, err)
		return
	}
	c.JSON(statusCode, errResponse)
}

// ListSubmissions handles GET /forms/:formId/submissions
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	submissions, err := h.submissionService.ListSubmissions(c.Request.Context(), s, c.Param("formId"))
	if err != nil {
		mapSubmissionErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, submissions)
}

// GetSubmission handles GET /forms/:formId/submissions/:submissionId
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	submission, err := h.submissionService.GetSubmission(c.Request.Context(), s, c.Param("formId"), c.Param("submissionId"))
	if err != nil {
		mapSubmissionErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}

// DeleteSubmission handles DELETE /forms/:formId/submissions/:submissionId
func (h *SubmissionHandler) DeleteSubmission(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	if err := h.submissionService.DeleteSubmission(c.Request.Context(), s, c.Param("formId"), c.Param("submissionId")); err != nil {
		mapSubmissionErrorToStatus(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportCSV handles GET /forms/:formId/submissions/export
// The CSV is built in memory first so a failure still yields a JSON error.
func (h *SubmissionHandler) ExportCSV(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	formID := c.Param("formId")
	var buf bytes.Buffer
	if err := h.submissionService.ExportCSV(c.Request.Context(), s, formID, &buf); err != nil {
		mapSubmissionErrorToStatus(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "responses-"+formID+".csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
