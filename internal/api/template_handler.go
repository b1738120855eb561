package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"formcraft-backend-go/internal/core"
)

// TemplateHandler lists the starter form templates.
type TemplateHandler struct {
	templateService core.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(ts core.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: ts}
}

// ListTemplates handles GET /templates
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, h.templateService.List())
}
