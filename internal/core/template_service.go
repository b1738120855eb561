package core

import (
	"fmt"

	"formcraft-backend-go/internal/templates"
)

// templateService implements the TemplateService interface over a fixed catalogue.
type templateService struct {
	list []templates.Template
	byID map[string]templates.Template
}

// NewTemplateService loads the embedded template catalogue.
func NewTemplateService() (TemplateService, error) {
	list, err := templates.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load form templates: %w", err)
	}
	return NewTemplateServiceFrom(list), nil
}

// NewTemplateServiceFrom serves the given templates.
func NewTemplateServiceFrom(list []templates.Template) TemplateService {
	byID := make(map[string]templates.Template, len(list))
	for _, t := range list {
		byID[t.ID] = t
	}
	return &templateService{list: list, byID: byID}
}

func (s *templateService) List() []templates.Template {
	out := make([]templates.Template, len(s.list))
	copy(out, s.list)
	return out
}

func (s *templateService) Get(id string) (templates.Template, error) {
	t, ok := s.byID[id]
	if !ok {
		return templates.Template{}, fmt.Errorf("%w: '%s'", ErrTemplateNotFound, id)
	}
	return t, nil
}
