// Package templates holds the starter forms offered when creating a new form.
package templates

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"formcraft-backend-go/internal/models"
)

//go:embed templates.yaml
var templatesYAML []byte

// Template is a starter form.
type Template struct {
	ID          string       `yaml:"id" json:"id"`
	Name        string       `yaml:"name" json:"name"`
	Category    string       `yaml:"category" json:"category"`
	Description string       `yaml:"description" json:"description"`
	Form        TemplateForm `yaml:"form" json:"form"`
}

// TemplateForm is the form a template instantiates.
type TemplateForm struct {
	Title       string          `yaml:"title" json:"title"`
	Description string          `yaml:"description" json:"description,omitempty"`
	Fields      []TemplateField `yaml:"fields" json:"fields"`
}

// TemplateField mirrors models.Field in YAML form.
type TemplateField struct {
	ID          string           `yaml:"id" json:"id"`
	Type        string           `yaml:"type" json:"type"`
	Label       string           `yaml:"label" json:"label"`
	Placeholder string           `yaml:"placeholder" json:"placeholder,omitempty"`
	HelpText    string           `yaml:"helpText" json:"helpText,omitempty"`
	Required    bool             `yaml:"required" json:"required"`
	Options     []string         `yaml:"options" json:"options,omitempty"`
	Min         *float64         `yaml:"min" json:"min,omitempty"`
	Max         *float64         `yaml:"max" json:"max,omitempty"`
	Step        *float64         `yaml:"step" json:"step,omitempty"`
	Content     string           `yaml:"content" json:"content,omitempty"`
	Currency    string           `yaml:"currency" json:"currency,omitempty"`
	Amount      *float64         `yaml:"amount" json:"amount,omitempty"`
	Products    []models.Product `yaml:"products" json:"products,omitempty"`
}

type file struct {
	Templates []Template `yaml:"templates"`
}

// Load parses the embedded template catalogue.
func Load() ([]Template, error) {
	return Parse(templatesYAML)
}

// Parse decodes a template catalogue and checks every field kind is known.
func Parse(data []byte) ([]Template, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	seen := map[string]bool{}
	for _, t := range f.Templates {
		if t.ID == "" {
			return nil, fmt.Errorf("template %q has no id", t.Name)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		seen[t.ID] = true
		for _, field := range t.Form.Fields {
			if !models.FieldKind(field.Type).Valid() {
				return nil, fmt.Errorf("template %q: field %q has unknown type %q", t.ID, field.ID, field.Type)
			}
		}
	}
	return f.Templates, nil
}

// Fields converts the template fields into form fields.
func (t Template) Fields() []models.Field {
	out := make([]models.Field, 0, len(t.Form.Fields))
	for _, f := range t.Form.Fields {
		out = append(out, models.Field{
			ID:          f.ID,
			Kind:        models.FieldKind(f.Type),
			Label:       f.Label,
			Placeholder: f.Placeholder,
			HelpText:    f.HelpText,
			Required:    f.Required,
			Options:     append([]string(nil), f.Options...),
			Min:         f.Min,
			Max:         f.Max,
			Step:        f.Step,
			Content:     f.Content,
			Currency:    f.Currency,
			Amount:      f.Amount,
			Products:    append([]models.Product(nil), f.Products...),
		})
	}
	return out
}
