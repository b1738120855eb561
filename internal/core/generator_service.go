package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"formcraft-backend-go/internal/models"
)

const (
	minTopicLength     = 3
	maxTopicLength     = 500
	minGeneratedFields = 5
	maxGeneratedFields = 10
)

const generatorPrompt = `You design online forms. Create a form about the topic below.
Return JSON with "title", "description" and "fields". Use between 5 and 10 fields.
Each field has "type" (one of text, textarea, email, number, phone, url, date, time, select,
multiselect, radio, checkbox, rating, scale, slider), "label", optional "placeholder",
"required", "options" for select, multiselect and radio, and optional "min" and "max" for
numeric kinds.

Topic: %s`

// GeneratedForm is a form draft produced from a topic.
type GeneratedForm struct {
	Topic       string         `json:"topic"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Fields      []models.Field `json:"fields"`
}

// generatedPayload is the JSON shape requested from the model.
type generatedPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Fields      []struct {
		Type        string   `json:"type"`
		Label       string   `json:"label"`
		Placeholder string   `json:"placeholder"`
		Required    bool     `json:"required"`
		Options     []string `json:"options"`
		Min         *float64 `json:"min"`
		Max         *float64 `json:"max"`
	} `json:"fields"`
}

// kindAliases maps loose type names a model may answer with onto field kinds.
var kindAliases = map[string]models.FieldKind{
	"string":       models.FieldText,
	"short_text":   models.FieldText,
	"shorttext":    models.FieldText,
	"long_text":    models.FieldTextarea,
	"paragraph":    models.FieldTextarea,
	"tel":          models.FieldPhone,
	"telephone":    models.FieldPhone,
	"integer":      models.FieldNumber,
	"dropdown":     models.FieldSelect,
	"multi_select": models.FieldMultiSelect,
	"checkboxes":   models.FieldMultiSelect,
	"multiple":     models.FieldRadio,
	"radio_button": models.FieldRadio,
	"stars":        models.FieldRating,
	"range":        models.FieldSlider,
	"link":         models.FieldURL,
	"website":      models.FieldURL,
}

// generatorService implements the GeneratorService interface.
type generatorService struct {
	generator FormGenerator
	logger    *zap.Logger
}

// NewGeneratorService creates a new GeneratorService. A nil generator makes
// every call fail with ErrGeneratorUnavailable.
func NewGeneratorService(generator FormGenerator, logger *zap.Logger) GeneratorService {
	return &generatorService{generator: generator, logger: logger}
}

// Generate asks the model for a form about topic. There is no retry: any
// model or parse failure surfaces as ErrGenerationFailed.
func (s *generatorService) Generate(ctx context.Context, topic string) (*GeneratedForm, error) {
	if s.generator == nil {
		return nil, ErrGeneratorUnavailable
	}
	topic = strings.TrimSpace(topic)
	if n := utf8.RuneCountInString(topic); n < minTopicLength || n > maxTopicLength {
		verr := NewValidationError()
		verr.Addf("topic", "Topic must be between %d and %d characters", minTopicLength, maxTopicLength)
		return nil, verr
	}

	raw, err := s.generator.GenerateFormJSON(ctx, fmt.Sprintf(generatorPrompt, topic))
	if err != nil {
		s.logger.Error("Form generation request failed", zap.Error(err))
		return nil, ErrGenerationFailed
	}

	gen, err := parseGeneratedForm(raw)
	if err != nil {
		s.logger.Warn("Unusable form generation answer", zap.Error(err))
		return nil, ErrGenerationFailed
	}
	gen.Topic = topic
	return gen, nil
}

// parseGeneratedForm decodes and normalizes the model answer.
func parseGeneratedForm(raw string) (*GeneratedForm, error) {
	var payload generatedPayload
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode generated form: %w", err)
	}

	title := strings.TrimSpace(payload.Title)
	if title == "" {
		return nil, errors.New("generated form has no title")
	}
	title = truncateRunes(title, maxTitleLength)
	description := truncateRunes(strings.TrimSpace(payload.Description), maxDescriptionLength)

	fields := make([]models.Field, 0, len(payload.Fields))
	for _, pf := range payload.Fields {
		label := strings.TrimSpace(pf.Label)
		if label == "" {
			continue
		}
		f := models.Field{
			Kind:        mapGeneratedKind(pf.Type),
			Label:       label,
			Placeholder: strings.TrimSpace(pf.Placeholder),
			Required:    pf.Required,
			Options:     pf.Options,
			Min:         pf.Min,
			Max:         pf.Max,
		}
		if f.Kind.HasOptions() && len(f.Options) == 0 {
			f.Kind = models.FieldText
		}
		// A checkbox with options is a multi-choice group.
		if !f.Kind.HasOptions() && !(f.Kind == models.FieldCheckbox && len(f.Options) > 0) {
			f.Options = nil
		}
		fields = append(fields, f)
		if len(fields) == maxGeneratedFields {
			break
		}
	}
	if len(fields) < minGeneratedFields {
		return nil, fmt.Errorf("generated form has %d usable fields, need at least %d", len(fields), minGeneratedFields)
	}

	normalized, verr := normalizeFields(fields)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return &GeneratedForm{Title: title, Description: description, Fields: normalized}, nil
}

// mapGeneratedKind maps a model type name onto a field kind, falling back to text.
// Display and payment kinds are never generated.
func mapGeneratedKind(name string) models.FieldKind {
	name = strings.ToLower(strings.TrimSpace(name))
	kind := models.FieldKind(name)
	if alias, ok := kindAliases[name]; ok {
		kind = alias
	}
	if !kind.Valid() || !kind.IsInput() || kind == models.FieldProduct || kind == models.FieldSignature || kind == models.FieldFile {
		return models.FieldText
	}
	return kind
}

// stripCodeFence removes a surrounding markdown code fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
