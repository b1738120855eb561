// Package ai adapts Google's Gemini models to the form generator port.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"formcraft-backend-go/internal/models"
)

const defaultModel = "gemini-2.0-flash"

// ErrEmptyAnswer is returned when the model produced no text.
var ErrEmptyAnswer = errors.New("model returned an empty answer")

// contentGenerator is the subset of genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient generates form JSON with a Gemini model constrained by a response schema.
type GeminiClient struct {
	models contentGenerator
	model  string
	logger *zap.Logger
}

// NewGeminiClient creates a client for the Gemini API.
func NewGeminiClient(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newGeminiClient(client.Models, model, logger), nil
}

func newGeminiClient(models contentGenerator, model string, logger *zap.Logger) *GeminiClient {
	if model == "" {
		model = defaultModel
	}
	return &GeminiClient{models: models, model: model, logger: logger}
}

// GenerateFormJSON sends prompt and returns the raw JSON answer. There is no retry.
func (c *GeminiClient) GenerateFormJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), generationConfig())
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyAnswer
	}
	c.logger.Debug("Gemini answered", zap.String("model", c.model), zap.Int("bytes", len(text)))
	return text, nil
}

func generationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.7),
		ResponseMIMEType: "application/json",
		ResponseSchema:   FormSchema(),
	}
}

// ungeneratedKinds are never offered to the model: they need uploads,
// payment setup or are display-only.
var ungeneratedKinds = map[models.FieldKind]bool{
	models.FieldFile:      true,
	models.FieldSignature: true,
	models.FieldPayment:   true,
	models.FieldProduct:   true,
	models.FieldContent:   true,
	models.FieldHeading:   true,
}

func generatedKinds() []string {
	kinds := make([]string, 0, len(models.AllFieldKinds()))
	for _, k := range models.AllFieldKinds() {
		if !ungeneratedKinds[k] {
			kinds = append(kinds, string(k))
		}
	}
	return kinds
}

// FormSchema describes the title, description and fields object the model must return.
func FormSchema() *genai.Schema {
	field := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"type": {
				Type: genai.TypeString,
				Enum: generatedKinds(),
			},
			"label":       {Type: genai.TypeString},
			"placeholder": {Type: genai.TypeString},
			"required":    {Type: genai.TypeBoolean},
			"options":     {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"min":         {Type: genai.TypeNumber},
			"max":         {Type: genai.TypeNumber},
		},
		Required:         []string{"type", "label", "required"},
		PropertyOrdering: []string{"type", "label", "placeholder", "required", "options", "min", "max"},
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":       {Type: genai.TypeString},
			"description": {Type: genai.TypeString},
			"fields": {
				Type:     genai.TypeArray,
				Items:    field,
				MinItems: genai.Ptr[int64](5),
				MaxItems: genai.Ptr[int64](10),
			},
		},
		Required:         []string{"title", "description", "fields"},
		PropertyOrdering: []string{"title", "description", "fields"},
	}
}
