package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeModels struct {
	model  string
	prompt string
	config *genai.GenerateContentConfig
	answer string
	err    error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model, f.config = model, config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: f.answer}}},
		}},
	}, nil
}

func TestGeminiClient_GenerateFormJSON(t *testing.T) {
	t.Parallel()
	models := &fakeModels{answer: ` {"title":"T","description":"D","fields":[]} `}
	client := newGeminiClient(models, "", zap.NewNop())

	out, err := client.GenerateFormJSON(context.Background(), "Topic: pets")
	require.NoError(t, err)

	assert.Equal(t, `{"title":"T","description":"D","fields":[]}`, out)
	assert.Equal(t, defaultModel, models.model)
	assert.Equal(t, "Topic: pets", models.prompt)
	require.NotNil(t, models.config)
	assert.Equal(t, "application/json", models.config.ResponseMIMEType)
	assert.Equal(t, FormSchema(), models.config.ResponseSchema)
}

func TestGeminiClient_Errors(t *testing.T) {
	t.Parallel()
	_, err := newGeminiClient(&fakeModels{err: errors.New("quota exceeded")}, "m", zap.NewNop()).
		GenerateFormJSON(context.Background(), "p")
	assert.ErrorContains(t, err, "quota exceeded")

	_, err = newGeminiClient(&fakeModels{answer: "  "}, "m", zap.NewNop()).
		GenerateFormJSON(context.Background(), "p")
	assert.ErrorIs(t, err, ErrEmptyAnswer)

	_, err = NewGeminiClient(context.Background(), "", "", zap.NewNop())
	assert.Error(t, err)
}

func TestFormSchema(t *testing.T) {
	t.Parallel()
	schema := FormSchema()
	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.ElementsMatch(t, []string{"title", "description", "fields"}, schema.Required)

	fields := schema.Properties["fields"]
	require.NotNil(t, fields)
	assert.Equal(t, genai.TypeArray, fields.Type)
	assert.EqualValues(t, 5, *fields.MinItems)
	assert.EqualValues(t, 10, *fields.MaxItems)
	assert.Equal(t, []string{
		"text", "textarea", "email", "number", "phone", "url", "date", "time",
		"select", "multiselect", "radio", "checkbox", "rating", "slider", "scale",
	}, fields.Items.Properties["type"].Enum)
	assert.NotContains(t, fields.Items.Properties["type"].Enum, "payment")
}
