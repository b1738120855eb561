package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormStats_ComputeCompletionRate(t *testing.T) {
	tests := []struct {
		name      string
		views     int64
		responses int64
		want      float64
	}{
		{"no views", 0, 0, 0},
		{"responses without views", 0, 3, 0},
		{"half", 10, 5, 50},
		{"rounded to one decimal", 3, 1, 33.3},
		{"two thirds", 3, 2, 66.7},
		{"capped", 2, 5, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := FormStats{Views: tt.views, Responses: tt.responses}
			assert.Equal(t, tt.want, s.ComputeCompletionRate())
		})
	}
}

func TestForm_FillDerived(t *testing.T) {
	f := &Form{Stats: FormStats{Views: 4, Responses: 1}}
	f.FillDerived()
	assert.Equal(t, 25.0, f.Stats.CompletionRate)
	assert.NotNil(t, f.Collaborators)
	assert.NotNil(t, f.Fields)
}

func TestForm_InputFieldsAndLookup(t *testing.T) {
	f := &Form{Fields: []Field{
		{ID: "h", Kind: FieldHeading, Label: "Intro"},
		{ID: "name", Kind: FieldText, Label: "Name"},
		{ID: "pay", Kind: FieldPayment, Label: "Pay"},
	}}
	inputs := f.InputFields()
	assert.Len(t, inputs, 1)
	assert.Equal(t, "name", inputs[0].ID)

	field, ok := f.FieldByID("pay")
	assert.True(t, ok)
	assert.Equal(t, FieldPayment, field.Kind)
	_, ok = f.FieldByID("missing")
	assert.False(t, ok)
}

func TestForm_ToPublicOmitsOwnerData(t *testing.T) {
	f := &Form{
		ID:            "f1",
		OwnerID:       "u1",
		OwnerEmail:    "owner@example.com",
		Title:         "Survey",
		Collaborators: []string{"friend@example.com"},
		Fields:        []Field{{ID: "a", Kind: FieldText}},
		Stats:         FormStats{Views: 9},
	}
	p := f.ToPublic()
	assert.Equal(t, "f1", p.ID)
	assert.Equal(t, "Survey", p.Title)
	p.Fields[0].ID = "changed"
	assert.Equal(t, "a", f.Fields[0].ID)
}

func TestFormStatus_Valid(t *testing.T) {
	assert.True(t, StatusDraft.Valid())
	assert.True(t, StatusPublished.Valid())
	assert.True(t, StatusCompleted.Valid())
	assert.False(t, FormStatus("archived").Valid())
}
