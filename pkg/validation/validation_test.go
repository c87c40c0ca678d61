package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inspecta/inspecta/pkg/models"
	"github.com/inspecta/inspecta/pkg/validation"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func formStep(fields ...*models.Field) *models.WorkflowStep {
	return &models.WorkflowStep{
		ID:       "step-1",
		Name:     "Dados",
		StepType: models.StepTypeForm,
		Forms: []*models.Form{
			{ID: "form-1", Name: "Form", Fields: fields},
		},
	}
}

func TestValidateStep_RequiredFields(t *testing.T) {
	t.Parallel()

	step := formStep(
		&models.Field{ID: "name", Label: "Nome", FieldType: models.FieldTypeText, IsRequired: true},
		&models.Field{ID: "notes", Label: "Notas", FieldType: models.FieldTypeTextArea},
	)

	tests := []struct {
		name    string
		answers map[string]any
		errors  map[string]string
	}{
		{
			name:    "missing required",
			answers: map[string]any{},
			errors:  map[string]string{"name": "Campo obrigatório"},
		},
		{
			name:    "empty string is missing",
			answers: map[string]any{"name": ""},
			errors:  map[string]string{"name": "Campo obrigatório"},
		},
		{
			name:    "unchecked checkbox is missing",
			answers: map[string]any{"name": false},
			errors:  map[string]string{"name": "Campo obrigatório"},
		},
		{
			name:    "empty selection is missing",
			answers: map[string]any{"name": []string{}},
			errors:  map[string]string{"name": "Campo obrigatório"},
		},
		{
			name:    "filled passes",
			answers: map[string]any{"name": "MSC Valeria"},
			errors:  map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			errs := validation.ValidateStep(step, tt.answers, nil)
			assert.Equal(t, validation.ErrorMap(tt.errors), errs)
		})
	}
}

func TestValidateStep_NumericZeroIsPresent(t *testing.T) {
	t.Parallel()

	step := formStep(&models.Field{
		ID:         "damage_count",
		Label:      "Avarias",
		FieldType:  models.FieldTypeNumber,
		IsRequired: true,
	})

	errs := validation.ValidateStep(step, map[string]any{"damage_count": 0}, nil)
	assert.True(t, errs.Empty())
}

func TestValidateStep_NumericBounds(t *testing.T) {
	t.Parallel()

	step := formStep(&models.Field{
		ID:        "weight",
		Label:     "Peso",
		FieldType: models.FieldTypeNumber,
		MinValue:  floatPtr(0),
		MaxValue:  floatPtr(30000),
	})

	tests := []struct {
		name    string
		value   any
		message string
	}{
		{"below zero minimum", -1, "Valor mínimo: 0"},
		{"above maximum", 30001, "Valor máximo: 30000"},
		{"at minimum", 0, ""},
		{"numeric string", "1500.5", ""},
		{"unparseable", "abc", "Número inválido"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			errs := validation.ValidateStep(step, map[string]any{"weight": tt.value}, nil)

			if tt.message == "" {
				assert.True(t, errs.Empty())
			} else {
				assert.Equal(t, tt.message, errs["weight"])
			}
		})
	}
}

func TestValidateStep_EmailShape(t *testing.T) {
	t.Parallel()

	step := formStep(&models.Field{
		ID:        "contact",
		Label:     "Contato",
		FieldType: models.FieldTypeEmail,
	})

	errs := validation.ValidateStep(step, map[string]any{"contact": "not-an-email"}, nil)
	assert.Equal(t, "Email inválido", errs["contact"])

	errs = validation.ValidateStep(step, map[string]any{"contact": "ops@porto.com.br"}, nil)
	assert.True(t, errs.Empty())
}

func TestValidateStep_TextLength(t *testing.T) {
	t.Parallel()

	step := formStep(&models.Field{
		ID:        "seal",
		Label:     "Lacre",
		FieldType: models.FieldTypeText,
		MinLength: intPtr(5),
		MaxLength: intPtr(10),
	})

	errs := validation.ValidateStep(step, map[string]any{"seal": "abc"}, nil)
	assert.Equal(t, "Mínimo 5 caracteres", errs["seal"])

	errs = validation.ValidateStep(step, map[string]any{"seal": "abcdefghijk"}, nil)
	assert.Equal(t, "Máximo 10 caracteres", errs["seal"])
}

func TestValidateStep_PhotoCounts(t *testing.T) {
	t.Parallel()

	step := &models.WorkflowStep{
		ID:        "photos-1",
		Name:      "Fotos",
		StepType:  models.StepTypePhoto,
		MinPhotos: 2,
		MaxPhotos: intPtr(3),
	}

	photos := func(n int) []*models.CapturedPhoto {
		list := make([]*models.CapturedPhoto, n)
		for i := range list {
			list[i] = &models.CapturedPhoto{Filename: "x.jpg"}
		}

		return list
	}

	errs := validation.ValidateStep(step, nil, photos(1))
	assert.Equal(t, "Mínimo de 2 fotos necessário", errs[validation.PhotosKey])

	errs = validation.ValidateStep(step, nil, photos(4))
	assert.Equal(t, "Máximo de 3 fotos permitido", errs[validation.PhotosKey])

	errs = validation.ValidateStep(step, nil, photos(2))
	assert.True(t, errs.Empty())
}

func TestValidateStep_AllViolationsReported(t *testing.T) {
	t.Parallel()

	step := formStep(
		&models.Field{ID: "a", Label: "A", FieldType: models.FieldTypeText, IsRequired: true},
		&models.Field{ID: "b", Label: "B", FieldType: models.FieldTypeEmail},
		&models.Field{ID: "c", Label: "C", FieldType: models.FieldTypeNumber, MinValue: floatPtr(10)},
	)

	errs := validation.ValidateStep(step, map[string]any{
		"b": "broken",
		"c": 5,
	}, nil)

	assert.Len(t, errs, 3)
}

func TestValidateStep_NilStep(t *testing.T) {
	t.Parallel()

	errs := validation.ValidateStep(nil, nil, nil)
	assert.True(t, errs.Empty())
}
