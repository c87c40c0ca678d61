package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inspecta/inspecta/pkg/models"
	"github.com/inspecta/inspecta/pkg/render"
)

type change struct {
	fieldID string
	value   any
}

func collector(changes *[]change) render.ChangeFunc {
	return func(fieldID string, value any) {
		*changes = append(*changes, change{fieldID: fieldID, value: value})
	}
}

func TestField_KindMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		fieldType models.FieldType
		kind      render.Kind
	}{
		{models.FieldTypeText, render.KindText},
		{models.FieldTypeNumber, render.KindNumber},
		{models.FieldTypeEmail, render.KindEmail},
		{models.FieldTypePhone, render.KindPhone},
		{models.FieldTypeURL, render.KindURL},
		{models.FieldTypeDate, render.KindDate},
		{models.FieldTypeTime, render.KindTime},
		{models.FieldTypeDateTime, render.KindDateTime},
		{models.FieldTypeTextArea, render.KindTextArea},
		{models.FieldTypeSelect, render.KindSelect},
		{models.FieldTypeMultiSelect, render.KindMultiSelect},
		{models.FieldTypeCheckbox, render.KindCheckbox},
		{models.FieldTypeRadio, render.KindRadio},
		{models.FieldTypeFile, render.KindFile},
		{"HOLOGRAM", render.KindText}, // unknown falls back to text
		{"", render.KindText},
	}

	for _, tt := range tests {
		t.Run(string(tt.fieldType)+"->"+string(tt.kind), func(t *testing.T) {
			t.Parallel()

			input := render.Field(&models.Field{ID: "f", Label: "F", FieldType: tt.fieldType}, nil, nil)
			assert.Equal(t, tt.kind, input.Control.Kind)
		})
	}
}

func TestField_ControlAttributes(t *testing.T) {
	t.Parallel()

	min, max := 10.0, 99.0
	number := render.Field(&models.Field{
		ID:        "qty",
		Label:     "Quantidade",
		FieldType: models.FieldTypeNumber,
		MinValue:  &min,
		MaxValue:  &max,
	}, nil, nil)

	assert.Equal(t, "any", number.Control.Step)
	require.NotNil(t, number.Control.Min)
	assert.InDelta(t, 10.0, *number.Control.Min, 0.001)

	area := render.Field(&models.Field{
		ID:        "obs",
		Label:     "Observações",
		FieldType: models.FieldTypeTextArea,
	}, nil, nil)
	assert.Equal(t, 4, area.Control.Rows)

	sel := render.Field(&models.Field{
		ID:        "size",
		Label:     "Tamanho",
		FieldType: models.FieldTypeSelect,
		Options:   []models.FieldOption{{Value: "20", Label: "20 pés"}},
	}, nil, nil)
	assert.Equal(t, "Selecione...", sel.Control.EmptyOption)
	assert.Len(t, sel.Control.Options, 1)
}

func TestField_CheckboxLabelDefaultsToSim(t *testing.T) {
	t.Parallel()

	plain := render.Field(&models.Field{
		ID:        "ok",
		Label:     "Conforme",
		FieldType: models.FieldTypeCheckbox,
	}, nil, nil)
	assert.Equal(t, "Sim", plain.Control.CheckLabel)

	custom := render.Field(&models.Field{
		ID:          "ok",
		Label:       "Conforme",
		FieldType:   models.FieldTypeCheckbox,
		Placeholder: "De acordo",
	}, nil, nil)
	assert.Equal(t, "De acordo", custom.Control.CheckLabel)
}

func TestInput_ChangeNormalizesMultiSelect(t *testing.T) {
	t.Parallel()

	var changes []change

	input := render.Field(&models.Field{
		ID:        "damages",
		Label:     "Avarias",
		FieldType: models.FieldTypeMultiSelect,
	}, nil, collector(&changes))

	input.Change([]any{"dent", "rust", 3})
	input.Change(nil)
	input.Change("scratch")

	require.Len(t, changes, 3)
	assert.Equal(t, []string{"dent", "rust"}, changes[0].value)
	assert.Equal(t, []string{}, changes[1].value)
	assert.Equal(t, []string{"scratch"}, changes[2].value)
}

func TestInput_ChangeNormalizesCheckbox(t *testing.T) {
	t.Parallel()

	var changes []change

	input := render.Field(&models.Field{
		ID:        "sealed",
		Label:     "Lacrado",
		FieldType: models.FieldTypeCheckbox,
	}, nil, collector(&changes))

	input.Change(true)
	input.Change("not-a-bool")

	require.Len(t, changes, 2)
	assert.Equal(t, true, changes[0].value)
	assert.Equal(t, false, changes[1].value)
}

func TestInput_FileSelectionAndClearing(t *testing.T) {
	t.Parallel()

	var changes []change

	input := render.Field(&models.Field{
		ID:        "doc",
		Label:     "Documento",
		FieldType: models.FieldTypeFile,
	}, nil, collector(&changes))

	file := &render.FileValue{Name: "bl.pdf", ContentType: "application/pdf", Data: []byte{1}}
	input.Change(file)

	assert.Equal(t, "bl.pdf", input.FileName())

	input.ChangeFile(nil)

	assert.Empty(t, input.FileName())
	require.Len(t, changes, 2)
	assert.Equal(t, file, changes[0].value)
	assert.Nil(t, changes[1].value)
}

func TestInput_VisibleDespiteShowIfRules(t *testing.T) {
	t.Parallel()

	input := render.Field(&models.Field{
		ID:          "extra",
		Label:       "Extra",
		FieldType:   models.FieldTypeText,
		ShowIfField: "sealed",
		ShowIfValue: "true",
	}, nil, nil)

	assert.True(t, input.Visible())
}

func TestInput_ColumnSpan(t *testing.T) {
	t.Parallel()

	full := render.Field(&models.Field{ID: "a", Label: "A", Width: models.WidthFull}, nil, nil)
	half := render.Field(&models.Field{ID: "b", Label: "B", Width: models.WidthHalf}, nil, nil)
	unset := render.Field(&models.Field{ID: "c", Label: "C"}, nil, nil)

	assert.Equal(t, 2, full.ColumnSpan())
	assert.Equal(t, 1, half.ColumnSpan())
	assert.Equal(t, 2, unset.ColumnSpan())
}
