// Package render maps field definitions to concrete input affordances.
// It produces declarative view nodes for the hosting surface to draw and
// routes value-change events back to the workflow engine; it never
// validates.
package render

import "github.com/inspecta/inspecta/pkg/models"

// Kind is the concrete input shape a field renders as.
type Kind string

const (
	KindText        Kind = "text"
	KindNumber      Kind = "number"
	KindEmail       Kind = "email"
	KindPhone       Kind = "tel"
	KindURL         Kind = "url"
	KindDate        Kind = "date"
	KindTime        Kind = "time"
	KindDateTime    Kind = "datetime-local"
	KindTextArea    Kind = "textarea"
	KindSelect      Kind = "select"
	KindMultiSelect Kind = "multiselect"
	KindCheckbox    Kind = "checkbox"
	KindRadio       Kind = "radio"
	KindFile        Kind = "file"
)

// ChangeFunc receives every value change, keyed by field ID.
type ChangeFunc func(fieldID string, value any)

// FileValue is the answer emitted by a FILE control.
type FileValue struct {
	Name        string
	ContentType string
	Data        []byte
}

// Control carries the type-specific attributes of an input shape. Only
// the attributes relevant to the kind are populated.
type Control struct {
	Kind        Kind
	Placeholder string
	Required    bool

	// String inputs.
	MinLength *int
	MaxLength *int
	Pattern   string

	// Numeric inputs. Step "any" allows decimals.
	Min  *float64
	Max  *float64
	Step string

	// Multi-line input.
	Rows int

	// Choice inputs.
	Options     []models.FieldOption
	EmptyOption string
	Multiple    bool

	// Checkbox label; defaults to a literal "Sim" when the field
	// declares no placeholder.
	CheckLabel string
}

// Input is the rendered node for one field: label, control, help text
// and the externally supplied error message, if any.
type Input struct {
	Field   *models.Field
	Control Control
	Value   any
	Error   string

	fileName string
	onChange ChangeFunc
}

// Field renders a definition and its current value into an input node.
// Unknown or missing field types fall back to a plain text input.
func Field(field *models.Field, value any, onChange ChangeFunc) *Input {
	input := &Input{
		Field:    field,
		Control:  buildControl(field),
		Value:    value,
		onChange: onChange,
	}

	if file, ok := value.(*FileValue); ok && file != nil {
		input.fileName = file.Name
	}

	return input
}

// Visible reports whether the field should be shown. Fields declaring
// show_if rules are still always visible.
// TODO: gate on ShowIfField/ShowIfValue once the intended comparison
// semantics are settled product-side.
func (i *Input) Visible() bool {
	return true
}

// ColumnSpan maps the width hint onto a two-column grid.
func (i *Input) ColumnSpan() int {
	switch i.Field.Width {
	case models.WidthHalf, models.WidthThird, models.WidthQuarter:
		return 1
	default:
		return 2
	}
}

// FileName is the display-only name of the selected file.
func (i *Input) FileName() string { return i.fileName }

// Change normalizes and emits a new value. MULTISELECT always emits a
// []string, CHECKBOX a bool; everything else passes through.
func (i *Input) Change(value any) {
	switch i.Control.Kind {
	case KindMultiSelect:
		value = toStringSlice(value)
	case KindCheckbox:
		checked, _ := value.(bool)
		value = checked
	case KindFile:
		i.ChangeFile(asFileValue(value))

		return
	}

	i.Value = value
	i.emit(value)
}

// ChangeFile updates a FILE control. A nil file clears the selection and
// emits nil.
func (i *Input) ChangeFile(file *FileValue) {
	if file == nil {
		i.fileName = ""
		i.Value = nil
		i.emit(nil)

		return
	}

	i.fileName = file.Name
	i.Value = file
	i.emit(file)
}

func (i *Input) emit(value any) {
	if i.onChange != nil {
		i.onChange(i.Field.ID, value)
	}
}

func buildControl(field *models.Field) Control {
	control := Control{
		Placeholder: field.Placeholder,
		Required:    field.IsRequired,
	}

	switch field.FieldType {
	case models.FieldTypeNumber:
		control.Kind = KindNumber
		control.Min = field.MinValue
		control.Max = field.MaxValue
		control.Step = "any"
	case models.FieldTypeEmail:
		control.Kind = KindEmail
	case models.FieldTypePhone:
		control.Kind = KindPhone
	case models.FieldTypeURL:
		control.Kind = KindURL
	case models.FieldTypeDate:
		control.Kind = KindDate
	case models.FieldTypeTime:
		control.Kind = KindTime
	case models.FieldTypeDateTime:
		control.Kind = KindDateTime
	case models.FieldTypeTextArea:
		control.Kind = KindTextArea
		control.Rows = 4
		control.MinLength = field.MinLength
		control.MaxLength = field.MaxLength
	case models.FieldTypeSelect:
		control.Kind = KindSelect
		control.Options = field.Options
		control.EmptyOption = "Selecione..."
	case models.FieldTypeMultiSelect:
		control.Kind = KindMultiSelect
		control.Options = field.Options
		control.Multiple = true
	case models.FieldTypeCheckbox:
		control.Kind = KindCheckbox
		control.CheckLabel = field.Placeholder
		if control.CheckLabel == "" {
			control.CheckLabel = "Sim"
		}
	case models.FieldTypeRadio:
		control.Kind = KindRadio
		control.Options = field.Options
	case models.FieldTypeFile:
		control.Kind = KindFile
	default:
		// TEXT and anything unrecognized.
		control.Kind = KindText
		control.MinLength = field.MinLength
		control.MaxLength = field.MaxLength
		control.Pattern = field.Pattern
	}

	return control
}

func toStringSlice(value any) []string {
	switch v := value.(type) {
	case nil:
		return []string{}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}

		return out
	case string:
		if v == "" {
			return []string{}
		}

		return []string{v}
	default:
		return []string{}
	}
}

func asFileValue(value any) *FileValue {
	file, _ := value.(*FileValue)

	return file
}
