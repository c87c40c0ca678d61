package models

// FieldType identifies the input affordance a form field renders as.
type FieldType string

const (
	FieldTypeText        FieldType = "TEXT"
	FieldTypeNumber      FieldType = "NUMBER"
	FieldTypeEmail       FieldType = "EMAIL"
	FieldTypePhone       FieldType = "PHONE"
	FieldTypeURL         FieldType = "URL"
	FieldTypeDate        FieldType = "DATE"
	FieldTypeTime        FieldType = "TIME"
	FieldTypeDateTime    FieldType = "DATETIME"
	FieldTypeTextArea    FieldType = "TEXTAREA"
	FieldTypeSelect      FieldType = "SELECT"
	FieldTypeMultiSelect FieldType = "MULTISELECT"
	FieldTypeCheckbox    FieldType = "CHECKBOX"
	FieldTypeRadio       FieldType = "RADIO"
	FieldTypeFile        FieldType = "FILE"
)

// FieldWidth is a layout hint only; it never affects behavior.
type FieldWidth string

const (
	WidthFull    FieldWidth = "full"
	WidthHalf    FieldWidth = "half"
	WidthThird   FieldWidth = "third"
	WidthQuarter FieldWidth = "quarter"
)

// Form groups fields inside a FORM step.
type Form struct {
	ID          string   `json:"id"          validate:"required"`
	Name        string   `json:"name"        validate:"required"`
	Description string   `json:"description"`
	Fields      []*Field `json:"fields"      validate:"dive"`
}

// Field describes one form field. ID is the unique key into the answer map.
type Field struct {
	ID        string    `json:"id"         validate:"required"`
	Label     string    `json:"label"      validate:"required"`
	FieldType FieldType `json:"field_type"`
	Sequence  int       `json:"sequence"`

	IsRequired   bool   `json:"is_required"`
	Placeholder  string `json:"placeholder,omitempty"`
	HelpText     string `json:"help_text,omitempty"`
	DefaultValue string `json:"default_value,omitempty"`

	// String constraints (TEXT, TEXTAREA).
	MinLength *int   `json:"min_length,omitempty"`
	MaxLength *int   `json:"max_length,omitempty"`
	Pattern   string `json:"pattern,omitempty"`

	// Numeric constraints (NUMBER).
	MinValue *float64 `json:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty"`

	// Choice fields (SELECT, MULTISELECT, RADIO).
	Options []FieldOption `json:"options,omitempty"`

	Width FieldWidth `json:"width,omitempty"`

	// Conditional display hook. Fields declaring these are still always
	// shown; see render.Input.Visible.
	ShowIfField string `json:"show_if_field,omitempty"`
	ShowIfValue string `json:"show_if_value,omitempty"`
}

// FieldOption is one selectable choice of a choice field.
type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
