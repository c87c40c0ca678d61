// Package models defines the core domain models for guided inspection workflows.
package models

// StepType identifies what kind of interaction a workflow step demands.
type StepType string

const (
	StepTypeForm      StepType = "FORM"      // Fill one or more forms
	StepTypePhoto     StepType = "PHOTO"     // Capture photos with the device camera
	StepTypeVideo     StepType = "VIDEO"     // Record video
	StepTypeScan      StepType = "SCAN"      // Scan a reference (barcode, seal)
	StepTypeSignature StepType = "SIGNATURE" // Collect a signature
	StepTypeApproval  StepType = "APPROVAL"  // Approval gate
)

// Workflow is a server-defined ordered sequence of steps guiding
// inspection data collection.
type Workflow struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"            validate:"required"`
	Description    string          `json:"description"`
	Code           string          `json:"code,omitempty"`
	InspectionType int             `json:"inspection_type,omitempty"`
	IsActive       bool            `json:"is_active"`
	IsDefault      bool            `json:"is_default"`
	AllowSkipSteps bool            `json:"allow_skip_steps"`
	Version        int             `json:"version,omitempty"`
	Steps          []*WorkflowStep `json:"steps"           validate:"dive"`
}

// WorkflowStep is one unit of a workflow. Order inside Workflow.Steps
// defines traversal order.
type WorkflowStep struct {
	ID          string   `json:"id"          validate:"required"`
	Name        string   `json:"name"        validate:"required"`
	Description string   `json:"description"`
	StepType    StepType `json:"step_type"   validate:"required,oneof=FORM PHOTO VIDEO SCAN SIGNATURE APPROVAL"`
	Sequence    int      `json:"sequence"`
	IsRequired  bool     `json:"is_required"`
	IsSkippable bool     `json:"is_skippable"`

	// PHOTO steps only. MinPhotos zero means no lower bound; a nil
	// MaxPhotos means unbounded.
	MinPhotos int  `json:"min_photos"`
	MaxPhotos *int `json:"max_photos,omitempty"`

	// FORM steps only.
	Forms []*Form `json:"forms,omitempty" validate:"dive"`
}

// Fields flattens every field across all forms of a FORM step, in
// declaration order.
func (s *WorkflowStep) Fields() []*Field {
	var fields []*Field
	for _, form := range s.Forms {
		fields = append(fields, form.Fields...)
	}

	return fields
}
