// Package web provides HTTP request and response types for the inspection run API.
package web

import (
	"github.com/inspecta/inspecta/pkg/models"
	"github.com/inspecta/inspecta/pkg/workflow"
)

// CreateRunRequest represents the request body for creating an
// inspection and starting its workflow run.
type CreateRunRequest struct {
	Title             string `json:"title"              validate:"required,min=3"`
	InspectionType    int    `json:"inspection_type"    validate:"required"`
	ExternalReference string `json:"external_reference,omitempty"`
	Location          string `json:"location,omitempty"`
	CustomerName      string `json:"customer_name,omitempty"`
	ContainerNumber   string `json:"container_number,omitempty"`
	SealNumber        string `json:"seal_number,omitempty"`
	VehiclePlate      string `json:"vehicle_plate,omitempty"`
}

// AnswerRequest represents the request body for recording a field value.
type AnswerRequest struct {
	FieldID string `json:"field_id" validate:"required"`
	Value   any    `json:"value"`
}

// PhotoRequest represents the request body for attaching a photo to the
// current step. Data travels base64-encoded in JSON.
type PhotoRequest struct {
	Data        []byte   `json:"data"         validate:"required"`
	ContentType string   `json:"content_type"`
	Filename    string   `json:"filename"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// StepResponse is the view of the step under the cursor.
type StepResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	StepType    models.StepType `json:"step_type"`
	IsRequired  bool            `json:"is_required"`
	IsSkippable bool            `json:"is_skippable"`
	MinPhotos   int             `json:"min_photos,omitempty"`
	MaxPhotos   *int            `json:"max_photos,omitempty"`
	Forms       []*models.Form  `json:"forms,omitempty"`
}

// RunStateResponse is the full view of a live run the wizard renders from.
type RunStateResponse struct {
	ID           string            `json:"id"`
	InspectionID int               `json:"inspection_id"`
	WorkflowID   string            `json:"workflow_id"`
	Cursor       int               `json:"cursor"`
	TotalSteps   int               `json:"total_steps"`
	Progress     float64           `json:"progress"`
	Done         bool              `json:"done"`
	CurrentStep  *StepResponse     `json:"current_step,omitempty"`
	Errors       map[string]string `json:"errors,omitempty"`
	PhotoCount   int               `json:"photo_count"`
}

// CreateRunResponse pairs the created inspection with its run state.
// Run is null when the inspection type has no guided workflow.
type CreateRunResponse struct {
	Inspection *models.Inspection `json:"inspection"`
	Run        *RunStateResponse  `json:"run,omitempty"`
}

// TransformRunResponse builds the wire view of a live run.
func TransformRunResponse(run *workflow.Run) *RunStateResponse {
	r := run.Runner

	response := &RunStateResponse{
		ID:           run.ID,
		InspectionID: run.InspectionID,
		WorkflowID:   r.Workflow().ID,
		Cursor:       r.Cursor(),
		TotalSteps:   r.TotalSteps(),
		Progress:     r.Progress(),
		Done:         r.Done(),
		PhotoCount:   len(r.Photos()),
	}

	if errs := r.Errors(); len(errs) > 0 {
		response.Errors = errs
	}

	if step := r.CurrentStep(); step != nil {
		response.CurrentStep = &StepResponse{
			ID:          step.ID,
			Name:        step.Name,
			Description: step.Description,
			StepType:    step.StepType,
			IsRequired:  step.IsRequired,
			IsSkippable: step.IsSkippable,
			MinPhotos:   step.MinPhotos,
			MaxPhotos:   step.MaxPhotos,
			Forms:       step.Forms,
		}
	}

	return response
}
