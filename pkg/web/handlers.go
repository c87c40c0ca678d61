// Package web provides HTTP handlers and REST API endpoints for the
// inspection run wizard.
package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/inspecta/inspecta/pkg/flow"
	"github.com/inspecta/inspecta/pkg/models"
	"github.com/inspecta/inspecta/pkg/persistence"
	"github.com/inspecta/inspecta/pkg/workflow"
)

type APIHandlers struct {
	flowService *flow.Service
	manager     *workflow.Manager
	persistence persistence.Persistence
	validator   *validator.Validate
}

func NewAPIHandlers(
	flowService *flow.Service,
	manager *workflow.Manager,
	persistence persistence.Persistence,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		flowService: flowService,
		manager:     manager,
		persistence: persistence,
		validator:   validator,
	}
}

// GetInspectionTypes lists the available inspection categories.
func (h *APIHandlers) GetInspectionTypes(c fiber.Ctx) error {
	types, err := h.flowService.InspectionTypes(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(types)
}

// CreateRun creates an inspection, resolves its workflow and starts a
// run. A type without a configured workflow yields a null run.
func (h *APIHandlers) CreateRun(c fiber.Ctx) error {
	var req CreateRunRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	inspection := &models.Inspection{
		Title:             req.Title,
		InspectionType:    req.InspectionType,
		ExternalReference: req.ExternalReference,
		Location:          req.Location,
		CustomerName:      req.CustomerName,
		ContainerNumber:   req.ContainerNumber,
		SealNumber:        req.SealNumber,
		VehiclePlate:      req.VehiclePlate,
	}

	created, err := h.flowService.CreateInspection(c.Context(), inspection)
	if err != nil {
		return handleRunError(c, err)
	}

	wf, err := h.flowService.WorkflowForType(c.Context(), created.InspectionType)
	if err != nil {
		return handleRunError(c, err)
	}

	response := CreateRunResponse{Inspection: created}

	if wf != nil {
		run, err := h.manager.StartRun(c.Context(), created.ID, wf)
		if err != nil {
			return handleRunError(c, err)
		}

		response.Run = TransformRunResponse(run)
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

// GetRuns lists persisted run snapshots.
func (h *APIHandlers) GetRuns(c fiber.Ctx) error {
	records, err := h.persistence.Runs(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"runs":        records,
		"total_count": len(records),
	})
}

// GetRun returns the live state of one run.
func (h *APIHandlers) GetRun(c fiber.Ctx) error {
	var state *RunStateResponse

	err := h.manager.View(c.Params("id"), func(run *workflow.Run) error {
		state = TransformRunResponse(run)

		return nil
	})
	if err != nil {
		return handleRunError(c, err)
	}

	return c.JSON(state)
}

// SetAnswer records a field value on the current step.
func (h *APIHandlers) SetAnswer(c fiber.Ctx) error {
	var req AnswerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	var state *RunStateResponse

	_, err := h.manager.Update(c.Context(), c.Params("id"), func(run *workflow.Run) error {
		run.Runner.SetAnswer(req.FieldID, req.Value)
		state = TransformRunResponse(run)

		return nil
	})
	if err != nil {
		return handleRunError(c, err)
	}

	return c.JSON(state)
}

// AddPhoto attaches an imported photo to the current step.
func (h *APIHandlers) AddPhoto(c fiber.Ctx) error {
	var req PhotoRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	photo := photoFromRequest(req)

	var state *RunStateResponse

	_, err := h.manager.Update(c.Context(), c.Params("id"), func(run *workflow.Run) error {
		if err := run.Runner.AddPhoto(photo); err != nil {
			return err
		}

		state = TransformRunResponse(run)

		return nil
	})
	if err != nil {
		return handleRunError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(state)
}

// RemovePhoto drops a photo from the current step by position.
func (h *APIHandlers) RemovePhoto(c fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return badRequest(c, "Invalid photo index")
	}

	var state *RunStateResponse

	_, err = h.manager.Update(c.Context(), c.Params("id"), func(run *workflow.Run) error {
		if err := run.Runner.RemovePhoto(index); err != nil {
			return err
		}

		state = TransformRunResponse(run)

		return nil
	})
	if err != nil {
		return handleRunError(c, err)
	}

	return c.JSON(state)
}

// Next validates the current step and advances on success. The response
// carries the error map when the step is blocked.
func (h *APIHandlers) Next(c fiber.Ctx) error {
	var state *RunStateResponse

	_, err := h.manager.Update(c.Context(), c.Params("id"), func(run *workflow.Run) error {
		run.Runner.Next()
		state = TransformRunResponse(run)

		return nil
	})
	if err != nil {
		return handleRunError(c, err)
	}

	return c.JSON(state)
}

// Previous moves back one step.
func (h *APIHandlers) Previous(c fiber.Ctx) error {
	var state *RunStateResponse

	_, err := h.manager.Update(c.Context(), c.Params("id"), func(run *workflow.Run) error {
		run.Runner.Previous()
		state = TransformRunResponse(run)

		return nil
	})
	if err != nil {
		return handleRunError(c, err)
	}

	return c.JSON(state)
}

// Skip advances without validating, when the step allows it.
func (h *APIHandlers) Skip(c fiber.Ctx) error {
	var state *RunStateResponse

	_, err := h.manager.Update(c.Context(), c.Params("id"), func(run *workflow.Run) error {
		if err := run.Runner.Skip(); err != nil {
			return err
		}

		state = TransformRunResponse(run)

		return nil
	})
	if err != nil {
		return handleRunError(c, err)
	}

	return c.JSON(state)
}

// CompleteRun pushes the finished run's photos to the backend and closes
// the inspection.
func (h *APIHandlers) CompleteRun(c fiber.Ctx) error {
	id := c.Params("id")

	// The result is extracted under the manager lock. Once a run is done
	// every mutating runner method is a no-op, so the backend calls below
	// can run unlocked.
	var (
		inspectionID int
		wf           *models.Workflow
		result       *workflow.Result
	)

	err := h.manager.View(id, func(run *workflow.Run) error {
		res, err := run.Runner.Result()
		if err != nil {
			return err
		}

		inspectionID = run.InspectionID
		wf = run.Runner.Workflow()
		result = res

		return nil
	})
	if err != nil {
		return handleRunError(c, err)
	}

	if err := h.flowService.Complete(c.Context(), inspectionID, wf, result); err != nil {
		return internalError(c, err)
	}

	if err := h.manager.EndRun(c.Context(), id); err != nil {
		return handleRunError(c, err)
	}

	return c.JSON(fiber.Map{
		"inspection_id": inspectionID,
		"status":        models.InspectionStatusCompleted,
	})
}

// AbandonRun ends a run before completion, releasing its resources.
func (h *APIHandlers) AbandonRun(c fiber.Ctx) error {
	if err := h.manager.EndRun(c.Context(), c.Params("id")); err != nil {
		return handleRunError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// HealthCheck reports persistence health.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	message := "Inspecta API is healthy"
	httpStatus := http.StatusOK

	err := h.persistence.HealthCheck(c.Context())
	if err != nil {
		status = "unhealthy"
		message = "Inspecta API is unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
}

func photoFromRequest(req PhotoRequest) *models.CapturedPhoto {
	contentType := req.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	now := time.Now()

	filename := req.Filename
	if filename == "" {
		filename = fmt.Sprintf("photo_%s.jpg", now.Format("20060102_150405.000"))
	}

	photo := &models.CapturedPhoto{
		Data:        req.Data,
		ContentType: contentType,
		Filename:    filename,
		CapturedAt:  now,
	}

	if req.Latitude != nil && req.Longitude != nil {
		photo.Location = &models.Geolocation{
			Latitude:  *req.Latitude,
			Longitude: *req.Longitude,
		}
	}

	return photo
}
