package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/inspecta/inspecta/pkg/flow"
	"github.com/inspecta/inspecta/pkg/persistence"
	"github.com/inspecta/inspecta/pkg/workflow"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func conflict(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(409).
		WithInstance(c.Path()).
		WithType("conflict").
		WithDetail(detail)

	return c.Status(fiber.StatusConflict).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleRunError maps run and flow errors onto problem responses.
func handleRunError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, workflow.ErrRunNotFound),
		persistence.IsRunNotFound(err):
		return notFound(c, "Run not found")

	case errors.Is(err, flow.ErrTitleRequired),
		errors.Is(err, workflow.ErrNoSteps),
		errors.Is(err, workflow.ErrNotPhotoStep),
		errors.Is(err, workflow.ErrPhotoNotFound),
		errors.Is(err, workflow.ErrInvalidDefinition):
		return badRequest(c, err.Error())

	case errors.Is(err, workflow.ErrRunDone),
		errors.Is(err, workflow.ErrRunNotCompleted),
		errors.Is(err, workflow.ErrPhotoQuota),
		errors.Is(err, workflow.ErrSkipNotAllowed),
		errors.Is(err, workflow.ErrSkipOnLastStep):
		return conflict(c, err.Error())

	default:
		return internalError(c, err)
	}
}
