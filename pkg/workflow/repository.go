package workflow

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"

	"github.com/inspecta/inspecta/pkg/models"
)

//go:embed schema.json
var definitionSchema string

// ErrInvalidDefinition wraps every schema or struct validation failure
// on a fetched workflow definition.
var ErrInvalidDefinition = errors.New("invalid workflow definition")

// DefinitionSource fetches workflow definitions. The API client
// satisfies it; tests supply fakes.
type DefinitionSource interface {
	WorkflowsByInspectionType(ctx context.Context, typeID int) ([]*models.Workflow, error)
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
}

// Repository fetches workflow definitions and refuses to hand out any
// definition that does not pass schema validation. A malformed
// definition from the server must never reach a running cursor.
type Repository struct {
	source   DefinitionSource
	schema   *gojsonschema.Schema
	validate *validator.Validate
}

func NewRepository(source DefinitionSource) (*Repository, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(definitionSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile workflow definition schema: %w", err)
	}

	return &Repository{
		source:   source,
		schema:   schema,
		validate: validator.New(),
	}, nil
}

// DefaultForInspectionType resolves the definition an inspection of the
// given type should run: the one flagged default, else the first
// configured one. No configured workflow is a valid state and returns
// nil with no error; the inspection proceeds unguided.
func (r *Repository) DefaultForInspectionType(ctx context.Context, typeID int) (*models.Workflow, error) {
	workflows, err := r.source.WorkflowsByInspectionType(ctx, typeID)
	if err != nil {
		return nil, err
	}

	if len(workflows) == 0 {
		return nil, nil
	}

	selected := workflows[0]

	for _, wf := range workflows {
		if wf.IsDefault {
			selected = wf

			break
		}
	}

	if len(selected.Steps) == 0 {
		// List endpoints may omit steps; refetch the full definition.
		selected, err = r.source.WorkflowByID(ctx, selected.ID)
		if err != nil {
			return nil, err
		}
	}

	if err := r.Validate(selected); err != nil {
		return nil, err
	}

	return selected, nil
}

// FetchByID fetches and validates one full definition.
func (r *Repository) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	wf, err := r.source.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.Validate(wf); err != nil {
		return nil, err
	}

	return wf, nil
}

// Validate checks a definition against the embedded JSON schema and the
// struct tags on the model.
func (r *Repository) Validate(wf *models.Workflow) error {
	if wf == nil {
		return fmt.Errorf("%w: definition is empty", ErrInvalidDefinition)
	}

	document, err := json.Marshal(wf)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}

	result, err := r.schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return fmt.Errorf("%w: %s", ErrInvalidDefinition, strings.Join(details, "; "))
	}

	if err := r.validate.Struct(wf); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}

	return nil
}
