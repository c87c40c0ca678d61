// Package flow orchestrates the inspection lifecycle around a workflow
// run: resolve the workflow for an inspection type, create and start
// the backend inspection record, and on completion push the collected
// photos and close the inspection.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/inspecta/inspecta/pkg/client"
	"github.com/inspecta/inspecta/pkg/models"
	"github.com/inspecta/inspecta/pkg/notify"
	"github.com/inspecta/inspecta/pkg/otelhelper"
	"github.com/inspecta/inspecta/pkg/workflow"
)

var ErrTitleRequired = errors.New("inspection title is required")

// API is the backend surface the flow needs. *client.Client satisfies it.
type API interface {
	InspectionTypes(ctx context.Context) ([]models.InspectionType, error)
	CreateInspection(ctx context.Context, inspection *models.Inspection) (*models.Inspection, error)
	StartInspection(ctx context.Context, id int) error
	CompleteInspection(ctx context.Context, id int) error
	UploadPhoto(ctx context.Context, upload client.PhotoUpload) error
}

// WorkflowSource resolves the definition an inspection type should run.
type WorkflowSource interface {
	DefaultForInspectionType(ctx context.Context, typeID int) (*models.Workflow, error)
}

// Service drives one inspection from creation through completion.
type Service struct {
	api       API
	workflows WorkflowSource
	notifier  notify.Notifier
	tracer    trace.Tracer
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) { s.tracer = tracer }
}

func NewService(api API, workflows WorkflowSource, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		api:       api,
		workflows: workflows,
		notifier:  notify.Discard{},
		tracer:    noop.NewTracerProvider().Tracer("flow"),
		logger:    logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// InspectionTypes lists the available inspection categories.
func (s *Service) InspectionTypes(ctx context.Context) ([]models.InspectionType, error) {
	return s.api.InspectionTypes(ctx)
}

// WorkflowForType resolves the workflow an inspection of this type
// should run. nil with no error means the type has no guided workflow.
func (s *Service) WorkflowForType(ctx context.Context, typeID int) (*models.Workflow, error) {
	return s.workflows.DefaultForInspectionType(ctx, typeID)
}

// CreateInspection creates the backend record and immediately starts it,
// returning the record with its server-assigned ID.
func (s *Service) CreateInspection(ctx context.Context, draft *models.Inspection) (*models.Inspection, error) {
	if draft == nil || draft.Title == "" {
		return nil, ErrTitleRequired
	}

	draft.Status = models.InspectionStatusInProgress

	created, err := s.api.CreateInspection(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("failed to create inspection: %w", err)
	}

	if err := s.api.StartInspection(ctx, created.ID); err != nil {
		return nil, fmt.Errorf("failed to start inspection %d: %w", created.ID, err)
	}

	s.logger.Info("inspection created", "inspection_id", created.ID, "type", created.InspectionType)

	return created, nil
}

// Complete uploads the run's photos and closes the inspection. Photos go
// up one at a time in step order, then capture order. A failed upload is
// logged and skipped; after the batch a single warning reports how many
// were lost. Upload failures never abort completion.
func (s *Service) Complete(ctx context.Context, inspectionID int, wf *models.Workflow, result *workflow.Result) error {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "flow.complete",
		attribute.Int(otelhelper.InspectionIDKey, inspectionID),
		attribute.String(otelhelper.WorkflowIDKey, result.WorkflowID),
	)
	defer span.End()

	uploaded, failed := s.uploadPhotos(ctx, inspectionID, wf, result)
	span.SetAttributes(attribute.Int(otelhelper.PhotoCountKey, uploaded))

	if failed > 0 {
		s.notifier.Warning(fmt.Sprintf("%d foto(s) não puderam ser enviadas", failed))
	}

	if err := s.api.CompleteInspection(ctx, inspectionID); err != nil {
		otelhelper.SetError(span, err)
		s.notifier.Error("Erro ao concluir inspeção")

		return fmt.Errorf("failed to complete inspection %d: %w", inspectionID, err)
	}

	s.releasePreviews(result)
	s.notifier.Success("Inspeção concluída com sucesso!")
	s.logger.Info("inspection completed",
		"inspection_id", inspectionID, "photos_uploaded", uploaded, "photos_failed", failed)

	return nil
}

func (s *Service) uploadPhotos(ctx context.Context, inspectionID int, wf *models.Workflow, result *workflow.Result) (uploaded, failed int) {
	for _, step := range wf.Steps {
		for _, photo := range result.PhotosByStep[step.ID] {
			upload := client.PhotoUpload{
				InspectionID: inspectionID,
				Photo:        photo,
				Description:  step.Name,
			}

			if err := s.api.UploadPhoto(ctx, upload); err != nil {
				failed++

				s.logger.Error("failed to upload photo",
					"inspection_id", inspectionID, "step_id", step.ID,
					"filename", photo.Filename, "error", err)

				continue
			}

			uploaded++
		}
	}

	return uploaded, failed
}

func (s *Service) releasePreviews(result *workflow.Result) {
	for stepID, photos := range result.PhotosByStep {
		for _, photo := range photos {
			if err := photo.Preview.Release(); err != nil {
				s.logger.Warn("failed to release photo preview", "step_id", stepID, "error", err)
			}
		}
	}
}
