// Package main provides the Inspecta run API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"

	"github.com/inspecta/inspecta/pkg/client"
	"github.com/inspecta/inspecta/pkg/flow"
	"github.com/inspecta/inspecta/pkg/notify"
	"github.com/inspecta/inspecta/pkg/persistence"
	"github.com/inspecta/inspecta/pkg/web"
	"github.com/inspecta/inspecta/pkg/workflow"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	client      *client.Client
	tracer      trace.Tracer
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	apiClient *client.Client,
	tracer trace.Tracer,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		client:      apiClient,
		tracer:      tracer,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() (*fiber.App, error) {
	repository, err := workflow.NewRepository(a.client)
	if err != nil {
		return nil, err
	}

	manager := workflow.NewManager(a.persistence, a.logger)

	flowOpts := []flow.Option{flow.WithNotifier(notify.NewLogger(a.logger))}
	if a.tracer != nil {
		flowOpts = append(flowOpts, flow.WithTracer(a.tracer))
	}

	flowService := flow.NewService(a.client, repository, a.logger, flowOpts...)

	handlers := web.NewAPIHandlers(flowService, manager, a.persistence, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Inspecta API")
	})

	app.Get("/inspection-types", handlers.GetInspectionTypes)

	r := app.Group("/runs")
	r.Post("/", handlers.CreateRun)
	r.Get("/", handlers.GetRuns)
	r.Get("/:id", handlers.GetRun)
	r.Delete("/:id", handlers.AbandonRun)
	r.Put("/:id/answers", handlers.SetAnswer)
	r.Post("/:id/photos", handlers.AddPhoto)
	r.Delete("/:id/photos/:index", handlers.RemovePhoto)
	r.Post("/:id/next", handlers.Next)
	r.Post("/:id/previous", handlers.Previous)
	r.Post("/:id/skip", handlers.Skip)
	r.Post("/:id/complete", handlers.CompleteRun)

	app.Get("/health", handlers.HealthCheck)

	return app, nil
}

func (a *API) Start(port int) error {
	app, err := a.App()
	if err != nil {
		return err
	}

	return app.Listen(":" + strconv.Itoa(port))
}
