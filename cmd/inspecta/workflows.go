package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"

	"github.com/inspecta/inspecta/pkg/client"
	"github.com/inspecta/inspecta/pkg/log"
	"github.com/inspecta/inspecta/pkg/models"
	"github.com/inspecta/inspecta/pkg/session"
	"github.com/inspecta/inspecta/pkg/workflow"
)

func WorkflowsCommand() *cli.Command {
	return &cli.Command{
		Name:    "workflows",
		Aliases: []string{"w"},
		Usage:   "Inspect workflow definitions",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List workflow definitions",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "inspection-type",
						Usage: "Filter by inspection type ID",
					},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					return listWorkflows(ctx, command)
				},
			},
			{
				Name:      "show",
				Usage:     "Show one workflow definition, validated",
				ArgsUsage: "<workflow-id>",
				Action: func(ctx context.Context, command *cli.Command) error {
					return showWorkflow(ctx, command)
				},
			},
		},
	}
}

type workflowListItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
	Steps     int    `json:"steps"`
}

func listWorkflows(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))
	apiClient := newClient(command)

	var (
		workflows []*models.Workflow
		err       error
	)

	if typeID := command.Int("inspection-type"); typeID > 0 {
		workflows, err = apiClient.WorkflowsByInspectionType(ctx, typeID)
	} else {
		workflows, err = apiClient.Workflows(ctx)
	}

	if err != nil {
		return err
	}

	items := make([]*workflowListItem, 0, len(workflows))
	for _, wf := range workflows {
		items = append(items, &workflowListItem{
			ID:        wf.ID,
			Name:      wf.Name,
			IsDefault: wf.IsDefault,
			Steps:     len(wf.Steps),
		})
	}

	return printJSON(items)
}

func showWorkflow(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	id := command.Args().First()
	if id == "" {
		return fmt.Errorf("workflow ID is required")
	}

	repository, err := workflow.NewRepository(newClient(command))
	if err != nil {
		return err
	}

	wf, err := repository.FetchByID(ctx, id)
	if err != nil {
		return err
	}

	return printJSON(wf)
}

func newClient(command *cli.Command) *client.Client {
	return client.New(command.String("backend-url"),
		client.WithTokenSource(tokenSource(command)),
		client.WithLogger(log.WithModule("cli")),
	)
}

// tokenSource prefers an explicit flag token; without one the persisted
// login session supplies the bearer token.
func tokenSource(command *cli.Command) client.TokenSource {
	if token := command.String("backend-token"); token != "" {
		return func() string { return token }
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return func() string { return "" }
	}

	sess, err := session.New(session.NewFileStore(filepath.Join(dir, "inspecta")))
	if err != nil {
		log.WithModule("cli").Warn("failed to restore session", "error", err)

		return func() string { return "" }
	}

	return sess.Token
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(value)
}
