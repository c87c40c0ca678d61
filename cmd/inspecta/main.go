// Package main provides the Inspecta command line interface.
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"

	"github.com/inspecta/inspecta/pkg/log"
)

func main() {
	_ = godotenv.Load()

	command := &cli.Command{
		Name:                  "inspecta",
		Usage:                 "Inspect cargo and containers with guided workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "backend-url",
				Usage:    "Base URL of the inspection backend API",
				Required: true,
				Sources:  cli.EnvVars("BACKEND_URL"),
			},
			&cli.StringFlag{
				Name:    "backend-token",
				Usage:   "Bearer token for the inspection backend API",
				Sources: cli.EnvVars("BACKEND_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			InspectCommand(),
			WorkflowsCommand(),
			CargoSnapCommand(),
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		log.WithModule("cli").Error("command failed", "error", err)
		os.Exit(1)
	}
}
