package main

import (
	"context"

	cli "github.com/urfave/cli/v3"

	"github.com/inspecta/inspecta/pkg/cargosnap"
	"github.com/inspecta/inspecta/pkg/log"
)

func CargoSnapCommand() *cli.Command {
	downloadFlag := &cli.BoolFlag{
		Name:  "download-images",
		Usage: "Also pull image binaries from the CargoSnap platform",
	}

	return &cli.Command{
		Name:    "cargosnap",
		Aliases: []string{"cs"},
		Usage:   "Manage the CargoSnap integration",
		Commands: []*cli.Command{
			{
				Name:  "stats",
				Usage: "Show aggregate counters over the synced file set",
				Action: func(ctx context.Context, command *cli.Command) error {
					log.Setup(command.String("log-level"))

					stats, err := newCargoSnap(command).Stats(ctx)
					if err != nil {
						return err
					}

					return printJSON(stats)
				},
			},
			{
				Name:  "files",
				Usage: "List synced CargoSnap files",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Value: 1},
					&cli.IntFlag{Name: "limit", Value: 20},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					log.Setup(command.String("log-level"))

					files, err := newCargoSnap(command).Files(ctx,
						command.Int("page"), command.Int("limit"))
					if err != nil {
						return err
					}

					return printJSON(files)
				},
			},
			{
				Name:  "sync",
				Usage: "Trigger one backend sync pass",
				Flags: []cli.Flag{downloadFlag},
				Action: func(ctx context.Context, command *cli.Command) error {
					log.Setup(command.String("log-level"))

					return newCargoSnap(command).Sync(ctx, command.Bool("download-images"))
				},
			},
			{
				Name:  "watch",
				Usage: "Trigger sync passes on a cron schedule until interrupted",
				Flags: []cli.Flag{
					downloadFlag,
					&cli.StringFlag{
						Name:    "schedule",
						Usage:   "Cron expression for sync passes",
						Value:   cargosnap.DefaultSyncSchedule,
						Sources: cli.EnvVars("CARGOSNAP_SYNC_SCHEDULE"),
					},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					log.Setup(command.String("log-level"))

					return newCargoSnap(command).Watch(ctx,
						command.String("schedule"), command.Bool("download-images"))
				},
			},
		},
	}
}

func newCargoSnap(command *cli.Command) *cargosnap.Service {
	return cargosnap.NewService(newClient(command), log.WithModule("cli"))
}
