package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/storesync/cmd/app/commands"
	"github.com/allisson/storesync/internal/app"
	"github.com/allisson/storesync/internal/config"
)

func getSyncCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "dispatch",
			Usage: "Drain the sync queue of one store once",
			Flags: []cli.Flag{storeFlag(), formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				dispatcher, err := container.Dispatcher()
				if err != nil {
					return err
				}

				return commands.RunDispatch(
					ctx,
					dispatcher,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("store"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "dlq-stats",
			Usage: "Show the dead-letter queue summary of a store",
			Flags: []cli.Flag{storeFlag(), formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				deadLetterUseCase, err := container.DeadLetterUseCase()
				if err != nil {
					return err
				}

				return commands.RunDeadLetterStats(
					ctx,
					deadLetterUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("store"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "dlq-restore",
			Usage: "Move dead-lettered items back to the retry queue",
			Flags: []cli.Flag{
				storeFlag(),
				&cli.StringFlag{
					Name:     "ids",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Comma-separated outbox item IDs",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				deadLetterUseCase, err := container.DeadLetterUseCase()
				if err != nil {
					return err
				}

				return commands.RunDeadLetterRestore(
					ctx,
					deadLetterUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("store"),
					cmd.String("ids"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "requeue-day-close",
			Usage: "Enqueue the sync item of a closed business day again",
			Flags: []cli.Flag{
				storeFlag(),
				&cli.StringFlag{
					Name:     "day",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Business day ID (UUID)",
				},
				&cli.StringFlag{
					Name:    "user",
					Aliases: []string{"u"},
					Usage:   "Operator user ID recorded on the request (UUID)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				dayCloseUseCase, err := container.DayCloseUseCase()
				if err != nil {
					return err
				}

				return commands.RunRequeueDayClose(
					ctx,
					dayCloseUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("store"),
					cmd.String("day"),
					cmd.String("user"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "purge-synced",
			Usage: "Delete delivered sync items older than specified days",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "days",
					Aliases: []string{"d"},
					Value:   7,
					Usage:   "Delete synced items older than this many days",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				store, err := container.OutboxStore()
				if err != nil {
					return err
				}

				return commands.RunPurgeSynced(
					ctx,
					store,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("days")),
					cmd.String("format"),
				)
			},
		},
	}
}
