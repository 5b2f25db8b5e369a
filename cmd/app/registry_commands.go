package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/gatekeeper/cmd/app/commands"
	"github.com/allisson/gatekeeper/internal/app"
)

func getRegistryCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "register-client",
			Usage: "Register a client and print its one-time secret",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Human-readable client name",
				},
				uuidFlag("owner", "o", "Owner principal ID (UUID)"),
				&cli.StringFlag{
					Name:    "scopes",
					Aliases: []string{"s"},
					Usage:   "Comma-separated scopes granted to the client",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withAuditedContainer(ctx, func(ctx context.Context, container *app.Container) error {
					clientUseCase, err := container.ClientUseCase()
					if err != nil {
						return err
					}
					return commands.RunRegisterClient(
						ctx,
						clientUseCase,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("name"),
						cmd.String("owner"),
						cmd.String("scopes"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "rotate-client-secret",
			Usage: "Replace a client secret and print the new one",
			Flags: []cli.Flag{
				uuidFlag("id", "i", "Client ID (UUID)"),
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withAuditedContainer(ctx, func(ctx context.Context, container *app.Container) error {
					clientUseCase, err := container.ClientUseCase()
					if err != nil {
						return err
					}
					return commands.RunRotateClientSecret(
						ctx,
						clientUseCase,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("id"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "revoke-client",
			Usage: "Permanently revoke a client",
			Flags: []cli.Flag{
				uuidFlag("id", "i", "Client ID (UUID)"),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withAuditedContainer(ctx, func(ctx context.Context, container *app.Container) error {
					clientUseCase, err := container.ClientUseCase()
					if err != nil {
						return err
					}
					return commands.RunRevokeClient(
						ctx,
						clientUseCase,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("id"),
					)
				})
			},
		},
	}
}
