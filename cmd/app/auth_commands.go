package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/gatekeeper/cmd/app/commands"
	"github.com/allisson/gatekeeper/internal/app"
)

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-user",
			Usage: "Create a user account, optionally with scopes",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "username",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "Login name (3-64 characters)",
				},
				&cli.StringFlag{
					Name:     "email",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Email address",
				},
				&cli.StringFlag{
					Name:    "password",
					Aliases: []string{"p"},
					Usage:   "Password (omit to read it from stdin)",
				},
				&cli.StringFlag{
					Name:    "scopes",
					Aliases: []string{"s"},
					Usage:   "Comma-separated scopes (e.g., registry:admin,users:admin)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withAuditedContainer(ctx, func(ctx context.Context, container *app.Container) error {
					userUseCase, err := container.UserUseCase()
					if err != nil {
						return err
					}
					return commands.RunCreateUser(
						ctx,
						userUseCase,
						container.Logger(),
						commands.DefaultIO(),
						cmd.String("username"),
						cmd.String("email"),
						cmd.String("password"),
						cmd.String("scopes"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "revoke-sessions",
			Usage: "Revoke every session of a user or client",
			Flags: []cli.Flag{
				uuidFlag("principal-id", "i", "Principal ID (UUID)"),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withAuditedContainer(ctx, func(ctx context.Context, container *app.Container) error {
					sessionUseCase, err := container.SessionUseCase()
					if err != nil {
						return err
					}
					return commands.RunRevokeSessions(
						ctx,
						sessionUseCase,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("principal-id"),
					)
				})
			},
		},
		{
			Name:  "set-user-status",
			Usage: "Activate, disable or revoke a user; leaving active revokes its sessions",
			Flags: []cli.Flag{
				uuidFlag("id", "i", "User ID (UUID)"),
				&cli.StringFlag{
					Name:     "status",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "New status: 'active', 'disabled' or 'revoked'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withAuditedContainer(ctx, func(ctx context.Context, container *app.Container) error {
					userUseCase, err := container.UserUseCase()
					if err != nil {
						return err
					}
					return commands.RunSetUserStatus(
						ctx,
						userUseCase,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("id"),
						cmd.String("status"),
					)
				})
			},
		},
		{
			Name:  "change-password",
			Usage: "Replace a user's password and revoke its sessions",
			Flags: []cli.Flag{
				uuidFlag("id", "i", "User ID (UUID)"),
				&cli.StringFlag{
					Name:    "password",
					Aliases: []string{"p"},
					Usage:   "New password (omit to read it from stdin)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withAuditedContainer(ctx, func(ctx context.Context, container *app.Container) error {
					userUseCase, err := container.UserUseCase()
					if err != nil {
						return err
					}
					return commands.RunChangePassword(
						ctx,
						userUseCase,
						container.Logger(),
						commands.DefaultIO(),
						cmd.String("id"),
						cmd.String("password"),
					)
				})
			},
		},
	}
}
