package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/gatekeeper/cmd/app/commands"
	"github.com/allisson/gatekeeper/internal/app"
	authService "github.com/allisson/gatekeeper/internal/auth/service"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-signing-key",
			Usage: "Generate a new HMAC signing key for session tokens, captchas and audit logs",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "id",
					Aliases: []string{"i"},
					Usage:   "Signing key ID (defaults to key-YYYY-MM-DD)",
				},
				&cli.StringFlag{
					Name:    "kms-provider",
					Usage:   "KMS provider name recorded in the output (e.g., gcpkms, awskms, localsecrets)",
					Sources: cli.EnvVars("KMS_PROVIDER"),
				},
				&cli.StringFlag{
					Name:    "kms-key-uri",
					Usage:   "KMS key URI used to wrap the signing key (omit to print the raw key)",
					Sources: cli.EnvVars("KMS_KEY_URI"),
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					return commands.RunCreateSigningKey(
						ctx,
						authService.NewKMSService(),
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("id"),
						cmd.String("kms-provider"),
						cmd.String("kms-key-uri"),
					)
				})
			},
		},
	}
}
