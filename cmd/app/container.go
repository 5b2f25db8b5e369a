package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/gatekeeper/cmd/app/commands"
	"github.com/allisson/gatekeeper/internal/app"
	"github.com/allisson/gatekeeper/internal/config"
)

// withContainer runs fn against a container built from the environment and shuts the
// container down afterwards.
func withContainer(ctx context.Context, fn func(container *app.Container) error) error {
	container := app.NewContainer(config.Load())
	defer func() { _ = container.Shutdown(ctx) }()

	return fn(container)
}

// withAuditedContainer is withContainer for commands that emit audit events. The
// dispatcher runs for the duration of fn and drains before the container closes.
func withAuditedContainer(ctx context.Context, fn func(ctx context.Context, container *app.Container) error) error {
	return withContainer(ctx, func(container *app.Container) error {
		dispatcher, err := container.Dispatcher()
		if err != nil {
			return err
		}
		return commands.WithDispatcher(ctx, dispatcher, container.Logger(), func(ctx context.Context) error {
			return fn(ctx, container)
		})
	})
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func uuidFlag(name, alias, usage string) cli.Flag {
	return &cli.StringFlag{
		Name:     name,
		Aliases:  []string{alias},
		Required: true,
		Usage:    usage,
	}
}
