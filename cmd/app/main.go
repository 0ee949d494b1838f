// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/finstore/cmd/app/commands"
)

func main() {
	cmd := &cli.Command{
		Name:    "finstore",
		Usage:   "Encrypted personal finance data store",
		Version: "1.0.0",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Apply pending schema migrations to the database file",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "create-keeper-key",
				Usage: "Generate a new local wrapping key as a keeper URI",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateKeeperKey(commands.DefaultIO())
				},
			},
			{
				Name:  "status",
				Usage: "Show schema version and row counts for the database file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunStatus(ctx, cmd.String("format"), commands.DefaultIO())
				},
			},
			{
				Name:  "export",
				Usage: "Export the whole decrypted state as a password-protected blob",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Required: true,
						Usage:    "Password protecting the exported blob",
					},
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Required: true,
						Usage:    "Destination file for the blob",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunExport(ctx, cmd.String("password"), cmd.String("output"))
				},
			},
			{
				Name:  "import",
				Usage: "Replace the store contents with a previously exported blob",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Required: true,
						Usage:    "Password the blob was exported with",
					},
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Required: true,
						Usage:    "Blob file to import",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunImport(ctx, cmd.String("password"), cmd.String("input"))
				},
			},
			{
				Name:  "metrics-server",
				Usage: "Start the Prometheus metrics server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMetricsServer(ctx)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}
