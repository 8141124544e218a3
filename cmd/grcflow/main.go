// Package main provides the entry point for the grcflow services.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"grcflow/cmd/grcflow/commands"
)

var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "grcflow",
		Usage:   "event-driven GRC request processing services",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "coordinator",
				Usage: "Start the request coordinator (CRUD API plus status consumer)",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCoordinator(ctx, version)
				},
			},
			{
				Name:  "worker",
				Usage: "Start the GRC compliance worker",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunWorker(ctx, version)
				},
			},
			{
				Name:  "notifier",
				Usage: "Start the notification service",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunNotifier(ctx, version)
				},
			},
			{
				Name:  "auditor",
				Usage: "Start the audit trail service",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunAuditor(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
