package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"ownership/cmd/ownershipctl/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "ownershipctl",
		Usage: "operate the ownership chain service",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "manage the database schema",
				Commands: []*cli.Command{
					{Name: "up", Usage: "apply pending migrations", Action: commands.MigrateUpAction},
					{Name: "down", Usage: "roll back the latest migration", Action: commands.MigrateDownAction},
					{Name: "status", Usage: "list migrations and whether they ran", Action: commands.MigrateStatusAction},
				},
			},
			{
				Name:  "enqueue",
				Usage: "create an ownership job",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "siren", Usage: "9-digit SIREN", Required: true},
					&cli.IntFlag{Name: "depth", Usage: "ownership depth (1-6)", Value: 3},
				},
				Action: commands.EnqueueAction,
			},
			{
				Name:      "status",
				Usage:     "show a job and its artifacts",
				ArgsUsage: "JOB_ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "print the stored result document"},
				},
				Action: commands.StatusAction,
			},
			{
				Name:      "lookup",
				Usage:     "resolve a company identity through the registry",
				ArgsUsage: "SIREN",
				Action:    commands.LookupAction,
			},
			{
				Name:   "schema",
				Usage:  "print the JSON Schema of the result document",
				Action: commands.SchemaAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
