package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"ownership/internal/adapters/postgres"
)

// migrator connects without the rest of the container so a broken schema can
// still be repaired.
func migrator(ctx context.Context) (*postgres.DB, *postgres.Migrator, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := postgres.Connect(ctx, cfg.DatabaseURL, 2)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	m, err := db.Migrator()
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, m, nil
}

func MigrateUpAction(ctx context.Context, cmd *cli.Command) error {
	db, m, err := migrator(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := m.Up(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("applied %d migration(s)\n", n)
	return nil
}

func MigrateDownAction(ctx context.Context, cmd *cli.Command) error {
	db, m, err := migrator(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := m.Down(ctx); err != nil {
		return err
	}
	fmt.Println("rolled back one migration")
	return nil
}

func MigrateStatusAction(ctx context.Context, cmd *cli.Command) error {
	db, m, err := migrator(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	states, err := m.Status(ctx)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Version", "Migration", "Applied")
	for _, s := range states {
		applied := "no"
		if s.Applied {
			applied = "yes"
		}
		table.Append(fmt.Sprintf("%d", s.Version), s.Path, applied)
	}
	table.Render()
	return nil
}
