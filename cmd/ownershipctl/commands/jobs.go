package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"ownership/internal/domain"
	"ownership/internal/resultschema"
)

func EnqueueAction(ctx context.Context, cmd *cli.Command) error {
	ac, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer ac.Close()

	depth := cmd.Int("depth")
	job, err := ac.Container.Ownership.Create(ctx, cmd.String("siren"), &depth)
	if err != nil {
		if job.ID != uuid.Nil {
			fmt.Printf("job %s stored but not dispatched\n", job.ID)
		}
		return err
	}
	fmt.Printf("job %s %s (dispatch=%s)\n", job.ID, job.Status, ac.Config.Dispatch)
	return nil
}

func StatusAction(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.Args().First()
	if raw == "" {
		return errors.New("JOB_ID is required")
	}
	jobID, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid job id %q: %w", raw, err)
	}

	ac, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer ac.Close()

	job, arts, err := ac.Container.Ownership.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("job %s not found", jobID)
		}
		return err
	}

	if cmd.Bool("json") {
		if job.Result == nil {
			return fmt.Errorf("job %s has no result (status %s)", jobID, job.Status)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(job.Result)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Field", "Value")
	table.Append("job", job.ID.String())
	table.Append("siren", job.SIREN)
	table.Append("depth", fmt.Sprintf("%d", job.Depth))
	table.Append("status", string(job.Status))
	table.Append("attempts", fmt.Sprintf("%d", job.Attempts))
	if job.Confidence != nil {
		table.Append("confidence", fmt.Sprintf("%d", *job.Confidence))
	}
	if job.Error != nil {
		table.Append("error", *job.Error)
	}
	table.Append("created", job.CreatedAt.Format(time.RFC3339))
	if job.FinishedAt != nil {
		table.Append("finished", job.FinishedAt.Format(time.RFC3339))
	}
	table.Render()

	if len(arts) > 0 {
		fmt.Println()
		artTable := tablewriter.NewWriter(os.Stdout)
		artTable.Header("Kind", "Path")
		for _, a := range arts {
			artTable.Append(string(a.Kind), a.Path)
		}
		artTable.Render()
	}
	return nil
}

func LookupAction(ctx context.Context, cmd *cli.Command) error {
	siren := cmd.Args().First()
	if siren == "" {
		return errors.New("SIREN is required")
	}

	ac, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer ac.Close()

	c, err := ac.Container.Companies.GetIdentity(ctx, siren)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("SIREN", "Name", "Address", "Status")
	table.Append(c.SIREN, c.Name, c.Address, c.Status)
	table.Render()
	return nil
}

func SchemaAction(ctx context.Context, cmd *cli.Command) error {
	doc, err := resultschema.Document()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(append(doc, '\n'))
	return err
}
