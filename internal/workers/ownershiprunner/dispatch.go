package ownershiprunner

import (
	"context"
	"errors"

	"ownership/internal/domain"
	"ownership/internal/ports"
)

// InlineDispatcher processes the job inside the request. A failed job is a
// valid outcome, so only infrastructure errors are returned.
type InlineDispatcher struct {
	Runner *Runner
}

func (d InlineDispatcher) Mode() string { return ports.DispatchInline }

func (d InlineDispatcher) Dispatch(ctx context.Context, job domain.Job) error {
	err := d.Runner.ProcessInline(ctx, job.ID)
	if errors.Is(err, ErrJobFailed) {
		return nil
	}
	return err
}

// PollDispatcher leaves the job queued; Runner.Run picks it up from the table.
type PollDispatcher struct{}

func (PollDispatcher) Mode() string { return ports.DispatchPoll }

func (PollDispatcher) Dispatch(context.Context, domain.Job) error { return nil }
