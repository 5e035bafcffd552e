package ownership

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"ownership/internal/domain"
	"ownership/internal/platform/logger"
	"ownership/internal/platform/metrics"
	"ownership/internal/ports"
)

// Store is the slice of the job store the API side needs.
type Store interface {
	ports.JobStore
	MarkFailed(ctx context.Context, jobID uuid.UUID, reason string) error
}

type Service struct {
	jobs       Store
	dispatcher ports.Dispatcher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func New(jobs Store, dispatcher ports.Dispatcher, m *metrics.Metrics, l *slog.Logger) *Service {
	if l == nil {
		l = slog.Default()
	}
	return &Service{jobs: jobs, dispatcher: dispatcher, metrics: m, logger: l}
}

// Create validates the request, stores a queued job and dispatches it. With
// an inline dispatcher the returned job is already terminal.
func (s *Service) Create(ctx context.Context, rawSIREN string, depth *int) (domain.Job, error) {
	siren, err := domain.ValidateSIREN(rawSIREN)
	if err != nil {
		return domain.Job{}, err
	}
	d, err := domain.NormalizeDepth(depth)
	if err != nil {
		return domain.Job{}, err
	}

	job, err := s.jobs.CreateJob(ctx, siren, d)
	if err != nil {
		return domain.Job{}, fmt.Errorf("create job: %w", err)
	}
	s.metrics.IncJobsCreated()
	ctx = logger.WithFields(ctx, logger.Fields{JobID: job.ID.String(), SIREN: siren})

	if err := s.dispatcher.Dispatch(ctx, job); err != nil {
		s.metrics.IncDispatchError(s.dispatcher.Mode())
		reason := "dispatch: " + err.Error()
		// The caller may have gone away; the row must still leave queued/running.
		if ferr := s.jobs.MarkFailed(context.WithoutCancel(ctx), job.ID, reason); ferr != nil {
			s.logger.ErrorContext(ctx, "mark undispatched job failed", "error", ferr)
		} else {
			job.Status = domain.JobFailed
			job.Error = &reason
		}
		return job, fmt.Errorf("dispatch job %s: %w", job.ID, err)
	}
	s.logger.InfoContext(ctx, "ownership job accepted", "depth", d, "dispatch", s.dispatcher.Mode())

	if s.dispatcher.Mode() != ports.DispatchInline {
		return job, nil
	}
	done, err := s.jobs.GetJob(ctx, job.ID)
	if err != nil {
		return job, fmt.Errorf("reload job: %w", err)
	}
	return done, nil
}

// Get returns the job row and its artifacts.
func (s *Service) Get(ctx context.Context, jobID uuid.UUID) (domain.Job, []domain.Artifact, error) {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return domain.Job{}, nil, err
	}
	arts, err := s.jobs.ListArtifacts(ctx, jobID)
	if err != nil {
		return domain.Job{}, nil, fmt.Errorf("list artifacts: %w", err)
	}
	return job, arts, nil
}
