package ownershiprunner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"ownership/internal/domain"
	"ownership/internal/platform/logger"
	"ownership/internal/platform/metrics"
	"ownership/internal/ports"
)

// ErrJobFailed marks a job whose processing failed and which has been
// recorded as failed. Callers treat it as a finished job, not an outage.
var ErrJobFailed = errors.New("job failed")

// Runner executes claimed jobs and records their outcome.
type Runner struct {
	repo      ports.JobRepository
	processor Processor
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewRunner(repo ports.JobRepository, processor Processor, m *metrics.Metrics, l *slog.Logger) *Runner {
	if l == nil {
		l = slog.Default()
	}
	return &Runner{repo: repo, processor: processor, metrics: m, logger: l}
}

// Execute processes a job already moved to running. A nil error means done;
// ErrJobFailed means the failure was recorded; anything else means the
// outcome could not be persisted. The outcome is written even when ctx is
// cancelled mid-run; the stores bound those writes with their own timeout.
func (r *Runner) Execute(ctx context.Context, job domain.Job) error {
	ctx = logger.WithFields(ctx, logger.Fields{JobID: job.ID.String(), SIREN: job.SIREN})
	ctx, span := logger.StartSpan(ctx, "ownership.process")
	defer span.End()
	span.SetAttributes(
		attribute.String("job.id", job.ID.String()),
		attribute.String("job.siren", job.SIREN),
		attribute.Int("job.depth", job.Depth),
	)

	start := time.Now()
	completion, err := r.processSafe(ctx, job)
	settleCtx := context.WithoutCancel(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.metrics.ObserveJob(string(domain.JobFailed), time.Since(start))
		r.logger.ErrorContext(ctx, "ownership job failed", "error", err)
		if ferr := r.repo.MarkFailed(settleCtx, job.ID, err.Error()); ferr != nil {
			return fmt.Errorf("mark job failed: %w", ferr)
		}
		return fmt.Errorf("%w: %v", ErrJobFailed, err)
	}

	if err := r.repo.MarkCompleted(settleCtx, job.ID, completion); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, domain.ErrConflict) {
			// Someone else already finished or failed the row.
			r.logger.WarnContext(ctx, "job changed state while processing", "error", err)
			return nil
		}
		return fmt.Errorf("mark job completed: %w", err)
	}
	r.metrics.ObserveJob(string(domain.JobDone), time.Since(start))
	r.logger.InfoContext(ctx, "ownership job done",
		"confidence", completion.Confidence,
		"artifacts", len(completion.Artifacts),
		"elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

func (r *Runner) processSafe(ctx context.Context, job domain.Job) (c ports.Completion, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.ErrorContext(ctx, "panic recovered in job processing", "panic", rec)
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return r.processor.Process(ctx, job)
}

// Run polls for queued jobs and processes them on concurrency goroutines. It
// blocks until ctx is cancelled and in-flight jobs have finished.
func (r *Runner) Run(ctx context.Context, concurrency int, pollInterval time.Duration) {
	if concurrency < 1 {
		return
	}
	ctx = logger.WithFields(ctx, logger.Fields{Component: "ownership.worker.poll"})
	jobsCh := make(chan domain.Job, concurrency)

	// dispatcher loop
	go func() {
		defer close(jobsCh)
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for {
					job, found, err := r.repo.ClaimNext(ctx)
					if err != nil {
						if ctx.Err() == nil {
							r.logger.ErrorContext(ctx, "job claim error", "error", err)
						}
						break
					}
					if !found {
						break
					}
					select {
					case jobsCh <- job:
					case <-ctx.Done():
						// Claimed but never started; leave a trace on the row.
						_ = r.repo.MarkFailed(context.WithoutCancel(ctx), job.ID, "worker shut down before processing")
						return
					}
				}
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for job := range jobsCh {
				// Finish in-flight work even when shutting down.
				if err := r.Execute(context.WithoutCancel(ctx), job); err != nil && !errors.Is(err, ErrJobFailed) {
					r.logger.ErrorContext(ctx, "worker could not record outcome", "worker", idx, "job_id", job.ID, "error", err)
				}
			}
		}(i)
	}
	wg.Wait()
}

// ProcessInline claims and processes one specific job synchronously using the
// same logic as the background workers.
func (r *Runner) ProcessInline(ctx context.Context, jobID uuid.UUID) error {
	job, claimed, err := r.repo.ClaimJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("claim job: %w", err)
	}
	if !claimed {
		return fmt.Errorf("%w: job %s is not queued", domain.ErrConflict, jobID)
	}
	return r.Execute(ctx, job)
}
