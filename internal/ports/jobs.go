package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ownership/internal/domain"
)

// Completion is everything a successful run writes back to the job row.
type Completion struct {
	Result     domain.Result
	Confidence int
	Artifacts  []domain.Artifact
}

// JobRepository supports claiming and finishing jobs.
type JobRepository interface {
	// ClaimNext moves the oldest queued job to running.
	ClaimNext(ctx context.Context) (job domain.Job, found bool, err error)
	// ClaimJob moves a specific job to running; claimed is false when it is
	// not queued or is locked by another worker.
	ClaimJob(ctx context.Context, jobID uuid.UUID) (job domain.Job, claimed bool, err error)
	MarkCompleted(ctx context.Context, jobID uuid.UUID, c Completion) error
	MarkFailed(ctx context.Context, jobID uuid.UUID, reason string) error
	// FailStale fails a job left running for longer than olderThan by a worker
	// that went away. failed is false when the row is in any other state.
	FailStale(ctx context.Context, jobID uuid.UUID, olderThan time.Duration, reason string) (failed bool, err error)
}
