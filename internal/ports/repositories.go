package ports

import (
	"context"

	"github.com/google/uuid"

	"ownership/internal/domain"
)

// JobStore creates and reads job rows for the API.
type JobStore interface {
	CreateJob(ctx context.Context, siren string, depth int) (domain.Job, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (domain.Job, error)
	ListArtifacts(ctx context.Context, jobID uuid.UUID) ([]domain.Artifact, error)
}

// CompanyRepository persists registry identities.
type CompanyRepository interface {
	UpsertCompany(ctx context.Context, c domain.Company) error
	GetCompany(ctx context.Context, siren string) (domain.Company, error)
}
