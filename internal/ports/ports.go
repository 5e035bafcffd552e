package ports

import (
	"context"

	"github.com/google/uuid"

	"ownership/internal/domain"
)

// Ownership accepts ownership jobs and reports on them.
type Ownership interface {
	Create(ctx context.Context, siren string, depth *int) (domain.Job, error)
	Get(ctx context.Context, jobID uuid.UUID) (domain.Job, []domain.Artifact, error)
}

// Companies provides normalized identity snapshots.
type Companies interface {
	GetIdentity(ctx context.Context, siren string) (domain.Company, error)
}

// Registry looks up one entity in an external business registry.
type Registry interface {
	LookupSIREN(ctx context.Context, siren string) (domain.Company, error)
}

// IdentityCache holds recent registry answers.
type IdentityCache interface {
	Get(ctx context.Context, siren string) (domain.Company, bool, error)
	Set(ctx context.Context, c domain.Company) error
}

// Dispatch modes reported by Dispatcher.Mode.
const (
	DispatchRedis  = "redis"
	DispatchPoll   = "poll"
	DispatchInline = "inline"
)

// Dispatcher hands a freshly created job over to the workers. Inline
// dispatchers process the job before returning.
type Dispatcher interface {
	Dispatch(ctx context.Context, job domain.Job) error
	Mode() string
}
