package ownershiprunner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	redisadapter "ownership/internal/adapters/redis"
	"ownership/internal/domain"
	"ownership/internal/ports"
)

// memRepo is an in-memory JobRepository with the same transition rules as
// the Postgres store. Like the store, every call fails on a cancelled ctx.
type memRepo struct {
	mu          sync.Mutex
	jobs        map[uuid.UUID]*domain.Job
	order       []uuid.UUID
	completions map[uuid.UUID]ports.Completion
	claimErr    error
	completeErr error
}

func newMemRepo() *memRepo {
	return &memRepo{jobs: map[uuid.UUID]*domain.Job{}, completions: map[uuid.UUID]ports.Completion{}}
}

func (r *memRepo) add(siren string) domain.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	j := &domain.Job{ID: uuid.New(), SIREN: siren, Depth: 3, Status: domain.JobQueued, CreatedAt: time.Now()}
	r.jobs[j.ID] = j
	r.order = append(r.order, j.ID)
	return *j
}

func (r *memRepo) get(id uuid.UUID) domain.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.jobs[id]
}

// startedAgo backdates a running job's start time.
func (r *memRepo) startedAgo(id uuid.UUID, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	started := time.Now().Add(-d)
	r.jobs[id].StartedAt = &started
}

func start(j *domain.Job) {
	now := time.Now()
	j.Status = domain.JobRunning
	j.Attempts++
	j.StartedAt = &now
}

func (r *memRepo) ClaimNext(ctx context.Context) (domain.Job, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Job{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.claimErr != nil {
		return domain.Job{}, false, r.claimErr
	}
	for _, id := range r.order {
		if j := r.jobs[id]; j.Status == domain.JobQueued {
			start(j)
			return *j, true, nil
		}
	}
	return domain.Job{}, false, nil
}

func (r *memRepo) ClaimJob(ctx context.Context, id uuid.UUID) (domain.Job, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Job{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.claimErr != nil {
		return domain.Job{}, false, r.claimErr
	}
	j, ok := r.jobs[id]
	if !ok || j.Status != domain.JobQueued {
		return domain.Job{}, false, nil
	}
	start(j)
	return *j, true, nil
}

func (r *memRepo) MarkCompleted(ctx context.Context, id uuid.UUID, c ports.Completion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.completeErr != nil {
		return r.completeErr
	}
	j := r.jobs[id]
	if j.Status != domain.JobRunning {
		return domain.ErrConflict
	}
	j.Status = domain.JobDone
	j.Confidence = &c.Confidence
	j.Result = &c.Result
	r.completions[id] = c
	return nil
}

// MarkFailed leaves unknown and terminal jobs alone, as the store does.
func (r *memRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok || j.Status.Terminal() {
		return nil
	}
	j.Status = domain.JobFailed
	j.Error = &reason
	return nil
}

func (r *memRepo) FailStale(ctx context.Context, id uuid.UUID, olderThan time.Duration, reason string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok || j.Status != domain.JobRunning || j.StartedAt == nil || time.Since(*j.StartedAt) <= olderThan {
		return false, nil
	}
	j.Status = domain.JobFailed
	j.Error = &reason
	return true, nil
}

type funcProcessor func(ctx context.Context, job domain.Job) (ports.Completion, error)

func (f funcProcessor) Process(ctx context.Context, job domain.Job) (ports.Completion, error) {
	return f(ctx, job)
}

func okProcessor() Processor {
	return funcProcessor(func(ctx context.Context, job domain.Job) (ports.Completion, error) {
		return ports.Completion{Result: domain.Result{SIREN: job.SIREN, Depth: job.Depth}, Confidence: 0}, nil
	})
}

var errBoom = errors.New("boom")

type fakeStream struct {
	mu       sync.Mutex
	acked    []string
	requeued []redisadapter.Message
	dead     []redisadapter.Message
}

func (s *fakeStream) Read(ctx context.Context) ([]redisadapter.Message, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (s *fakeStream) Reclaim(ctx context.Context) ([]redisadapter.Message, error) { return nil, nil }

func (s *fakeStream) Ack(ctx context.Context, msg redisadapter.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acked = append(s.acked, msg.ID)
	return nil
}

func (s *fakeStream) Requeue(ctx context.Context, msg redisadapter.Message, errMsg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.LastError = errMsg
	s.requeued = append(s.requeued, msg)
	return nil
}

func (s *fakeStream) SendDLQ(ctx context.Context, msg redisadapter.Message, errMsg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.LastError = errMsg
	s.dead = append(s.dead, msg)
	return nil
}
