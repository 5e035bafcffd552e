package ownershiprunner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	redisadapter "ownership/internal/adapters/redis"
	"ownership/internal/platform/logger"
	"ownership/internal/ports"
)

// Stream is the consumer-group side of the job stream.
type Stream interface {
	Read(ctx context.Context) ([]redisadapter.Message, error)
	Reclaim(ctx context.Context) ([]redisadapter.Message, error)
	Ack(ctx context.Context, msg redisadapter.Message) error
	Requeue(ctx context.Context, msg redisadapter.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg redisadapter.Message, errMsg string) error
}

type StreamConfig struct {
	MaxAttempts     int
	ReclaimInterval time.Duration
	// StaleAfter is how long a job may stay running before a redelivered
	// message for it fails the job instead of skipping it.
	StaleAfter time.Duration
}

// StreamWorker consumes dispatched job ids from a Redis stream.
type StreamWorker struct {
	stream Stream
	repo   ports.JobRepository
	runner *Runner
	cfg    StreamConfig
	logger *slog.Logger
}

func NewStreamWorker(stream Stream, repo ports.JobRepository, runner *Runner, cfg StreamConfig, l *slog.Logger) *StreamWorker {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	if cfg.ReclaimInterval <= 0 {
		cfg.ReclaimInterval = time.Minute
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 4 * time.Minute
	}
	if l == nil {
		l = slog.Default()
	}
	return &StreamWorker{stream: stream, repo: repo, runner: runner, cfg: cfg, logger: l}
}

// Run reads until ctx is cancelled. A reclaimer runs alongside to pick up
// messages left pending by crashed consumers.
func (w *StreamWorker) Run(ctx context.Context) error {
	ctx = logger.WithFields(ctx, logger.Fields{Component: "ownership.worker.stream"})
	reclaimDone := make(chan struct{})
	go func() {
		defer close(reclaimDone)
		w.reclaimLoop(ctx)
	}()
	defer func() { <-reclaimDone }()

	w.logger.InfoContext(ctx, "stream worker started", "max_attempts", w.cfg.MaxAttempts)
	for {
		if ctx.Err() != nil {
			return nil
		}
		msgs, err := w.stream.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.ErrorContext(ctx, "stream read error", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}
		for _, msg := range msgs {
			w.HandleMessage(ctx, msg)
		}
	}
}

func (w *StreamWorker) reclaimLoop(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.ReclaimInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			msgs, err := w.stream.Reclaim(ctx)
			if err != nil {
				if ctx.Err() == nil {
					w.logger.ErrorContext(ctx, "reclaim cycle error", "error", err)
				}
				continue
			}
			if len(msgs) > 0 {
				w.logger.InfoContext(ctx, "reclaimed stale messages", "count", len(msgs))
			}
			for _, msg := range msgs {
				w.HandleMessage(ctx, msg)
			}
		}
	}
}

// HandleMessage processes one delivery and always settles it: ack, requeue or
// DLQ. Settling survives cancellation of ctx so shutdown never strands a
// message mid-flight.
func (w *StreamWorker) HandleMessage(ctx context.Context, msg redisadapter.Message) {
	ctx = logger.WithFields(ctx, logger.Fields{MessageID: msg.ID, JobID: msg.JobID.String()})
	ctx, span := logger.StartSpanFromTraceID(ctx, msg.TraceID, "ownership.stream.message")
	defer span.End()

	err := w.handleSafe(ctx, msg)
	settleCtx := context.WithoutCancel(ctx)
	if err != nil {
		span.RecordError(err)
		w.retryOrBury(settleCtx, msg, err)
		return
	}
	if err := w.stream.Ack(settleCtx, msg); err != nil {
		// Left pending; the reclaimer will see it and the claim will skip it.
		w.logger.WarnContext(ctx, "failed to ack message", "error", err)
	}
}

func (w *StreamWorker) handleSafe(ctx context.Context, msg redisadapter.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.ErrorContext(ctx, "panic recovered in message handling", "panic", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.handle(ctx, msg)
}

// handle returns an error only when a retry could help, i.e. before the job
// row was claimed.
func (w *StreamWorker) handle(ctx context.Context, msg redisadapter.Message) error {
	w.logger.InfoContext(ctx, "processing message", "attempt", msg.Attempt)

	job, claimed, err := w.repo.ClaimJob(ctx, msg.JobID)
	if err != nil {
		return fmt.Errorf("claim job: %w", err)
	}
	if !claimed {
		return w.skipOrFailStale(ctx, msg)
	}

	if err := w.runner.Execute(ctx, job); err != nil && !errors.Is(err, ErrJobFailed) {
		// The row is claimed but its outcome could not be written; a retry
		// would skip it, so park the message for an operator.
		w.logger.ErrorContext(ctx, "job outcome not persisted, sending to DLQ", "error", err)
		if dlqErr := w.stream.SendDLQ(context.WithoutCancel(ctx), msg, err.Error()); dlqErr != nil {
			w.logger.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return nil
	}
	return nil
}

// skipOrFailStale handles a message whose job is not queued. A job still
// running past StaleAfter was abandoned by a consumer that died mid-run, so
// it is failed; anything else is a duplicate delivery and is skipped.
func (w *StreamWorker) skipOrFailStale(ctx context.Context, msg redisadapter.Message) error {
	reason := fmt.Sprintf("abandoned while running (delivery %s, attempt %d)", msg.ID, msg.Attempt)
	failed, err := w.repo.FailStale(context.WithoutCancel(ctx), msg.JobID, w.cfg.StaleAfter, reason)
	if err != nil {
		return fmt.Errorf("fail stale job: %w", err)
	}
	if failed {
		w.logger.WarnContext(ctx, "failed job abandoned by another consumer", "stale_after", w.cfg.StaleAfter)
		return nil
	}
	w.logger.InfoContext(ctx, "job not claimable, skipping")
	return nil
}

func (w *StreamWorker) retryOrBury(ctx context.Context, msg redisadapter.Message, cause error) {
	if msg.Attempt >= w.cfg.MaxAttempts {
		w.logger.ErrorContext(ctx, "max attempts reached, sending to DLQ", "attempts", msg.Attempt, "error", cause)
		if err := w.stream.SendDLQ(ctx, msg, cause.Error()); err != nil {
			w.logger.ErrorContext(ctx, "failed to send to DLQ", "error", err)
		}
		reason := fmt.Sprintf("gave up after %d attempts: %v", msg.Attempt, cause)
		if err := w.repo.MarkFailed(ctx, msg.JobID, reason); err != nil {
			w.logger.ErrorContext(ctx, "failed to mark job failed", "error", err)
		}
		return
	}

	w.logger.WarnContext(ctx, "requeuing failed message", "attempt", msg.Attempt, "error", cause)
	if err := w.stream.Requeue(ctx, msg, cause.Error()); err != nil {
		w.logger.ErrorContext(ctx, "failed to requeue message", "error", err)
	}
}
