package redisadapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"ownership/internal/domain"
	"ownership/internal/platform/logger"
	"ownership/internal/ports"
)

// Producer dispatches jobs onto a Redis stream.
type Producer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewProducer(client *redis.Client, stream string, l *slog.Logger) *Producer {
	if l == nil {
		l = slog.Default()
	}
	return &Producer{client: client, stream: stream, logger: l}
}

func (p *Producer) Mode() string { return ports.DispatchRedis }

func (p *Producer) Dispatch(ctx context.Context, job domain.Job) error {
	values := messageValues(Message{JobID: job.ID, Attempt: 1, TraceID: logger.TraceID(ctx)})
	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: values,
	}).Result()
	if err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}
	p.logger.InfoContext(ctx, "enqueued ownership job", "job_id", job.ID, "message_id", id, "stream", p.stream)
	return nil
}
