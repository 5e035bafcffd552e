package redisadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"ownership/internal/platform/logger"
)

type ConsumerConfig struct {
	Stream       string        // stream jobs are dispatched to
	Group        string        // consumer group shared by all workers
	Consumer     string        // this worker's name inside the group
	DLQStream    string        // where messages go after the last attempt
	BatchSize    int64         // messages per read
	Block        time.Duration // how long a read waits for new messages
	MinIdle      time.Duration // pending time before another consumer may reclaim
	RequeueDelay time.Duration
}

type Message struct {
	ID        string
	JobID     uuid.UUID
	Attempt   int
	TraceID   string
	LastError string
	Raw       redis.XMessage
}

// Consumer reads job messages through a consumer group.
type Consumer struct {
	client *redis.Client
	cfg    ConsumerConfig
}

func NewConsumer(ctx context.Context, client *redis.Client, cfg ConsumerConfig) (*Consumer, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if cfg.MinIdle <= 0 {
		cfg.MinIdle = 5 * time.Minute
	}
	c := &Consumer{client: client, cfg: cfg}
	if err := c.ensureGroup(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Consumer) Config() ConsumerConfig { return c.cfg }

func (c *Consumer) ensureGroup(ctx context.Context) error {
	// "0" so a recreated group still sees messages already in the stream.
	err := c.client.XGroupCreateMkStream(ctx, c.cfg.Stream, c.cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("creating consumer group: %w", err)
	}
	return nil
}

// Read returns new messages for this consumer. Unparseable messages are acked
// and dropped.
func (c *Consumer) Read(ctx context.Context) ([]Message, error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.cfg.Group,
		Consumer: c.cfg.Consumer,
		Streams:  []string{c.cfg.Stream, ">"},
		Count:    c.cfg.BatchSize,
		Block:    c.cfg.Block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading from stream: %w", err)
	}

	var out []Message
	for _, stream := range streams {
		out = append(out, c.parseAll(ctx, stream.Messages)...)
	}
	return out, nil
}

// Reclaim takes over messages another consumer left pending for longer than MinIdle.
func (c *Consumer) Reclaim(ctx context.Context) ([]Message, error) {
	msgs, _, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   c.cfg.Stream,
		Group:    c.cfg.Group,
		Consumer: c.cfg.Consumer,
		MinIdle:  c.cfg.MinIdle,
		Start:    "0-0",
		Count:    c.cfg.BatchSize,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("xautoclaim: %w", err)
	}
	return c.parseAll(ctx, msgs), nil
}

func (c *Consumer) parseAll(ctx context.Context, raw []redis.XMessage) []Message {
	out := make([]Message, 0, len(raw))
	for _, m := range raw {
		parsed, err := ParseMessage(m)
		if err != nil {
			slog.ErrorContext(logger.WithFields(ctx, logger.Fields{MessageID: m.ID}),
				"dropping malformed message", "error", err, "stream", c.cfg.Stream)
			_ = c.Ack(ctx, Message{ID: m.ID, Raw: m})
			continue
		}
		out = append(out, parsed)
	}
	return out
}

func (c *Consumer) Ack(ctx context.Context, msg Message) error {
	if err := c.client.XAck(ctx, c.cfg.Stream, c.cfg.Group, msg.ID).Err(); err != nil {
		return fmt.Errorf("xack (stream=%s): %w", c.cfg.Stream, err)
	}
	return nil
}

// moveScript re-adds a message to KEYS[1] and only then acks it on KEYS[2]
// under group ARGV[1]. A failed XADD aborts the script, so the delivery stays
// pending instead of being lost.
var moveScript = redis.NewScript(`
local id = redis.call('XADD', KEYS[1], '*', unpack(ARGV, 3))
redis.call('XACK', KEYS[2], ARGV[1], ARGV[2])
return id
`)

func (c *Consumer) move(ctx context.Context, target string, msg Message) error {
	args := []any{c.cfg.Group, msg.ID}
	for k, v := range messageValues(msg) {
		args = append(args, k, v)
	}
	return moveScript.Run(ctx, c.client, []string{target, c.cfg.Stream}, args...).Err()
}

// Requeue re-adds msg with the next attempt number and acks the original.
func (c *Consumer) Requeue(ctx context.Context, msg Message, errMsg string) error {
	next := msg
	next.Attempt = msg.Attempt + 1
	next.LastError = errMsg

	if c.cfg.RequeueDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.RequeueDelay):
		}
	}
	if err := c.move(ctx, c.cfg.Stream, next); err != nil {
		return fmt.Errorf("requeue (stream=%s): %w", c.cfg.Stream, err)
	}
	return nil
}

// SendDLQ parks msg on the dead letter stream and acks the original.
func (c *Consumer) SendDLQ(ctx context.Context, msg Message, errMsg string) error {
	dead := msg
	dead.LastError = errMsg
	if err := c.move(ctx, c.cfg.DLQStream, dead); err != nil {
		return fmt.Errorf("dlq (stream=%s): %w", c.cfg.DLQStream, err)
	}
	return nil
}

func ParseMessage(msg redis.XMessage) (Message, error) {
	raw, ok := msg.Values["job_id"]
	if !ok {
		return Message{}, fmt.Errorf("missing job_id")
	}
	jobID, err := uuid.Parse(fmt.Sprint(raw))
	if err != nil {
		return Message{}, fmt.Errorf("parsing job_id: %w", err)
	}

	attempt := 1
	if v, ok := msg.Values["attempt"]; ok {
		n, err := strconv.Atoi(fmt.Sprint(v))
		if err != nil {
			return Message{}, fmt.Errorf("parsing attempt: %w", err)
		}
		if n > 0 {
			attempt = n
		}
	}

	return Message{
		ID:        msg.ID,
		JobID:     jobID,
		Attempt:   attempt,
		TraceID:   optionalString(msg.Values, "trace_id"),
		LastError: optionalString(msg.Values, "last_error"),
		Raw:       msg,
	}, nil
}

func optionalString(values map[string]any, key string) string {
	if v, ok := values[key]; ok {
		return fmt.Sprint(v)
	}
	return ""
}

func messageValues(msg Message) map[string]any {
	attempt := msg.Attempt
	if attempt <= 0 {
		attempt = 1
	}
	values := map[string]any{
		"job_id":  msg.JobID.String(),
		"attempt": attempt,
	}
	if msg.TraceID != "" {
		values["trace_id"] = msg.TraceID
	}
	if msg.LastError != "" {
		values["last_error"] = msg.LastError
	}
	return values
}
