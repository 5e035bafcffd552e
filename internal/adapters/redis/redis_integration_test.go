//go:build integration

package redisadapter

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"ownership/internal/domain"
)

type RedisSuite struct {
	suite.Suite
	container *tcredis.RedisContainer
	client    *redis.Client
}

func TestRedisSuite(t *testing.T) {
	suite.Run(t, new(RedisSuite))
}

func (s *RedisSuite) SetupSuite() {
	ctx := context.Background()
	c, err := tcredis.Run(ctx, "redis:7-alpine")
	s.Require().NoError(err)
	s.container = c

	url, err := c.ConnectionString(ctx)
	s.Require().NoError(err)
	s.client, err = Connect(ctx, url)
	s.Require().NoError(err)
}

func (s *RedisSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *RedisSuite) SetupTest() {
	s.Require().NoError(s.client.FlushAll(context.Background()).Err())
}

func (s *RedisSuite) consumer(name string) *Consumer {
	c, err := NewConsumer(context.Background(), s.client, ConsumerConfig{
		Stream:    "jobs",
		Group:     "workers",
		Consumer:  name,
		DLQStream: "jobs-dlq",
		Block:     100 * time.Millisecond,
		MinIdle:   10 * time.Millisecond,
	})
	s.Require().NoError(err)
	return c
}

func (s *RedisSuite) TestDispatchThenRead() {
	ctx := context.Background()
	cons := s.consumer("a")
	job := domain.Job{ID: uuid.New()}

	s.Require().NoError(NewProducer(s.client, "jobs", nil).Dispatch(ctx, job))

	msgs, err := cons.Read(ctx)
	s.Require().NoError(err)
	s.Require().Len(msgs, 1)
	s.Equal(job.ID, msgs[0].JobID)
	s.Equal(1, msgs[0].Attempt)

	s.Require().NoError(cons.Ack(ctx, msgs[0]))
	pending, err := s.client.XPending(ctx, "jobs", "workers").Result()
	s.Require().NoError(err)
	s.Zero(pending.Count)
}

func (s *RedisSuite) TestReadOnEmptyStream() {
	msgs, err := s.consumer("a").Read(context.Background())
	s.Require().NoError(err)
	s.Empty(msgs)
}

func (s *RedisSuite) TestRequeueBumpsAttempt() {
	ctx := context.Background()
	cons := s.consumer("a")
	s.Require().NoError(NewProducer(s.client, "jobs", nil).Dispatch(ctx, domain.Job{ID: uuid.New()}))

	msgs, err := cons.Read(ctx)
	s.Require().NoError(err)
	s.Require().Len(msgs, 1)
	s.Require().NoError(cons.Requeue(ctx, msgs[0], "claim failed"))

	again, err := cons.Read(ctx)
	s.Require().NoError(err)
	s.Require().Len(again, 1)
	s.Equal(2, again[0].Attempt)
	s.Equal("claim failed", again[0].LastError)
	s.Equal(msgs[0].JobID, again[0].JobID)
}

func (s *RedisSuite) TestSendDLQ() {
	ctx := context.Background()
	cons := s.consumer("a")
	s.Require().NoError(NewProducer(s.client, "jobs", nil).Dispatch(ctx, domain.Job{ID: uuid.New()}))

	msgs, err := cons.Read(ctx)
	s.Require().NoError(err)
	s.Require().Len(msgs, 1)
	s.Require().NoError(cons.SendDLQ(ctx, msgs[0], "gave up"))

	dead, err := s.client.XRange(ctx, "jobs-dlq", "-", "+").Result()
	s.Require().NoError(err)
	s.Require().Len(dead, 1)
	parsed, err := ParseMessage(dead[0])
	s.Require().NoError(err)
	s.Equal("gave up", parsed.LastError)
}

func (s *RedisSuite) TestReclaimTakesOverIdleMessages() {
	ctx := context.Background()
	crashed := s.consumer("crashed")
	survivor := s.consumer("survivor")
	s.Require().NoError(NewProducer(s.client, "jobs", nil).Dispatch(ctx, domain.Job{ID: uuid.New()}))

	msgs, err := crashed.Read(ctx)
	s.Require().NoError(err)
	s.Require().Len(msgs, 1)

	time.Sleep(50 * time.Millisecond)
	reclaimed, err := survivor.Reclaim(ctx)
	s.Require().NoError(err)
	s.Require().Len(reclaimed, 1)
	s.Equal(msgs[0].ID, reclaimed[0].ID)
}

func (s *RedisSuite) TestMalformedMessagesAreDropped() {
	ctx := context.Background()
	cons := s.consumer("a")
	s.Require().NoError(s.client.XAdd(ctx, &redis.XAddArgs{Stream: "jobs", Values: map[string]any{"job_id": "nope"}}).Err())

	msgs, err := cons.Read(ctx)
	s.Require().NoError(err)
	s.Empty(msgs)

	pending, err := s.client.XPending(ctx, "jobs", "workers").Result()
	s.Require().NoError(err)
	s.Zero(pending.Count)
}

func (s *RedisSuite) TestIdentityCache() {
	ctx := context.Background()
	cache := NewIdentityCache(s.client, time.Minute)

	_, ok, err := cache.Get(ctx, "552100554")
	s.Require().NoError(err)
	s.False(ok)

	want := domain.Company{SIREN: "552100554", Name: "ACME", Status: "active"}
	s.Require().NoError(cache.Set(ctx, want))

	got, ok, err := cache.Get(ctx, "552100554")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(want, got)

	ttl, err := s.client.TTL(ctx, identityKeyPrefix+"552100554").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
}

func (s *RedisSuite) TestIdentityCacheCorruptEntryIsMiss() {
	ctx := context.Background()
	s.Require().NoError(s.client.Set(ctx, identityKeyPrefix+"552100554", "{not json", 0).Err())

	_, ok, err := NewIdentityCache(s.client, time.Minute).Get(ctx, "552100554")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RedisSuite) TestFailedDLQWriteLeavesMessagePending() {
	ctx := context.Background()
	cons := s.consumer("a")
	s.Require().NoError(NewProducer(s.client, "jobs", nil).Dispatch(ctx, domain.Job{ID: uuid.New()}))
	// A plain string at the DLQ key makes XADD fail with WRONGTYPE.
	s.Require().NoError(s.client.Set(ctx, "jobs-dlq", "occupied", 0).Err())

	msgs, err := cons.Read(ctx)
	s.Require().NoError(err)
	s.Require().Len(msgs, 1)
	s.Error(cons.SendDLQ(ctx, msgs[0], "gave up"))

	pending, err := s.client.XPending(ctx, "jobs", "workers").Result()
	s.Require().NoError(err)
	s.Equal(int64(1), pending.Count, "delivery must not be acked when the move failed")
}

func (s *RedisSuite) TestRequeueAcksOriginal() {
	ctx := context.Background()
	cons := s.consumer("a")
	s.Require().NoError(NewProducer(s.client, "jobs", nil).Dispatch(ctx, domain.Job{ID: uuid.New()}))

	msgs, err := cons.Read(ctx)
	s.Require().NoError(err)
	s.Require().Len(msgs, 1)
	s.Require().NoError(cons.Requeue(ctx, msgs[0], "retry"))

	pending, err := s.client.XPending(ctx, "jobs", "workers").Result()
	s.Require().NoError(err)
	s.Zero(pending.Count)
	n, err := s.client.XLen(ctx, "jobs").Result()
	s.Require().NoError(err)
	s.Equal(int64(2), n)
}
