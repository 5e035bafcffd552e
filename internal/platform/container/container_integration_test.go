//go:build integration

package container

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"ownership/internal/config"
	"ownership/internal/domain"
	"ownership/internal/platform/logger"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	c, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("ownership"),
		tcpostgres.WithUsername("ownership"),
		tcpostgres.WithPassword("ownership"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, c)
	require.NoError(t, err)

	url, err := c.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return url
}

func testConfig(t *testing.T, dbURL string) config.Config {
	return config.Config{
		DatabaseURL: dbURL,
		DBMaxConns:  4,
		ArtifactDir: t.TempDir(),
		NodeID:      1,
		Dispatch:    config.DispatchInline,
		Redis: config.RedisConfig{
			Stream:      "ownership",
			Group:       "ownership-workers",
			DLQStream:   "ownership-dlq",
			MaxAttempts: 3,
			IdentityTTL: time.Hour,
		},
	}
}

func TestInlineJobEndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, startPostgres(t))

	c, err := New(ctx, cfg, WithMigrations(), WithLogger(logger.NewJSON(testWriter{t}, 0)))
	require.NoError(t, err)
	defer c.Close()

	job, err := c.Ownership.Create(ctx, "552 100 554", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.JobDone, job.Status)
	assert.Equal(t, domain.DefaultDepth, job.Depth)

	got, arts, err := c.Ownership.Get(ctx, job.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Result)
	assert.Equal(t, "552100554", got.Result.SIREN)
	assert.Equal(t, "none (registry unavailable)", got.Result.Summary.Sources)
	assert.Len(t, arts, 3)

	for _, a := range arts {
		f, err := c.Artifacts.Open(a.Path)
		require.NoError(t, err, a.Kind)
		_ = f.Close()
	}
}

func TestRedisDispatchEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rc, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, rc)
	require.NoError(t, err)
	redisURL, err := rc.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := testConfig(t, startPostgres(t))
	cfg.Dispatch = config.DispatchRedis
	cfg.Redis.URL = redisURL

	c, err := New(ctx, cfg, WithMigrations(), WithLogger(logger.NewJSON(testWriter{t}, 0)))
	require.NoError(t, err)
	defer c.Close()

	job, err := c.Ownership.Create(ctx, "552100554", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.JobQueued, job.Status)

	w, err := c.StreamWorker(ctx, "test-0")
	require.NoError(t, err)
	workerCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- w.Run(workerCtx) }()

	require.Eventually(t, func() bool {
		got, _, err := c.Ownership.Get(ctx, job.ID)
		return err == nil && got.Status == domain.JobDone
	}, 30*time.Second, 100*time.Millisecond)

	stop()
	require.NoError(t, <-done)
}

func TestNewRequiresDatabase(t *testing.T) {
	_, err := New(context.Background(), config.Config{})
	assert.ErrorIs(t, err, config.ErrNoDatabase)
}

// testWriter routes log output through t.Log.
type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}
