// Package container wires configuration into the concrete adapters and
// services shared by the server, the worker and the operator CLI.
package container

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"ownership/internal/adapters/postgres"
	redisadapter "ownership/internal/adapters/redis"
	"ownership/internal/adapters/sirene"
	"ownership/internal/artifacts"
	"ownership/internal/config"
	"ownership/internal/platform/id"
	"ownership/internal/platform/metrics"
	"ownership/internal/ports"
	"ownership/internal/resultschema"
	"ownership/internal/services/companies"
	"ownership/internal/services/ownership"
	"ownership/internal/workers/ownershiprunner"
)

type Container struct {
	Config     config.Config
	Logger     *slog.Logger
	DB         *postgres.DB
	Redis      *redis.Client // nil unless REDIS_URL is set
	Registry   *prometheus.Registry
	Metrics    *metrics.Metrics
	Artifacts  *artifacts.Store
	Companies  *companies.Service
	Runner     *ownershiprunner.Runner
	Dispatcher ports.Dispatcher
	Ownership  *ownership.Service
}

type options struct {
	logger  *slog.Logger
	migrate bool
}

type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMigrations applies pending migrations right after connecting.
func WithMigrations() Option {
	return func(o *options) { o.migrate = true }
}

func New(ctx context.Context, cfg config.Config, opts ...Option) (*Container, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger

	if cfg.DatabaseURL == "" {
		return nil, config.ErrNoDatabase
	}
	if err := id.Init(cfg.NodeID); err != nil {
		return nil, fmt.Errorf("init id generator: %w", err)
	}

	c := &Container{Config: cfg, Logger: log}
	ok := false
	defer func() {
		if !ok {
			c.Close()
		}
	}()

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	c.DB = db
	log.InfoContext(ctx, "database connected")

	if o.migrate {
		n, err := db.Migrate(ctx)
		if err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.InfoContext(ctx, "migrations applied", "count", n)
	}

	if cfg.Redis.Enabled() {
		rdb, err := redisadapter.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.Redis = rdb
		log.InfoContext(ctx, "redis connected", "stream", cfg.Redis.Stream)
	}

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metrics.New(c.Registry)

	store, err := artifacts.New(cfg.ArtifactDir)
	if err != nil {
		return nil, err
	}
	c.Artifacts = store

	var registry ports.Registry
	if cfg.Sirene.Enabled {
		registry = sirene.New(sirene.Config{
			BaseURL: cfg.Sirene.BaseURL,
			Token:   cfg.Sirene.Token,
			Timeout: cfg.Sirene.Timeout,
		})
	}
	var cache ports.IdentityCache
	if c.Redis != nil {
		cache = redisadapter.NewIdentityCache(c.Redis, cfg.Redis.IdentityTTL)
	}
	c.Companies = companies.New(registry, cache, db, c.Metrics, log)

	schema, err := resultschema.New()
	if err != nil {
		return nil, err
	}
	processor := &ownershiprunner.StubProcessor{
		Companies: c.Companies,
		Artifacts: store,
		Schema:    schema,
		Logger:    log,
	}
	c.Runner = ownershiprunner.NewRunner(db, processor, c.Metrics, log)

	switch cfg.Dispatch {
	case config.DispatchRedis:
		if c.Redis == nil {
			return nil, errors.New("redis dispatch requires REDIS_URL")
		}
		c.Dispatcher = redisadapter.NewProducer(c.Redis, cfg.Redis.Stream, log)
	case config.DispatchPoll:
		c.Dispatcher = ownershiprunner.PollDispatcher{}
	default:
		c.Dispatcher = ownershiprunner.InlineDispatcher{Runner: c.Runner}
	}
	c.Ownership = ownership.New(db, c.Dispatcher, c.Metrics, log)

	ok = true
	return c, nil
}

// StreamWorker builds a stream consumer named consumer inside the configured group.
func (c *Container) StreamWorker(ctx context.Context, consumer string) (*ownershiprunner.StreamWorker, error) {
	if c.Redis == nil {
		return nil, errors.New("stream worker requires REDIS_URL")
	}
	rc := c.Config.Redis
	cons, err := redisadapter.NewConsumer(ctx, c.Redis, redisadapter.ConsumerConfig{
		Stream:       rc.Stream,
		Group:        rc.Group,
		Consumer:     consumer,
		DLQStream:    rc.DLQStream,
		BatchSize:    1,
		Block:        5 * time.Second,
		MinIdle:      5 * time.Minute,
		RequeueDelay: time.Second,
	})
	if err != nil {
		return nil, err
	}
	return ownershiprunner.NewStreamWorker(cons, c.DB, c.Runner, ownershiprunner.StreamConfig{
		MaxAttempts:     rc.MaxAttempts,
		ReclaimInterval: time.Minute,
		// below MinIdle so a reclaimed delivery always finds its run stale
		StaleAfter: 4 * time.Minute,
	}, c.Logger), nil
}

func (c *Container) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
