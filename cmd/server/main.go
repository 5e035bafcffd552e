package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	httpadapter "ownership/internal/adapters/http"
	"ownership/internal/config"
	"ownership/internal/platform/container"
	"ownership/internal/platform/logger"
	"ownership/internal/platform/otel"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil && !errors.Is(err, config.ErrNoDatabase) {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetry.Shutdown(shutdownCtx)
	}()

	l := logger.Setup(cfg)

	c, err := container.New(ctx, cfg, container.WithLogger(l), container.WithMigrations())
	if err != nil {
		return err
	}
	defer c.Close()

	srv := httpadapter.New(c.Ownership, c.Companies, c.Artifacts, httpadapter.Options{
		PublicBaseURL: cfg.PublicBaseURL,
		Gatherer:      c.Registry,
		Logger:        l,
	})
	httpServer := &http.Server{
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.ListenAddr, err)
	}
	if cfg.MaxConns > 0 {
		ln = netutil.LimitListener(ln, cfg.MaxConns)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l.Info("listening", "addr", ln.Addr().String(), "dispatch", string(cfg.Dispatch))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		l.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if cfg.Workers > 0 {
		startWorkers(gctx, g, c, cfg, l)
	}

	return g.Wait()
}

// startWorkers runs background workers inside the API process.
func startWorkers(ctx context.Context, g *errgroup.Group, c *container.Container, cfg config.Config, l *slog.Logger) {
	switch cfg.Dispatch {
	case config.DispatchPoll:
		g.Go(func() error {
			c.Runner.Run(ctx, cfg.Workers, cfg.PollInterval)
			return nil
		})
		l.Info("poll workers started", "count", cfg.Workers)
	case config.DispatchRedis:
		for i := 0; i < cfg.Workers; i++ {
			name := fmt.Sprintf("%s-%d", cfg.Redis.Consumer, i)
			g.Go(func() error {
				w, err := c.StreamWorker(ctx, name)
				if err != nil {
					return err
				}
				return w.Run(ctx)
			})
		}
		l.Info("stream workers started", "count", cfg.Workers)
	default:
		l.Info("inline dispatch; WORKERS ignored")
	}
}
