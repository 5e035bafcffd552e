package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

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
	if err != nil {
		return err
	}
	if cfg.Dispatch == config.DispatchInline {
		return errors.New("worker needs DISPATCH_MODE=poll or redis")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 2
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

	c, err := container.New(ctx, cfg, container.WithLogger(l))
	if err != nil {
		return err
	}
	defer c.Close()

	l.Info("worker starting", "dispatch", string(cfg.Dispatch), "count", workers)

	if cfg.Dispatch == config.DispatchPoll {
		c.Runner.Run(ctx, workers, cfg.PollInterval)
		l.Info("worker stopped")
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		name := fmt.Sprintf("%s-%d", cfg.Redis.Consumer, i)
		w, err := c.StreamWorker(gctx, name)
		if err != nil {
			return err
		}
		g.Go(func() error { return w.Run(gctx) })
	}
	err = g.Wait()
	l.Info("worker stopped")
	return err
}
