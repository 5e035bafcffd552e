package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"ownership/internal/config"
	"ownership/internal/platform/container"
	"ownership/internal/platform/logger"
)

// AppContext holds what a command needs: configuration and the wired services.
type AppContext struct {
	Config    config.Config
	Container *container.Container
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil && !errors.Is(err, config.ErrNoDatabase) {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}
	return cfg, nil
}

// NewAppContext loads configuration and wires the container. Logs go to
// stderr so command output stays parseable.
func NewAppContext(ctx context.Context) (*AppContext, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	c, err := container.New(ctx, cfg, container.WithLogger(cliLogger()))
	if err != nil {
		return nil, err
	}
	return &AppContext{Config: cfg, Container: c}, nil
}

func (ac *AppContext) Close() {
	if ac.Container != nil {
		ac.Container.Close()
	}
}

func cliLogger() *slog.Logger {
	return logger.NewJSON(os.Stderr, slog.LevelWarn)
}
