package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cognicore/textlens/pkg/textlens"
	"github.com/cognicore/textlens/pkg/textlens/config"
	"github.com/cognicore/textlens/pkg/textlens/events"
	"github.com/cognicore/textlens/pkg/textlens/internalerr"
	"github.com/cognicore/textlens/pkg/textlens/store/sqlite"
)

// closeTimeout bounds how long shutdown waits for queued events.
const closeTimeout = 5 * time.Second

// loadComponents resolves flags, environment and config file into a
// validated configuration.
func loadComponents() (*config.Components, error) {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode settings: %v: %w", err, internalerr.ErrInvalidConfig)
	}
	return config.Resolve(cfg)
}

func newLogger(cmd *cobra.Command, level string) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")

	var lvl slog.Level
	switch {
	case verbose:
		lvl = slog.LevelDebug
	default:
		_ = lvl.UnmarshalText([]byte(strings.ToUpper(level)))
	}

	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))
}

// withEngine opens the configured store, runs fn and shuts everything down.
func withEngine(cmd *cobra.Command, fn func(ctx context.Context, e *textlens.Engine, cfg config.Config) error) error {
	comp, err := loadComponents()
	if err != nil {
		return err
	}
	cfg := comp.Config

	logger := newLogger(cmd, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := sqlite.OpenSQLite(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.Database, err)
	}
	logger.Debug("store opened", slog.String("database", cfg.Database))

	pub := events.NewPublisher(st, events.Options{
		Buffer: cfg.EventBuffer,
		Logger: logger,
	})
	engine := textlens.New(textlens.Options{
		Store:     st,
		StopWords: comp.StopWords,
		Events:    pub,
		Logger:    logger,
	})

	runErr := fn(ctx, engine, cfg)

	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := engine.Close(closeCtx); err != nil {
		logger.Warn("shutdown incomplete", slog.Any("error", err))
	}
	return runErr
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("usage: %s: %w", usage, internalerr.ErrInvalidArgument)
		}
		return nil
	}
}

// readBody reads a file, or standard input when path is "-".
func readBody(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
