// Package main is the entry point for the item service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vyrodovalexey/listapp/internal/config"
	"github.com/vyrodovalexey/listapp/internal/server"
	"github.com/vyrodovalexey/listapp/internal/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use a basic logger for startup errors
		basicLogger, _ := zap.NewProduction()
		basicLogger.Fatal("failed to load configuration", zap.Error(err))
	}

	// Initialize logger
	logger, err := initLogger(cfg)
	if err != nil {
		basicLogger, _ := zap.NewProduction()
		basicLogger.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("configuration loaded",
		zap.Int("server_port", cfg.ServerPort),
		zap.Int("probe_port", cfg.ProbePort),
		zap.String("log_level", cfg.LogLevel),
		zap.String("environment", cfg.Environment),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
		zap.Bool("events_enabled", cfg.EventsEnabled),
		zap.Int("rate_limit_per_min", cfg.RateLimitPerMin),
		zap.Int64("max_body_bytes", cfg.MaxBodyBytes),
	)

	// The store lives for the whole process and starts empty.
	itemStore := store.NewMemoryStore()

	srv, err := server.New(cfg, logger, itemStore)
	if err != nil {
		logger.Error("failed to create server", zap.Error(err))
		return 1
	}

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			return 1
		}
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return 1
		}
	}

	logger.Info("server stopped")
	return 0
}

// initLogger builds the zap logger described by cfg.
func initLogger(cfg *config.Config) (*zap.Logger, error) {
	return loggerConfig(cfg).Build()
}

// loggerConfig maps the service configuration onto a zap config. Production
// output is sampled JSON; other environments get a console encoder. Test mode
// disables sampling so every line reaches the output.
func loggerConfig(cfg *config.Config) zap.Config {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	production := cfg.IsProduction()

	encoding := "json"
	encodeLevel := zapcore.LowercaseLevelEncoder
	if !production {
		encoding = "console"
		encodeLevel = zapcore.CapitalColorLevelEncoder
	}

	sampling := &zap.SamplingConfig{
		Initial:    100,
		Thereafter: 100,
	}
	if cfg.IsTest() {
		sampling = nil
	}

	return zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: !production,
		Sampling:    sampling,
		Encoding:    encoding,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    encodeLevel,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
}
