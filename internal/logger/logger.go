// Package logger builds the process zap logger and carries request-scoped loggers
// through context.
package logger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every entry of a logger built by New.
const ServiceName = "stranalyzer"

// presets maps an ENV value to its base zap configuration.
var presets = map[string]func() zap.Config{
	"prod":   production,
	"dev":    development,
	"local":  development,
	"docker": development,
}

func production() zap.Config {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.TimeKey = "ts"
	return cfg
}

func development() zap.Config {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}

// New builds the logger for env ("prod" writes JSON, "local", "dev" and "docker" write
// colored console lines, "test" discards). A non-empty level replaces the preset level.
func New(env, level string) (*zap.Logger, error) {
	if env == "test" {
		return zap.NewNop(), nil
	}
	preset, ok := presets[env]
	if !ok {
		return nil, fmt.Errorf("logger: unknown environment %q", env)
	}
	cfg := preset()

	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("logger: level %q: %w", level, err)
		}
		cfg.Level = lvl
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("logger: build: %w", err)
	}
	return l.With(zap.String("service", ServiceName)), nil
}

type ctxKey struct{}

// Into returns a copy of ctx carrying l.
func Into(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored by Into, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}
