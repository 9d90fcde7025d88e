package core

import (
	"context"

	"go.uber.org/zap"
)

// Context keys for command options
type contextKey string

const (
	loggerKey contextKey = "logger"
)

// ContextWithLogger attaches the logger used by commands run under ctx.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext returns the logger attached to ctx, or a no-op logger.
func LoggerFromContext(ctx context.Context) *zap.Logger {
	val := ctx.Value(loggerKey)
	if val == nil {
		return zap.NewNop() // default: discard diagnostics
	}
	logger, ok := val.(*zap.Logger)
	if !ok || logger == nil {
		return zap.NewNop()
	}
	return logger
}
