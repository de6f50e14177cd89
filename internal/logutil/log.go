package logutil

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type (
	ctxKey byte
)

var (
	loggerKey = ctxKey(1)
)

// WithLogger returns a context carrying logger
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetOrDefault returns the logger attached to ctx or the global one
func GetOrDefault(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return l
	}
	return log.Logger
}
