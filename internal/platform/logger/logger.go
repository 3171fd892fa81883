package logger

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"
)

const (
	fieldRequestID = "request_id"
	fieldOperation = "operation"
)

// NewLoggerFromContext returns the Logger stored in the Context, or a new
// Logger if none was set.
func NewLoggerFromContext(ctx context.Context) *zap.Logger {
	v := ctx.Value(KeyLogger)

	if v == nil {
		return newLogger(ctx)
	}

	return v.(*zap.Logger)
}

// newLogger builds a Logger carrying the fields already present in the
// Context.
func newLogger(ctx context.Context) *zap.Logger {
	logger, err := newConfig().Build()
	if err != nil {
		logger = zap.NewNop()
	}

	if id, ok := ctx.Value(KeyRequestID).(string); ok {
		logger = logger.With(zap.String(fieldRequestID, id))
	}
	if op, ok := ctx.Value(KeyOperation).(string); ok {
		logger = logger.With(zap.String(fieldOperation, op))
	}

	return logger
}

func newConfig() zap.Config {
	if strings.ToUpper(os.Getenv("DEVELOPMENT")) == "TRUE" {
		return zap.NewDevelopmentConfig()
	}

	config := zap.NewProductionConfig()
	config.DisableStacktrace = true
	return config
}
