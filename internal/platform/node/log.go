package node

import (
	"context"

	"go.uber.org/zap"

	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/logger"
)

// contextLogger returns the context's logger, annotated with the trace id
// of the operation in progress when there is one.
func contextLogger(ctx context.Context) *zap.SugaredLogger {
	l := logger.NewLoggerFromContext(ctx).Sugar()
	if v := OperationValues(ctx); v != nil {
		l = l.With("trace_id", v.TraceID)
	}
	return l
}

// Log adds an info level entry to the log.
func Log(ctx context.Context, format string, values ...interface{}) {
	contextLogger(ctx).Infof(format, values...)
}

// LogVerbose adds a debug level entry to the log.
func LogVerbose(ctx context.Context, format string, values ...interface{}) {
	contextLogger(ctx).Debugf(format, values...)
}

// LogWarn adds a warning level entry to the log.
func LogWarn(ctx context.Context, format string, values ...interface{}) {
	contextLogger(ctx).Warnf(format, values...)
}

// LogError adds an error level entry to the log.
func LogError(ctx context.Context, format string, values ...interface{}) {
	contextLogger(ctx).Errorf(format, values...)
}
