package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/edutrack/internal/logging"
)

func defaultLogger(logger *zap.Logger) *zap.Logger {
	if logger != nil {
		return logger
	}
	return zap.NewNop()
}

func serviceLogger(ctx context.Context, base *zap.Logger, serviceName, operation string, fields ...zap.Field) *zap.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	all := make([]zap.Field, 0, len(fields)+2)
	all = append(all, zap.String("service", serviceName))
	if operation != "" {
		all = append(all, zap.String("operation", operation))
	}
	all = append(all, fields...)
	return logger.With(all...)
}

// logOutcome logs err at Error with its kind, or msg at Info when err is nil.
func logOutcome(logger *zap.Logger, err error, failure, success string, fields ...zap.Field) {
	if err != nil {
		logger.Error(failure, zap.Error(err), zap.String("error_kind", ErrorKind(err)))
		return
	}
	logger.Info(success, fields...)
}
