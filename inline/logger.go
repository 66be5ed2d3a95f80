package inline

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/inlinedst/errors"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the inline package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the inline package's logger.
// This must be called before any containers are created.
func SetLogger(l *zap.Logger) {
	logger = l
}

func logRejected(container string, err *errors.Error) {
	if ce := Logger().Check(zap.DebugLevel, "capacity exhausted"); ce != nil {
		ce.Write(
			zap.String("container", container),
			zap.String("phase", string(err.Phase)),
			zap.String("go_type", err.GoType),
			zap.String("detail", err.Detail),
		)
	}
}
