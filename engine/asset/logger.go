package asset

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the asset package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the asset package's logger.
// This must be called before any cache is created. A nil logger is ignored.
func SetLogger(l *zap.Logger) {
	if l == nil {
		return
	}
	logger = l
}
