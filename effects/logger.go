package effects

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// Logger returns the logger interpreters write their debug traces to.
func Logger() *zap.Logger {
	return logger.Load()
}

// SetLogger installs l as the runtime logger and returns a function that
// restores the previous one. A nil l installs a no-op logger.
func SetLogger(l *zap.Logger) func() {
	if l == nil {
		l = zap.NewNop()
	}
	prev := logger.Swap(l)
	return func() {
		logger.Store(prev)
	}
}
