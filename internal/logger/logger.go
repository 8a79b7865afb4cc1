package logger

import (
	"sync"

	"go.uber.org/zap"
)

// Log is the process-wide logger. It is a no-op until Init is called so that
// packages can log from tests without setup.
var Log = zap.NewNop()

var once sync.Once

// Init installs the production logger. Calling it more than once is harmless.
func Init() {
	InitWithDebug(false)
}

// InitWithDebug installs a development logger (debug level, console encoding)
// when debug is true, otherwise the production logger.
func InitWithDebug(debug bool) {
	once.Do(func() {
		var (
			l   *zap.Logger
			err error
		)
		if debug {
			l, err = zap.NewDevelopment()
		} else {
			l, err = zap.NewProduction()
		}
		if err != nil {
			// Keep the no-op logger rather than failing startup over logging.
			return
		}
		Log = l
	})
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Log.Sync()
}
