package logger

import (
	"io"
	"os"
	"sync/atomic"
)

var defLogger atomic.Value

func init() {
	defLogger.Store(loggerHolder{NewSlog(os.Stderr, InfoLevel, FormatConsole)})
}

type loggerHolder struct{ Logger }

// GetLogger returns the package default logger.
func GetLogger() Logger {
	return defLogger.Load().(loggerHolder).Logger
}

// SetDefault replaces the package default logger.
func SetDefault(l Logger) {
	if l == nil {
		l = Nop()
	}
	defLogger.Store(loggerHolder{l})
}

func Debug(msg string, keysAndValues ...any) { GetLogger().Debug(msg, keysAndValues...) }
func Info(msg string, keysAndValues ...any)  { GetLogger().Info(msg, keysAndValues...) }
func Warn(msg string, keysAndValues ...any)  { GetLogger().Warn(msg, keysAndValues...) }
func Error(msg string, keysAndValues ...any) { GetLogger().Error(msg, keysAndValues...) }

// Nop returns a logger that discards everything.
func Nop() Logger {
	return NewSlog(io.Discard, ErrorLevel, FormatJSON)
}
