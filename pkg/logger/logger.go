// Package logger holds the process-wide logger shared by the codec, the
// capture reader and the CLI.
package logger

import (
	"strings"

	"github.com/hsdfat/go-zlog/logger"
	"go.uber.org/zap"
)

// Log is the global logger instance for diam2json
var Log logger.LoggerI = logger.NewLogger()

func init() {
	Log.(*logger.Logger).SugaredLogger = Log.(*logger.Logger).SugaredLogger.WithOptions(zap.AddCallerSkip(1))
}

// Levels accepted by SetLevel.
var Levels = []string{"debug", "info", "warn", "error", "fatal"}

// ValidLevel reports whether level is one of Levels.
func ValidLevel(level string) bool {
	for _, l := range Levels {
		if strings.EqualFold(l, level) {
			return true
		}
	}
	return false
}

// SetLevel sets the global log level
func SetLevel(level string) {
	logger.SetLevel(strings.ToLower(level))
}

// WithFields creates a new logger with contextual fields
// Example: logger.WithFields("file", "capture.pcap", "packet", 12)
func WithFields(args ...any) logger.LoggerI {
	return Log.With(args...).(logger.LoggerI)
}
