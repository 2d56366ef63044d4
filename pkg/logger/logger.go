package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/creativehub/nexus/pkg/config"
)

var logger *log.Logger
var logFile *os.File

// Init opens the configured log file and sets the level. Verbose forces debug.
func Init(verbose bool) {
	level, err := log.ParseLevel(config.GetString(config.KeyLogLevel))
	if err != nil {
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}

	var out io.Writer = os.Stderr
	f, err := os.OpenFile(config.GetString(config.KeyLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err == nil {
		logFile = f
		out = f
	}

	logger = log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          "nexus",
		Level:           level,
	})
}

// SetOutput redirects logging, mainly for tests
func SetOutput(w io.Writer, level log.Level) {
	logger = log.NewWithOptions(w, log.Options{Level: level})
}

// Close releases the log file
func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// Debug logs a debug message
func Debug(msg string, args ...interface{}) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}

// Info logs an info message
func Info(msg string, args ...interface{}) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

// Warn logs a warning message
func Warn(msg string, args ...interface{}) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

// Error logs an error message
func Error(msg string, args ...interface{}) {
	if logger != nil {
		logger.Error(msg, args...)
	}
}
