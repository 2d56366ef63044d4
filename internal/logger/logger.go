// Package logger holds the server's global zap logger and the field helpers
// used across handlers and services.
package logger

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is a no-op until Initialize runs, so packages can log from tests
var Log = zap.NewNop()

// level is shared by both cores so SetLevel changes them together
var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// Rotation limits for the JSON log file
const (
	maxFileSizeMB = 100
	maxBackups    = 5
	maxAgeDays    = 7
)

// Initialize writes human-readable logs to stdout and JSON logs to a rotated
// file. Unknown levels fall back to info; an empty file name means server.log.
func Initialize(logLevel string, logFile string) error {
	if logFile == "" {
		logFile = "server.log"
	}
	SetLevel(logLevel)

	fileEncoder := zap.NewProductionEncoderConfig()
	fileEncoder.EncodeTime = zapcore.ISO8601TimeEncoder
	rotated := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    maxFileSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.Lock(os.Stdout), level),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoder), zapcore.AddSync(rotated), level),
	)
	Log = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
		With(zap.String("service", "nexus"))

	Log.Info("Logger initialized", zap.Stringer("level", level.Level()), zap.String("file", logFile))
	return nil
}

// SetLevel changes the level at runtime. "warning" is accepted for warn.
func SetLevel(logLevel string) {
	if logLevel == "warning" {
		logLevel = "warn"
	}
	parsed, err := zapcore.ParseLevel(logLevel)
	if err != nil || parsed > zapcore.ErrorLevel {
		parsed = zapcore.InfoLevel
	}
	level.SetLevel(parsed)
}

// Close flushes buffered entries
func Close() error {
	return Log.Sync()
}

// WarnWithFields logs a warning, attaching err when it is non-nil
func WarnWithFields(msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	Log.Warn(msg, fields...)
}

// ErrorWithFields logs at error level, attaching err when it is non-nil
func ErrorWithFields(msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	Log.Error(msg, fields...)
}

// FatalWithFields logs and exits
func FatalWithFields(msg string, err error) {
	Log.Fatal(msg, zap.Error(err))
}

func WithRequestID(requestID string) zap.Field {
	return zap.String("request_id", requestID)
}

func WithUserID(userID string) zap.Field {
	return zap.String("user_id", userID)
}

func WithProjectID(projectID string) zap.Field {
	return zap.String("project_id", projectID)
}

func WithHireRequestID(id string) zap.Field {
	return zap.String("hire_request_id", id)
}

func WithIP(ip string) zap.Field {
	return zap.String("ip", ip)
}

func WithStatus(status int) zap.Field {
	return zap.Int("status", status)
}

func WithDuration(duration time.Duration) zap.Field {
	return zap.Duration("duration", duration)
}
