package logging

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "POSITIONS_LOG_LEVEL"

// Initialize creates a new logger with the specified level.
// If level is empty, it checks POSITIONS_LOG_LEVEL environment variable.
// If neither is set, logging is disabled (silent mode).
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		logger.Store(zap.NewNop())
		return nil
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	l, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Store(l)

	return nil
}

// SetLogger replaces the global logger. Tests use it with zaptest/observer cores.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	return logger.Load()
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// LogRequest logs an outgoing backend request
func LogRequest(method, url string) {
	Debug("Backend request",
		zap.String("method", method),
		zap.String("url", url),
	)
}

// LogResponse logs the outcome of a backend request
func LogResponse(method, url string, status int, elapsed time.Duration) {
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", status),
		zap.Duration("elapsed", elapsed),
	}
	if status >= 400 {
		Warn("Backend response", fields...)
		return
	}
	Debug("Backend response", fields...)
}

// LogBootstrapStep logs completion (or failure) of one grid configuration step
func LogBootstrapStep(step string, err error) {
	if err != nil {
		Warn("Grid config step failed",
			zap.String("step", step),
			zap.Error(err),
		)
		return
	}
	Info("Grid config step complete", zap.String("step", step))
}

// LogLookup logs a lookup controller event for one field
func LogLookup(field string, generation uint64, event string) {
	Debug("Lookup event",
		zap.String("field", field),
		zap.Uint64("generation", generation),
		zap.String("event", event),
	)
}

// LogChangeEvent logs a row change event received from or sent on the change feed
func LogChangeEvent(direction, event, id string) {
	Debug("Change feed event",
		zap.String("direction", direction),
		zap.String("event", event),
		zap.String("id", id),
	)
}

// LogHTTPRequest logs a request served by the development backend
func LogHTTPRequest(remoteAddr, method, path string, status int, elapsed time.Duration) {
	Info("HTTP request served",
		zap.String("remote_addr", remoteAddr),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("elapsed", elapsed),
	)
}

// Sync flushes any buffered log entries
func Sync() {
	_ = GetLogger().Sync()
}
