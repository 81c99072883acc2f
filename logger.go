package lightfs

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with lightfs-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogOp logs a metadata operation (create, rename, delete).
func (l *Logger) LogOp(op, name string, err error) {
	if err != nil {
		l.Error(op+" failed", "name", name, "error", err)
	} else {
		l.Debug(op+" completed", "name", name)
	}
}

// LogWrite logs a content write.
func (l *Logger) LogWrite(name string, size int64, blocks int, err error) {
	if err != nil {
		l.Error("write failed", "name", name, "size", size, "error", err)
	} else {
		l.Debug("write completed", "name", name, "size", size, "blocks", blocks)
	}
}

// LogRead logs a content read.
func (l *Logger) LogRead(name string, size int64, err error) {
	if err != nil {
		l.Error("read failed", "name", name, "error", err)
	} else {
		l.Debug("read completed", "name", name, "size", size)
	}
}

// LogBackup logs a backup or restore operation.
func (l *Logger) LogBackup(op, key string, bytes int64, err error) {
	if err != nil {
		l.Error(op+" failed", "key", key, "error", err)
	} else {
		l.Info(op+" completed", "key", key, "bytes", bytes)
	}
}
