package logger

import (
	"log/slog"
	"os"
)

// Logging levels accepted by config
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Environments that pick the handler format
const (
	EnvDevelopment = "dev"
	EnvProduction  = "prod"
)

// Logger is the logging contract used across services and handlers
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	With(args ...any) Logger
	WithGroup(name string) Logger
}

// New creates a logger for the given environment:
// text handler for development, JSON for everything else
func New(environment string, level string) Logger {
	if environment == EnvDevelopment {
		return NewLogger(level)
	}
	return NewJSONLogger(level)
}

// NewLogger creates a text logger with the specified level
func NewLogger(level string) Logger {
	opts := &slog.HandlerOptions{
		Level:       parseLevelString(level),
		AddSource:   true,
		ReplaceAttr: trimSourceDir,
	}

	return &slogLogger{logger: slog.New(slog.NewTextHandler(os.Stdout, opts))}
}

// NewJSONLogger creates a JSON logger with the specified level
func NewJSONLogger(level string) Logger {
	opts := &slog.HandlerOptions{
		Level:       parseLevelString(level),
		AddSource:   true,
		ReplaceAttr: trimSourceDir,
	}

	return &slogLogger{logger: slog.New(slog.NewJSONHandler(os.Stdout, opts))}
}

// NewNoOpLogger creates a logger that discards everything
func NewNoOpLogger() Logger {
	return &slogLogger{logger: slog.New(slog.DiscardHandler)}
}
