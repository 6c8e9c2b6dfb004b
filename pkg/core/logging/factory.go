package logging

import (
	"io"
	"sync"
)

var (
	defaultLogger   *Logger
	defaultLoggerMu sync.RWMutex
)

// LoggerConfig holds string-typed settings as they come from config files and flags
type LoggerConfig struct {
	Name   string
	Level  string
	Format string
	Output io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(name string) LoggerConfig {
	return LoggerConfig{
		Name:   name,
		Level:  "info",
		Format: "console",
	}
}

// NewLogger creates a logger from string settings. Invalid values fall back
// to info/console and are reported in the returned error.
func NewLogger(cfg LoggerConfig) (*Logger, error) {
	level, levelErr := ParseLevel(cfg.Level)
	format, formatErr := ParseFormat(cfg.Format)

	logger := NewWithConfig(Config{
		Level:  level,
		Format: format,
		Output: cfg.Output,
		Name:   cfg.Name,
	})

	if levelErr != nil {
		return logger, levelErr
	}
	return logger, formatErr
}

// New creates a logger with default settings
func New(name string) *Logger {
	logger, _ := NewLogger(DefaultLoggerConfig(name))
	return logger
}

// Default returns the process-wide logger
func Default() *Logger {
	defaultLoggerMu.RLock()
	l := defaultLogger
	defaultLoggerMu.RUnlock()
	if l != nil {
		return l
	}

	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = New("skriptc")
	}
	return defaultLogger
}

// SetDefault replaces the process-wide logger
func SetDefault(logger *Logger) {
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	defaultLogger = logger
}
