// Package logger is the process-wide slog setup plus the request counters
// reported by the health endpoint.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Type alias for slog.Level for easier usage
type Level = slog.Level

const (
	LevelDebug   = slog.LevelDebug
	LevelInfo    = slog.LevelInfo
	LevelWarning = slog.LevelWarn
	LevelError   = slog.LevelError
)

var (
	Logger       *slog.Logger
	programLevel = new(slog.LevelVar)
)

// Counters are incremented regardless of level. TotalErrors and
// TotalWarnings count log calls, the HTTP counters count responses.
var (
	TotalErrors    atomic.Int64
	TotalWarnings  atomic.Int64
	Total5xxErrors atomic.Int64
	Total4xxErrors atomic.Int64
	Total400Errors atomic.Int64
)

func init() {
	programLevel.Set(slog.LevelInfo)
	Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: programLevel}))
}

// Setup replaces the default logger. format is "json" or "text".
func Setup(w io.Writer, level, format string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	programLevel.Set(lvl)

	opts := &slog.HandlerOptions{Level: programLevel}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "", "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		return fmt.Errorf("unknown log format: %s", format)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)
	return nil
}

// SetLevel sets the minimum log level for the logger
func SetLevel(level slog.Level) {
	programLevel.Set(level)
}

// GetLevel returns the current minimum log level
func GetLevel() slog.Level {
	return programLevel.Level()
}

// ParseLevel converts a string level name to slog.Level
func ParseLevel(levelStr string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return LevelDebug, nil
	case "", "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarning, nil
	case "ERROR":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s (defaulting to INFO)", levelStr)
	}
}

func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs a warning and bumps TotalWarnings.
func Warn(msg string, args ...any) {
	TotalWarnings.Add(1)
	Logger.Warn(msg, args...)
}

// Error logs an error and bumps TotalErrors.
func Error(msg string, args ...any) {
	TotalErrors.Add(1)
	Logger.Error(msg, args...)
}

// ErrorHttp5xx counts a 5xx response. The handler logs the cause itself.
func ErrorHttp5xx() {
	Total5xxErrors.Add(1)
}

// WarnHttp4xx counts a 4xx response.
func WarnHttp4xx(status int) {
	Total4xxErrors.Add(1)
	TotalWarnings.Add(1)
	if status == 400 {
		Total400Errors.Add(1)
	}
}

// Counters is a point-in-time copy of the counters.
type Counters struct {
	Errors   int64 `json:"errors"`
	Warnings int64 `json:"warnings"`
	HTTP5xx  int64 `json:"http_5xx"`
	HTTP4xx  int64 `json:"http_4xx"`
	HTTP400  int64 `json:"http_400"`
}

func Snapshot() Counters {
	return Counters{
		Errors:   TotalErrors.Load(),
		Warnings: TotalWarnings.Load(),
		HTTP5xx:  Total5xxErrors.Load(),
		HTTP4xx:  Total4xxErrors.Load(),
		HTTP400:  Total400Errors.Load(),
	}
}
