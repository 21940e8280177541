// Package logging configures the process-wide slog logger with the two
// extra levels the tools use, Trace and Fatal.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

var levelNames = []struct {
	name  string
	level slog.Level
}{
	{"trace", LevelTrace},
	{"debug", slog.LevelDebug},
	{"info", slog.LevelInfo},
	{"warning", slog.LevelWarn},
	{"error", slog.LevelError},
	{"fatal", LevelFatal},
}

// ParseLevel accepts any prefix of trace, debug, info, warning, error or
// fatal, case insensitive.
func ParseLevel(value string) (slog.Level, error) {
	lv := strings.ToLower(strings.TrimSpace(value))
	if lv != "" {
		for _, l := range levelNames {
			if strings.HasPrefix(l.name, lv) {
				return l.level, nil
			}
		}
	}
	return 0, fmt.Errorf("the loglevel value %q must be a prefix of one of these words, \"trace\", \"debug\", \"info\", \"warning\", \"error\" or \"fatal\"", value)
}

// LevelName is the inverse of ParseLevel for the six known levels.
func LevelName(level slog.Level) string {
	for _, l := range levelNames {
		if l.level == level {
			return l.name
		}
	}
	return level.String()
}

// Setup installs a text or json handler writing to w as the default logger
// and returns it.
func Setup(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(strings.ToUpper(LevelName(l)))
				}
			}
			return a
		},
	}

	var h slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger, nil
}

// Trace logs at LevelTrace on the default logger.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// Fatal logs at LevelFatal and terminates the program.
func Fatal(msg string, args ...any) {
	slog.Log(context.Background(), LevelFatal, msg, args...)
	os.Exit(1)
}
