package logger

import (
	"log/slog"
	"os"
)

var Logger *slog.Logger

func init() {
	// Packages log before InitLogger runs in tests.
	Logger = slog.New(NewTraceContextHandler(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
}

// InitLogger builds the process logger. With enableOTel the records are also
// exported through the global OTel logger provider.
func InitLogger(level string, enableOTel bool) *slog.Logger {
	lvl := ParseLevel(level)

	var handler slog.Handler
	if enableOTel {
		handler = NewMultiHandler(lvl)
	} else {
		handler = NewTraceContextHandler(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)

	Logger.Info("Logger initialized", "level", lvl.String(), "otel_enabled", enableOTel)

	return Logger
}

func ParseLevel(level string) slog.Level {
	switch level {
	case "debug", "DEBUG":
		return slog.LevelDebug
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn
	case "error", "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
