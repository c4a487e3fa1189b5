package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/contre95/tubequeue/src/features/config"
)

// SetupLogger builds the application logger from the logger section of the configuration.
func SetupLogger(cfg *config.Manager) *slog.Logger {
	return newLogger(os.Stderr, cfg.Get().Logger)
}

func newLogger(w io.Writer, lc config.Logger) *slog.Logger {
	if !lc.Enabled {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var formatter log.Formatter
	switch lc.Format {
	case "json":
		formatter = log.JSONFormatter
	case "text":
		formatter = log.TextFormatter
	default:
		formatter = log.LogfmtFormatter
	}

	handler := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "Tubequeue",
		Formatter:       formatter,
		Level:           parseLevel(lc.Level),
	})

	logger := slog.New(handler)
	logger.Info("Logger initialized", "time", time.Now().Format(time.RFC3339))
	return logger
}

func parseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
