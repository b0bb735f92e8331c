package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Setup builds the process logger. Every command sets it as the slog default
// before doing any work.
func Setup(level, format string) *slog.Logger {
	var formatter log.Formatter
	switch format {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	default:
		formatter = log.TextFormatter
	}

	lvl := log.InfoLevel
	if level == "debug" {
		lvl = log.DebugLevel
	}

	handler := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "trackkeeper",
		Formatter:       formatter,
		Level:           lvl,
	})
	return slog.New(handler)
}
