package telemetry

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alekLukanen/errs"
)

const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// ParseLevel maps a level name to its slog level. Unknown names fall
// back to info so a typo never silences a run.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(value) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func NewLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if format == LogFormatText {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// SetupLogger builds the process logger on stdout and, when logFile is
// non-empty, tees every line into the run log. The returned close
// function releases the log file.
func SetupLogger(level string, format string, logFile string) (*slog.Logger, func() error, error) {
	w := io.Writer(os.Stdout)
	closeFunc := func() error { return nil }

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, errs.Wrap(err, fmt.Errorf("opening log file %s", logFile))
		}
		w = io.MultiWriter(os.Stdout, file)
		closeFunc = file.Close
	}

	logger := NewLogger(w, ParseLevel(level), format)
	slog.SetDefault(logger)
	return logger, closeFunc, nil
}

// WithRunID returns a logger that stamps every line with the run id.
func WithRunID(logger *slog.Logger, runID string) *slog.Logger {
	return logger.With(slog.String("run_id", runID))
}
