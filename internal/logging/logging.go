// Package logging builds the process logger.
package logging

import (
	"io"
	"log/slog"
	"runtime"

	"github.com/lmittmann/tint"
)

// Options selects the log handler.
type Options struct {
	// Format is "json" or "text". Text output is colorized by tint.
	Format    string
	Level     slog.Level
	AddSource bool
}

// New creates a logger writing to w.
func New(w io.Writer, opts Options) *slog.Logger {
	return slog.New(newHandler(w, opts))
}

// WithBuildInfo tags log with the binary's build variables.
func WithBuildInfo(log *slog.Logger, app, commit string) *slog.Logger {
	return log.With(
		slog.String("app", app),
		slog.String("commit_hash", commit),
		slog.String("goversion", runtime.Version()),
	)
}

func newHandler(w io.Writer, opts Options) slog.Handler {
	//nolint: exhaustruct // optional config
	logOpts := &slog.HandlerOptions{
		Level:     opts.Level,
		AddSource: opts.AddSource,
	}

	switch opts.Format {
	case "json":
		return slog.NewJSONHandler(w, logOpts)
	default:
		//nolint:exhaustruct // optional config
		return tint.NewHandler(w, &tint.Options{
			AddSource:  opts.AddSource,
			Level:      opts.Level,
			TimeFormat: "15:04:05",
			NoColor:    true,
		})
	}
}
