// Package logger wraps zerolog with a process-wide logger and context helpers.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the process-wide logger. Init replaces it.
var Logger = log.Logger

// Config controls level, output format and caller reporting.
type Config struct {
	Level        string `mapstructure:"level"`
	Format       string `mapstructure:"format"` // json or pretty
	TimeFormat   string `mapstructure:"time_format"`
	ReportCaller bool   `mapstructure:"report_caller"`
}

// Init configures the global logger. Unknown levels fall back to info.
func Init(cfg Config) {
	InitWithWriter(cfg, os.Stderr)
}

// InitWithWriter is Init with an explicit destination.
func InitWithWriter(cfg Config, w io.Writer) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.TimeFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	} else {
		zerolog.TimeFieldFormat = cfg.TimeFormat
	}

	out := w
	if cfg.Format == "pretty" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: cfg.TimeFormat}
	}

	lctx := zerolog.New(out).Level(level).With().Timestamp()
	if cfg.ReportCaller {
		lctx = lctx.Caller()
	}

	Logger = lctx.Logger()
	log.Logger = Logger
}

// Debug starts a debug event.
func Debug() *zerolog.Event { return Logger.Debug() }

// Info starts an info event.
func Info() *zerolog.Event { return Logger.Info() }

// Warn starts a warn event.
func Warn() *zerolog.Event { return Logger.Warn() }

// Error starts an error event.
func Error() *zerolog.Event { return Logger.Error() }

// With returns a child logger carrying a component field.
func With(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// Ctx returns the logger stored in ctx, or the global logger when none is attached.
func Ctx(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &Logger
	}
	return l
}

// WithContext attaches l to ctx.
func WithContext(ctx context.Context, l zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}
