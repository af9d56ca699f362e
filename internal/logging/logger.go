// Package logging provides the leveled console logger used throughout the
// batch, backed by zerolog. Console lines go through zerolog's ConsoleWriter;
// an optional log file receives JSON lines tagged with a per-run id.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/backmassage/glitchbatch/internal/config"
	"github.com/backmassage/glitchbatch/internal/term"
)

const timeFormat = "2006-01-02 15:04:05"

// Logger provides leveled, optionally colored logging with optional file sink.
type Logger struct {
	out     io.Writer
	console zerolog.Logger
	json    zerolog.Logger
	file    *os.File
	runID   string
}

// NewLogger logs to stdout. Call Close() when done if LogFile was set.
func NewLogger(cfg *config.Config) (*Logger, error) {
	return New(os.Stdout, cfg)
}

// New configures terminal styles for out, builds the console logger, and
// opens cfg.LogFile for appending when set.
func New(out io.Writer, cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode, out)

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}

	cw := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: timeFormat,
		NoColor:    !term.Enabled(),
	}
	l := &Logger{
		out:     out,
		console: zerolog.New(cw).Level(level).With().Timestamp().Logger(),
		json:    zerolog.Nop(),
		runID:   uuid.NewString(),
	}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
		l.json = zerolog.New(f).Level(level).With().
			Timestamp().
			Str("run", l.runID).
			Logger()
	}
	return l, nil
}

// RunID identifies this process's lines in an appended log file.
func (l *Logger) RunID() string { return l.runID }

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.json = zerolog.Nop()
	return err
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.console.Info().Msg(msg)
	l.json.Info().Msg(msg)
}

// Success logs at INFO level with the message in the success style.
func (l *Logger) Success(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.console.Info().Msg(term.Success.Render(msg))
	l.json.Info().Bool("success", true).Msg(msg)
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.console.Warn().Msg(term.Warn.Render(msg))
	l.json.Warn().Msg(msg)
}

// Error logs at ERROR level.
func (l *Logger) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.console.Error().Msg(term.Error.Render(msg))
	l.json.Error().Msg(msg)
}

// Debug logs at DEBUG level; dropped unless the logger was built verbose.
func (l *Logger) Debug(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.console.Debug().Msg(term.Muted.Render(msg))
	l.json.Debug().Msg(msg)
}

// Break writes a blank separator line to the console only.
func (l *Logger) Break() {
	_, _ = io.WriteString(l.out, "\n")
}

// Writer returns the console destination, for banners and raw tool output.
func (l *Logger) Writer() io.Writer { return l.out }

