// Where: internal/infra/ui/logger.go
// What: Leveled console logger mirrored to the append-only run log.
// Why: Standardize CLI output and keep a durable trace of every run.
package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// Logger writes leveled messages to the console and mirrors them, with
// timestamps and without color, to the run log file. Raw output of invoked
// commands goes through CommandSink so it lands in the same file.
type Logger struct {
	console *log.Logger
	file    *log.Logger
	sink    io.Writer
	path    string
	closer  io.Closer
}

// NewLogger opens (or creates) the run log at path in append mode and
// returns a logger writing to out and the file. Verbose lowers the console
// level to debug; the file always records debug and above.
func NewLogger(out io.Writer, path string, verbose bool) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	console := log.NewWithOptions(out, log.Options{
		Prefix: "",
		Level:  log.InfoLevel,
	})
	if verbose {
		console.SetLevel(log.DebugLevel)
	}

	file := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           log.DebugLevel,
	})
	file.SetColorProfile(termenv.Ascii)

	return &Logger{
		console: console,
		file:    file,
		sink:    io.MultiWriter(out, f),
		path:    path,
		closer:  f,
	}, nil
}

// NewTestLogger returns a logger writing both streams to out. Intended for
// tests that assert on emitted output.
func NewTestLogger(out io.Writer) *Logger {
	console := log.NewWithOptions(out, log.Options{Level: log.DebugLevel})
	console.SetColorProfile(termenv.Ascii)
	return &Logger{console: console, file: console, sink: out}
}

// Path returns the run log location for fatal-error hints.
func (l *Logger) Path() string {
	return l.path
}

// CommandSink returns the writer external commands should stream into.
func (l *Logger) CommandSink() io.Writer {
	return l.sink
}

// Close releases the underlying log file.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Logger) Debug(msg string, keyvals ...any) {
	l.console.Debug(msg, keyvals...)
	l.mirror(func(f *log.Logger) { f.Debug(msg, keyvals...) })
}

func (l *Logger) Info(msg string, keyvals ...any) {
	l.console.Info(msg, keyvals...)
	l.mirror(func(f *log.Logger) { f.Info(msg, keyvals...) })
}

func (l *Logger) Warn(msg string, keyvals ...any) {
	l.console.Warn(msg, keyvals...)
	l.mirror(func(f *log.Logger) { f.Warn(msg, keyvals...) })
}

func (l *Logger) Error(msg string, keyvals ...any) {
	l.console.Error(msg, keyvals...)
	l.mirror(func(f *log.Logger) { f.Error(msg, keyvals...) })
}

// Success reports a completed step at info level with a check prefix.
func (l *Logger) Success(msg string, keyvals ...any) {
	l.Info("✔ "+msg, keyvals...)
}

func (l *Logger) mirror(emit func(*log.Logger)) {
	if l.file == nil || l.file == l.console {
		return
	}
	emit(l.file)
}
