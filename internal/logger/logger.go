package logger

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

// New creates a new logger with the given output
func New(w io.Writer) *Logger {
	return NewWithLevel(w, log.InfoLevel)
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
		Prefix:          "blockmark",
	})
	return &Logger{Logger: l}
}

// NewFileLogger creates a logger that appends to a file, optionally mirroring
// every entry to other writers
func NewFileLogger(path string, mirrors ...io.Writer) (*Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		f.Close()
	}

	if len(mirrors) == 0 {
		return New(f), cleanup, nil
	}
	return NewMultiLogger(append([]io.Writer{f}, mirrors...)...), cleanup, nil
}

// NewMultiLogger creates a logger that writes to multiple outputs
func NewMultiLogger(writers ...io.Writer) *Logger {
	return New(io.MultiWriter(writers...))
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard)
}

// ParseLevel maps a level name to a charm log level, defaulting to info
func ParseLevel(name string) log.Level {
	level, err := log.ParseLevel(name)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// BatchStarted logs the start of a batch conversion
func (l *Logger) BatchStarted(sourceDir, outputDir string) {
	l.Info("batch started",
		"source_dir", sourceDir,
		"output_dir", outputDir)
}

// BatchCompleted logs the completion of a batch conversion
func (l *Logger) BatchCompleted(converted, skipped, errors int, duration time.Duration) {
	l.Info("batch completed",
		"files_converted", converted,
		"skipped", skipped,
		"errors", errors,
		"duration", duration.Round(time.Millisecond))
}

// FileConverted logs a successful conversion of one source file
func (l *Logger) FileConverted(source, dest string, blocks int) {
	l.Info("file converted",
		"source", source,
		"dest", dest,
		"blocks", blocks)
}

// FileError logs an error for a specific file
func (l *Logger) FileError(file string, err error) {
	l.Error("file error",
		"file", file,
		"error", err)
}

// FenceDropped logs an unterminated code fence whose content was discarded
func (l *Logger) FenceDropped(line, lines int) {
	l.Warn("unterminated code fence dropped",
		"line", line,
		"discarded_lines", lines)
}

// DocumentMerged logs blocks merged into a document file
func (l *Logger) DocumentMerged(path, mode string, added, total int) {
	l.Info("document updated",
		"path", path,
		"mode", mode,
		"added", added,
		"total", total)
}

// StateError logs a state-related error
func (l *Logger) StateError(operation string, err error) {
	l.Error("state error",
		"operation", operation,
		"error", err)
}

// ConfigLoaded logs successful config loading
func (l *Logger) ConfigLoaded(sourceDir, outputDir string, interval time.Duration) {
	l.Debug("config loaded",
		"source_dir", sourceDir,
		"output_dir", outputDir,
		"interval", interval)
}

// Skipped logs when a file is skipped
func (l *Logger) Skipped(file, reason string) {
	l.Debug("file skipped",
		"file", file,
		"reason", reason)
}
