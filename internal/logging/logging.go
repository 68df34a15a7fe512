// Package logging builds the prefixed loggers handed to each component.
//
// Diagnostics go to stderr and, when configured, to a size-rotated file
// under the data directory so long-running watch sessions don't grow an
// unbounded log.
package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures NewSink.
type Options struct {
	// FilePath enables file logging when non-empty.
	FilePath string

	// Rotation settings for the file, ignored without FilePath.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	// Quiet drops the stderr copy. Used by full-screen modes where
	// interleaved log lines would corrupt the display.
	Quiet bool
}

// Sink is the shared destination behind all component loggers.
type Sink struct {
	w      io.Writer
	closer io.Closer
}

// NewSink builds the log destination from the options.
func NewSink(opts Options) *Sink {
	var writers []io.Writer
	if !opts.Quiet {
		writers = append(writers, os.Stderr)
	}

	var closer io.Closer
	if opts.FilePath != "" {
		file := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		writers = append(writers, file)
		closer = file
	}

	var w io.Writer
	switch len(writers) {
	case 0:
		w = io.Discard
	case 1:
		w = writers[0]
	default:
		w = io.MultiWriter(writers...)
	}
	return &Sink{w: w, closer: closer}
}

// Logger returns a component logger writing to the sink, prefixed like
// "[itinerary] ".
func (s *Sink) Logger(name string) *log.Logger {
	return log.New(s.w, "["+name+"] ", log.LstdFlags)
}

// Writer exposes the raw sink writer.
func (s *Sink) Writer() io.Writer {
	return s.w
}

// Close flushes and closes the file writer, if any.
func (s *Sink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
