// Package logging configures logrus for the daemon and the update agent.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options describe one process's log file.
type Options struct {
	Level      string
	Path       string
	MaxSizeMB  int
	MaxBackups int
	// Stderr duplicates every entry to stderr, for foreground debugging.
	Stderr bool
}

// Init parses the level and points the standard logrus logger at a rotated
// file. It returns the writer so callers can close it on shutdown.
func Init(opts Options) (io.Closer, error) {
	level, err := log.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", opts.Level, err)
	}
	if opts.Path == "" {
		return nil, fmt.Errorf("log path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}
	maxBackups := opts.MaxBackups
	if maxBackups <= 0 {
		maxBackups = 1
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.ToSlash(opts.Path),
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
	}

	var out io.Writer = rotator
	if opts.Stderr {
		out = io.MultiWriter(rotator, os.Stderr)
	}

	log.SetOutput(out)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
		DisableColors:   true,
	})
	log.SetLevel(level)
	return rotator, nil
}
