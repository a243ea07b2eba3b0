// Package logging builds the logrus loggers used by the client and server.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// Options controls logger construction.
type Options struct {
	Level string
	// File receives log output when set. Otherwise Fallback is used.
	File     string
	Fallback io.Writer
}

// New returns a logger and a function that closes its output file.
func New(opts Options) (*log.Logger, func() error, error) {
	logger := log.New()
	logger.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		DisableColors:   opts.File != "",
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	level := opts.Level
	if level == "" {
		level = "info"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	logger.SetLevel(lvl)

	noop := func() error { return nil }

	if opts.File == "" {
		if opts.Fallback == nil {
			logger.SetOutput(io.Discard)
		} else {
			logger.SetOutput(opts.Fallback)
		}
		return logger, noop, nil
	}

	if dir := filepath.Dir(opts.File); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, f.Close, nil
}
