// Package cli implements the storelink command-line interface.
//
// Commands are built with cobra. install, add and remove operate on the
// project selected with -C (default: the working directory); store and
// cache inspect the shared package store and the registry metadata cache.
//
// # Configuration
//
// Settings are layered: built-in defaults, then
// $XDG_CONFIG_HOME/storelink/config.toml, then a .env file in the project
// directory, then STORELINK_* environment variables, then flags.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// reports store, fetch, link and HTTP events.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with timestamps formatted as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Linked 12 packages (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
