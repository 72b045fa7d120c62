// Package logging sets up the process-wide structured logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
)

// ParseLevel maps a level name to its slog level
func ParseLevel(lvl string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(lvl)) {
	case "TRACE":
		return log.LevelTrace, nil
	case "DEBUG":
		return log.LevelDebug, nil
	case "", "INFO":
		return log.LevelInfo, nil
	case "WARN", "WARNING":
		return log.LevelWarn, nil
	case "ERROR":
		return log.LevelError, nil
	case "CRIT", "CRITICAL":
		return log.LevelCrit, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", lvl)
	}
}

// New builds a logger writing to w. Terminal output is coloured only when w
// is a terminal.
func New(w io.Writer, level string, json bool) (log.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if json {
		return log.NewLogger(log.JSONHandlerWithLevel(w, lvl)), nil
	}
	return log.NewLogger(log.NewTerminalHandlerWithLevel(w, lvl, useColor(w))), nil
}

// Init installs a stderr logger as the default
func Init(level string, json bool) (log.Logger, error) {
	logger, err := New(os.Stderr, level, json)
	if err != nil {
		return nil, err
	}
	log.SetDefault(logger)
	return logger, nil
}

// Discard returns a logger that drops everything
func Discard() log.Logger {
	return log.NewLogger(log.DiscardHandler())
}

func useColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
