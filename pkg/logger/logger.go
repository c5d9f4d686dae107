// Package logger configures the process-wide slog logger used by the CLI.
// Library packages take a *slog.Logger option instead of importing this.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Config holds logger configuration
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or file path
}

var (
	mu       sync.RWMutex
	level    = new(slog.LevelVar)
	format   = "text"
	output   io.Writer = os.Stderr
	useColor           = term.IsTerminal(int(os.Stderr.Fd()))
	slogger  *slog.Logger
)

func init() {
	level.Set(slog.LevelWarn)
	reconfigure()
}

// reconfigure rebuilds the handler; callers must not hold mu.
func reconfigure() {
	mu.Lock()
	defer mu.Unlock()

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(output, opts)
	} else {
		h = NewColorTextHandler(output, opts, useColor)
	}
	slogger = slog.New(h)
}

// Init applies cfg. Empty fields keep their current value.
func Init(cfg Config) error {
	if cfg.Output != "" {
		var w io.Writer
		var color bool
		switch strings.ToLower(cfg.Output) {
		case "stdout":
			w, color = os.Stdout, term.IsTerminal(int(os.Stdout.Fd()))
		case "stderr":
			w, color = os.Stderr, term.IsTerminal(int(os.Stderr.Fd()))
		default:
			f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("opening log file %q: %w", cfg.Output, err)
			}
			w = f
		}
		mu.Lock()
		output, useColor = w, color
		mu.Unlock()
	}

	if cfg.Level != "" {
		if err := SetLevel(cfg.Level); err != nil {
			return err
		}
	}
	if cfg.Format != "" {
		if err := SetFormat(cfg.Format); err != nil {
			return err
		}
	}
	reconfigure()
	return nil
}

// InitWithWriter points the logger at w. It is meant for tests.
func InitWithWriter(w io.Writer, lvl, fmtName string, color bool) {
	mu.Lock()
	output, useColor = w, color
	mu.Unlock()
	_ = SetLevel(lvl)
	_ = SetFormat(fmtName)
	reconfigure()
}

// SetLevel sets the minimum level by name.
func SetLevel(name string) error {
	switch strings.ToUpper(name) {
	case "DEBUG":
		level.Set(slog.LevelDebug)
	case "INFO":
		level.Set(slog.LevelInfo)
	case "WARN", "WARNING":
		level.Set(slog.LevelWarn)
	case "ERROR":
		level.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level %q", name)
	}
	return nil
}

// SetFormat selects "text" or "json" output.
func SetFormat(name string) error {
	name = strings.ToLower(name)
	if name != "text" && name != "json" {
		return fmt.Errorf("unknown log format %q", name)
	}
	mu.Lock()
	format = name
	mu.Unlock()
	reconfigure()
	return nil
}

// L returns the configured logger.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}
