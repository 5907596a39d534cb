// Package logging provides component loggers for crxlint built on
// charmbracelet/log. Loggers are silent until Init is called, so library
// packages can hold a package-level logger without producing output in tests.
//
// Basic usage:
//
//	if err := logging.Init(logging.Config{Level: "info", ConsoleLevel: "warn"}); err != nil {
//	    return err
//	}
//	defer logging.Close()
//
//	logger := logging.Get("analyzer")
//	logger.Debug("scanning", "root", root)
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level represents a logging level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

func (l Level) toCharmLevel() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelInfo:
		return log.InfoLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a string into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the default file log level (debug, info, warn, error).
	Level string

	// Path is the log file path. Empty disables file output.
	Path string

	// ConsoleLevel enables stderr output at the given level.
	// Empty disables console output.
	ConsoleLevel string

	// Components maps component names to level overrides.
	Components map[string]string

	// Console overrides the console writer. Defaults to os.Stderr.
	Console io.Writer
}

// sinks is the pair of charm loggers a Logger writes to.
type sinks struct {
	file    *log.Logger
	console *log.Logger
}

// Logger is a component logger. The underlying sinks are swapped in place
// by Init, so a Logger obtained before Init starts writing once Init runs.
type Logger struct {
	component string
	args      []interface{}
	out       *atomic.Pointer[sinks]
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) { l.log(LevelDebug, msg, args...) }

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) { l.log(LevelInfo, msg, args...) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) { l.log(LevelWarn, msg, args...) }

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) { l.log(LevelError, msg, args...) }

// With returns a logger that adds args to every message.
func (l *Logger) With(args ...interface{}) *Logger {
	merged := make([]interface{}, 0, len(l.args)+len(args))
	merged = append(merged, l.args...)
	merged = append(merged, args...)
	return &Logger{component: l.component, args: merged, out: l.out}
}

func (l *Logger) log(level Level, msg string, args ...interface{}) {
	s := l.out.Load()
	if s == nil {
		return
	}
	if len(l.args) > 0 {
		args = append(append([]interface{}{}, l.args...), args...)
	}
	if s.file != nil {
		logTo(s.file, level, msg, args...)
	}
	if s.console != nil {
		logTo(s.console, level, msg, args...)
	}
}

func logTo(logger *log.Logger, level Level, msg string, args ...interface{}) {
	switch level {
	case LevelDebug:
		logger.Debug(msg, args...)
	case LevelInfo:
		logger.Info(msg, args...)
	case LevelWarn:
		logger.Warn(msg, args...)
	case LevelError:
		logger.Error(msg, args...)
	}
}

type state struct {
	mu          sync.Mutex
	initialized bool
	cfg         Config
	level       Level
	console     Level
	consoleOn   bool
	components  map[string]Level
	file        *os.File
	loggers     map[string]*atomic.Pointer[sinks]
}

var globalState = &state{
	components: make(map[string]Level),
	loggers:    make(map[string]*atomic.Pointer[sinks]),
}

// Init configures logging and rewires every logger handed out so far.
// When Init fails the previous configuration stays in effect.
func Init(cfg Config) error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if cfg.Level == "" {
		cfg.Level = "info"
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	components := make(map[string]Level, len(cfg.Components))
	for comp, lvl := range cfg.Components {
		parsed, err := ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		components[comp] = parsed
	}

	consoleOn := false
	var consoleLevel Level
	if cfg.ConsoleLevel != "" {
		consoleLevel, err = ParseLevel(cfg.ConsoleLevel)
		if err != nil {
			return fmt.Errorf("parsing console level: %w", err)
		}
		consoleOn = true
	}
	if cfg.Console == nil {
		cfg.Console = os.Stderr
	}

	var file *os.File
	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		file, err = os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
	}

	// The previous file stays open until every logger has been moved off it.
	previous := globalState.file

	globalState.cfg = cfg
	globalState.level = level
	globalState.components = components
	globalState.console = consoleLevel
	globalState.consoleOn = consoleOn
	globalState.file = file
	globalState.initialized = true

	for component, ptr := range globalState.loggers {
		ptr.Store(globalState.buildSinks(component))
	}

	if previous != nil {
		if err := previous.Close(); err != nil {
			return fmt.Errorf("closing previous log file: %w", err)
		}
	}
	return nil
}

// Get returns the logger for component, creating it on first use.
func Get(component string) *Logger {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	ptr, ok := globalState.loggers[component]
	if !ok {
		ptr = &atomic.Pointer[sinks]{}
		ptr.Store(globalState.buildSinks(component))
		globalState.loggers[component] = ptr
	}
	return &Logger{component: component, out: ptr}
}

// buildSinks must be called with mu held.
func (s *state) buildSinks(component string) *sinks {
	if !s.initialized {
		return nil
	}

	level := s.level
	if compLevel, ok := s.components[component]; ok {
		level = compLevel
	}

	out := &sinks{}
	if s.file != nil {
		out.file = log.NewWithOptions(s.file, log.Options{
			Level:           level.toCharmLevel(),
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          component,
		})
	}
	if s.consoleOn {
		out.console = log.NewWithOptions(s.cfg.Console, log.Options{
			Level:           s.console.toCharmLevel(),
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Prefix:          component,
		})
	}
	if out.file == nil && out.console == nil {
		return nil
	}
	return out
}

func (s *state) closeFile() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	if err != nil {
		return fmt.Errorf("closing log file: %w", err)
	}
	return nil
}

// Close flushes the log file and silences all loggers.
func Close() error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if !globalState.initialized {
		return nil
	}

	err := globalState.closeFile()
	globalState.initialized = false
	globalState.components = make(map[string]Level)
	for _, ptr := range globalState.loggers {
		ptr.Store(nil)
	}
	return err
}

// DefaultLogPath returns $XDG_STATE_HOME/crxlint/crxlint.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "crxlint", "crxlint.log")
}
