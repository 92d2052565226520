// Package logging hands out per-component loggers for syncstate.
//
// Loggers are fetched by component name and may be fetched before the
// process has read its configuration: until Init runs they discard
// everything, and Init retargets the same *Logger values at the log file.
//
//	if err := logging.Init(logging.Config{Level: "info"}); err != nil {
//	    return err
//	}
//	defer logging.Close()
//
//	log := logging.Get("index")
//	log.Info("snapshot loaded", "records", 42)
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level is a charmbracelet/log severity.
type Level = log.Level

// Supported levels.
const (
	LevelDebug = log.DebugLevel
	LevelInfo  = log.InfoLevel
	LevelWarn  = log.WarnLevel
	LevelError = log.ErrorLevel
)

// ErrInvalidLevel is returned for a level name ParseLevel does not know.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel maps a configured level name to a Level. Empty means info.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "":
		return LevelInfo, nil
	case "warning":
		return LevelWarn, nil
	case "debug", "info", "warn", "error":
		return log.ParseLevel(name)
	}
	return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
}

// Config is the logging section after config loading.
type Config struct {
	Level      string            // default level for every component
	Path       string            // log file; empty uses DefaultLogPath
	Rotation   RotationConfig    // file rotation policy
	Components map[string]string // per-component level overrides

	// ConsoleLevel mirrors messages at or above this level to stderr.
	// Empty keeps the console quiet.
	ConsoleLevel string
}

// Logger writes structured messages for one component to every sink it
// was built with.
type Logger struct {
	component string
	sinks     []*log.Logger
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	for _, s := range l.sinks {
		s.Debug(msg, args...)
	}
}

func (l *Logger) Info(msg string, args ...interface{}) {
	for _, s := range l.sinks {
		s.Info(msg, args...)
	}
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	for _, s := range l.sinks {
		s.Warn(msg, args...)
	}
}

func (l *Logger) Error(msg string, args ...interface{}) {
	for _, s := range l.sinks {
		s.Error(msg, args...)
	}
}

// With returns a child logger that appends args to every message.
func (l *Logger) With(args ...interface{}) *Logger {
	child := &Logger{component: l.component, sinks: make([]*log.Logger, len(l.sinks))}
	for i, s := range l.sinks {
		child.sinks[i] = s.With(args...)
	}
	return child
}

// Component returns the name the logger was fetched under.
func (l *Logger) Component() string {
	return l.component
}

// New returns an unregistered text logger on w. Init does not touch it.
func New(w io.Writer, component string, level Level) *Logger {
	return &Logger{
		component: component,
		sinks: []*log.Logger{log.NewWithOptions(w, log.Options{
			Level:  level,
			Prefix: component,
		})},
	}
}

// settings is what Init resolved from a Config.
type settings struct {
	out        io.Writer
	level      Level
	components map[string]Level
	console    *Level
}

// discard is in effect before Init and after Close. A nil out discards.
var discard = settings{level: LevelInfo}

// levelFor returns the effective level of component.
func (s settings) levelFor(component string) Level {
	if lvl, ok := s.components[component]; ok {
		return lvl
	}
	return s.level
}

// build makes the sinks for component under s.
func (s settings) build(component string) []*log.Logger {
	if s.out == nil {
		return []*log.Logger{log.NewWithOptions(io.Discard, log.Options{Level: s.levelFor(component)})}
	}

	sinks := []*log.Logger{log.NewWithOptions(s.out, log.Options{
		Level:           s.levelFor(component),
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          component,
	})}
	if s.console != nil {
		sinks = append(sinks, log.NewWithOptions(os.Stderr, log.Options{
			Level:           *s.console,
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
			Prefix:          component,
		}))
	}
	return sinks
}

type loggerRegistry struct {
	sync.Mutex
	current settings
	file    *RotatingWriter
	loggers map[string]*Logger
}

var registry = &loggerRegistry{
	current: discard,
	loggers: make(map[string]*Logger),
}

// resolve parses every level in cfg without touching global state.
func resolve(cfg Config) (settings, error) {
	var s settings
	var err error

	if s.level, err = ParseLevel(cfg.Level); err != nil {
		return settings{}, fmt.Errorf("parsing log level: %w", err)
	}

	s.components = make(map[string]Level, len(cfg.Components))
	for comp, name := range cfg.Components {
		lvl, err := ParseLevel(name)
		if err != nil {
			return settings{}, fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		s.components[comp] = lvl
	}

	if cfg.ConsoleLevel != "" {
		lvl, err := ParseLevel(cfg.ConsoleLevel)
		if err != nil {
			return settings{}, fmt.Errorf("parsing console level: %w", err)
		}
		s.console = &lvl
	}
	return s, nil
}

// Init opens the log file and points every registered logger at it.
// Calling Init again replaces the previous file. On error the previous
// configuration stays in effect.
func Init(cfg Config) error {
	s, err := resolve(cfg)
	if err != nil {
		return err
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}
	w, err := NewRotatingWriter(path, cfg.Rotation)
	if err != nil {
		return fmt.Errorf("creating log writer: %w", err)
	}
	s.out = w

	registry.Lock()
	defer registry.Unlock()

	old := registry.file
	registry.file = w
	registry.apply(s)

	if old != nil {
		if err := old.Close(); err != nil {
			return fmt.Errorf("closing previous log file: %w", err)
		}
	}
	return nil
}

// apply installs s and rebuilds every registered logger in place.
// The caller holds the lock.
func (r *loggerRegistry) apply(s settings) {
	r.current = s
	for component, l := range r.loggers {
		l.sinks = s.build(component)
	}
}

// Get returns the logger registered for component, creating it on first
// use. Package-level loggers keep working across Init and Close because the
// pointer never changes.
func Get(component string) *Logger {
	registry.Lock()
	defer registry.Unlock()

	if l, ok := registry.loggers[component]; ok {
		return l
	}
	l := &Logger{component: component, sinks: registry.current.build(component)}
	registry.loggers[component] = l
	return l
}

// Close closes the log file. Registered loggers go back to discarding.
func Close() error {
	registry.Lock()
	defer registry.Unlock()

	registry.apply(discard)

	if registry.file == nil {
		return nil
	}
	err := registry.file.Close()
	registry.file = nil
	if err != nil {
		return fmt.Errorf("closing log writer: %w", err)
	}
	return nil
}

// DefaultLogPath is $XDG_STATE_HOME/syncstate/syncstate.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "syncstate", "syncstate.log")
}
