// Package zlog adapts zerolog to mvi.Logger and builds loggers from a
// runtime or test profile with environment overrides.
package zlog

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jilio/mvi"
	"github.com/rs/zerolog"
)

const (
	EnvLogLevel     = "MVI_LOG_LEVEL"
	EnvLogTimestamp = "MVI_LOG_TIMESTAMP"
	EnvLogNoColor   = "MVI_LOG_NOCOLOR"
	EnvLogJSON      = "MVI_LOG_JSON"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Config describes how a logger is built
type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
	JSON      bool
}

// DefaultConfig returns the configuration for profile without env overrides
func DefaultConfig(profile Profile) Config {
	switch profile {
	case ProfileTest:
		return Config{Level: zerolog.DebugLevel, NoColor: true}
	default:
		return Config{Level: zerolog.InfoLevel, Timestamp: true}
	}
}

// LoadConfig returns the configuration for profile with env overrides applied
func LoadConfig(profile Profile) Config {
	cfg := DefaultConfig(profile)
	applyEnvOverrides(&cfg, os.Getenv)
	return cfg
}

// NewLogger builds a zerolog logger writing to w
func NewLogger(w io.Writer, cfg Config) zerolog.Logger {
	out := w
	if !cfg.JSON {
		out = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    cfg.NoColor,
			TimeFormat: time.Kitchen,
		}
	}

	ctx := zerolog.New(out).Level(cfg.Level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger()
}

// Logger implements mvi.Logger on top of zerolog.
// args are key/value pairs, as with log/slog.
type Logger struct {
	log zerolog.Logger
}

// New wraps a zerolog logger
func New(log zerolog.Logger) *Logger {
	return &Logger{log: log}
}

func (l *Logger) Debug(msg string, args ...any) {
	withFields(l.log.Debug(), args).Msg(msg)
}

func (l *Logger) Info(msg string, args ...any) {
	withFields(l.log.Info(), args).Msg(msg)
}

func (l *Logger) Error(msg string, args ...any) {
	withFields(l.log.Error(), args).Msg(msg)
}

// withFields adds key/value pairs to e. A dangling key is logged under
// "!BADKEY", matching log/slog.
func withFields(e *zerolog.Event, args []any) *zerolog.Event {
	if e == nil {
		return nil
	}
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			e = e.Interface("!BADKEY", args[i])
			break
		}
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		switch v := args[i+1].(type) {
		case error:
			e = e.AnErr(key, v)
		case string:
			e = e.Str(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	return e
}

var _ mvi.Logger = (*Logger)(nil)

func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	if lvl, ok := parseLevel(getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(getenv(EnvLogTimestamp)); ok {
		cfg.Timestamp = v
	}
	if v, ok := parseBool(getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
	if v, ok := parseBool(getenv(EnvLogJSON)); ok {
		cfg.JSON = v
	}
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
