// Package logging provides a zerolog wrapper with opinionated defaults
// for the reconciliation job. The whole operator surface of a batch sync
// is its log output, so every component gets a named child logger.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the logger
type Options struct {
	Level     string
	Format    string
	Component string
	Writer    io.Writer
}

// FromEnv builds Options from TS_LOG_* environment variables
func FromEnv() Options {
	return Options{
		Level:  strings.ToLower(getenv("TS_LOG_LEVEL", "info")),
		Format: strings.ToLower(getenv("TS_LOG_FORMAT", "console")),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var (
	once   sync.Once
	root   atomic.Pointer[zerolog.Logger]
	inited atomic.Bool
)

// Logger is the project-wide logging type
type Logger = zerolog.Logger

// Init configures zerolog and builds the root logger, safe to call once
func Init(opt Options) {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339

		var w io.Writer = os.Stdout
		if opt.Writer != nil {
			w = opt.Writer
		}
		if opt.Format == "console" {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}

		log := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp().Logger()
		if opt.Component != "" {
			log = log.With().Str("component", opt.Component).Logger()
		}
		root.Store(&log)
		inited.Store(true)
	})
}

// Get returns the process-wide root logger as a pointer
func Get() *Logger {
	if !inited.Load() {
		Init(FromEnv())
	}
	return root.Load()
}

// Named returns a child logger tagged with a component name
func Named(component string) *Logger {
	log := Get().With().Str("component", component).Logger()
	return &log
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
