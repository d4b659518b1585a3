// Package logger wraps zerolog with process defaults and request scoped
// fields (request id, caller id)
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"seogate/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the project-wide logging type
type Logger = zerolog.Logger

// Options configures the root logger
type Options struct {
	Level   string    // zerolog level name, unknown names mean debug
	Format  string    // "console" or "json"
	Service string
	Writer  io.Writer // default os.Stdout
}

func optionsFromEnv() Options {
	rc := raw.New().Prefix("LOG_")
	return Options{
		Level:   rc.Get("LEVEL", "debug"),
		Format:  strings.ToLower(rc.Get("FORMAT", "console")),
		Service: rc.Get("SERVICE", ""),
	}
}

var (
	mu   sync.Mutex
	root *Logger
)

// Get returns the process root logger, built from LOG_* on first use
func Get() *Logger {
	mu.Lock()
	defer mu.Unlock()
	if root == nil {
		l := build(optionsFromEnv())
		root = &l
	}
	return root
}

func build(opt Options) Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opt.Level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.DebugLevel
	}

	w := opt.Writer
	if w == nil {
		w = os.Stdout
	}
	if opt.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	c := zerolog.New(w).Level(lvl).With().Timestamp()
	if bi, ok := debug.ReadBuildInfo(); ok {
		c = c.Str("go_version", bi.GoVersion)
	}
	if opt.Service != "" {
		c = c.Str("service", opt.Service)
	}
	return c.Logger()
}

type ctxKey uint8

const (
	keyRequestID ctxKey = iota
	keyCallerID
)

// WithRequest annotates ctx with the request id and the authenticated caller
func WithRequest(ctx context.Context, reqID, callerID string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, keyRequestID, reqID)
	}
	if callerID != "" {
		ctx = context.WithValue(ctx, keyCallerID, callerID)
	}
	return ctx
}

// Ctx returns l enriched with the request_id and caller_id carried by ctx
func Ctx(ctx context.Context, l Logger) Logger {
	c := l.With()
	if s, ok := ctx.Value(keyRequestID).(string); ok {
		c = c.Str("request_id", s)
	}
	if s, ok := ctx.Value(keyCallerID).(string); ok {
		c = c.Str("caller_id", s)
	}
	return c.Logger()
}

// Named returns a child of the root logger with a component field
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}
