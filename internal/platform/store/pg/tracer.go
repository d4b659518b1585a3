package pg

import (
	"context"
	"strings"

	"seogate/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one finished statement
type QueryEvent struct {
	SQL       string
	Args      []any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives statement events from the store adapter
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// maxArgLen bounds logged string args, cached payloads can be hundreds of KB
const maxArgLen = 256

// Tracer logs every statement at info and slow ones at warn. It pins the
// logger to debug so LOG_LEVEL does not silence an explicit LogSQL
func Tracer(root logger.Logger) QueryTracer {
	return zlTracer{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type zlTracer struct{ log logger.Logger }

func (z zlTracer) OnQuery(_ context.Context, ev QueryEvent) {
	evt := z.log.Info()
	if ev.Slow {
		evt = z.log.Warn()
	}
	evt.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000).
		Bool("slow", ev.Slow).
		Str("sql", strings.Join(strings.Fields(ev.SQL), " ")).
		Interface("args", clip(ev.Args)).
		Err(ev.Err).
		Msg("pg query")
}

// clip bounds string and byte args, []byte is logged as text
func clip(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case string:
			a = truncate(v)
		case []byte:
			a = truncate(string(v))
		}
		out[i] = a
	}
	return out
}

func truncate(s string) string {
	if len(s) > maxArgLen {
		return s[:maxArgLen] + "..."
	}
	return s
}
