// Package pg opens the postgres pool and traces statements through zerolog
package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config configures the pool
type Config struct {
	URL      string
	MaxConns int32
	SlowMs   int // statements at or above this are traced as slow, negative disables
}

// PG is the pool plus the tracing settings the store adapter reads
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

var newPool = pgxpool.NewWithConfig

// Open parses cfg.URL and creates the pool, it does not wait for the server
func Open(ctx context.Context, cfg Config, tracer QueryTracer) (*PG, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("pg config: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg pool: %w", err)
	}
	return &PG{Pool: pool, Tracer: tracer, SlowMs: cfg.SlowMs}, nil
}

// WaitReady pings until the server answers, the container may still be starting.
// Attempts back off from 150ms doubling to 2s
func (p *PG) WaitReady(ctx context.Context, attempts int, timeout time.Duration) error {
	return waitReady(ctx, p.Pool.Ping, attempts, timeout)
}

func waitReady(ctx context.Context, ping func(context.Context) error, attempts int, timeout time.Duration) error {
	const ceiling = 2 * time.Second
	backoff := 150 * time.Millisecond

	var last error
	for i := range attempts {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		last = ping(pctx)
		cancel()
		if last == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, ceiling)
	}
	return fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, last)
}

// Close closes the pool
func (p *PG) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}
