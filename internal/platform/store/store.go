// Package store opens the optional postgres, clickhouse and redis backends
// behind small seams that repos and tests share
package store

import (
	"context"
	"errors"
	"fmt"

	"seogate/internal/platform/logger"
)

// Store holds whichever backends were enabled; a disabled one stays nil
type Store struct {
	Log logger.Logger

	PG TxRunner
	CH Clickhouse
	KV KV
}

// Open dials every enabled backend in order pg, ch, redis. On failure the
// ones already open are closed again
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	s.Log = s.Log.With().Logger()

	steps := []struct {
		enabled bool
		open    func() error
	}{
		{cfg.PG.Enabled, func() error {
			pg, err := openPG(ctx, cfg, s)
			if err == nil {
				s.PG = pg
			}
			return err
		}},
		{cfg.CH.Enabled, func() error {
			c, err := openCH(ctx, cfg, s)
			if err == nil {
				s.CH = c
			}
			return err
		}},
		{cfg.RDS.Enabled, func() error {
			kv, err := openRDS(ctx, cfg, s)
			if err == nil {
				s.KV = kv
			}
			return err
		}},
	}
	for _, st := range steps {
		if !st.enabled {
			continue
		}
		if err := st.open(); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
	}
	return s, nil
}

type backend struct {
	name string
	seam any
}

func (s *Store) backends() []backend {
	var out []backend
	if s.PG != nil {
		out = append(out, backend{"pg", s.PG})
	}
	if s.CH != nil {
		out = append(out, backend{"ch", s.CH})
	}
	if s.KV != nil {
		out = append(out, backend{"redis", s.KV})
	}
	return out
}

// Guard pings every open backend that supports it, failures joined as "name: err"
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	var errs []error
	for _, b := range s.backends() {
		p, ok := b.seam.(Pinger)
		if !ok {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
		}
	}
	return errors.Join(errs...)
}

// Close shuts backends down in reverse open order
func (s *Store) Close(_ context.Context) error {
	var errs []error
	bs := s.backends()
	for i := len(bs) - 1; i >= 0; i-- {
		c, ok := bs[i].seam.(interface{ Close() error })
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", bs[i].name, err))
		}
	}
	return errors.Join(errs...)
}
