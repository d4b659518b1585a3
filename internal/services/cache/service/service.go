// Package service implements the shared request cache: postgres is the authority,
// redis a hot copy, and the legacy per caller analysis table a migration source.
package service

import (
	"context"
	"encoding/json"
	"time"

	"seogate/internal/modkit/repokit"
	perr "seogate/internal/platform/errors"
	"seogate/internal/platform/logger"
	"seogate/internal/platform/store"
	"seogate/internal/services/cache/domain"
	"seogate/internal/services/cache/repo"
)

// DefaultTTL is the freshness window of cached results
const DefaultTTL = 24 * time.Hour

// Config for the cache service
type Config struct {
	TTL time.Duration
}

// Service implements domain.CachePort and domain.PrunePort
type Service struct {
	repo repo.Repo
	hot  hot
	ttl  time.Duration
	log  logger.Logger
	now  func() time.Time
}

// New constructs the cache service; kv may be nil
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], kv store.KV, cfg Config) *Service {
	if db == nil {
		panic("cache.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("cache.Service requires a non nil Repo binder")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Service{
		repo: binder.Bind(db),
		hot:  hot{kv: kv},
		ttl:  cfg.TTL,
		log:  *logger.Named("cache"),
		now:  time.Now,
	}
}

// TTL returns the freshness window
func (s *Service) TTL() time.Duration { return s.ttl }

// Lookup returns a fresh entry for checksum from redis, then postgres
func (s *Service) Lookup(ctx context.Context, checksum string) (domain.Entry, domain.Source, bool, error) {
	now := s.now()
	if s.hot.enabled() {
		e, ok, err := s.hot.get(ctx, checksum)
		switch {
		case err != nil:
			s.log.Debug().Err(err).Msg("redis cache read failed, falling back to postgres")
		case ok && e.Fresh(now, s.ttl):
			return e, domain.SourceHot, true, nil
		}
	}

	e, err := s.repo.Get(ctx, checksum, now.Add(-s.ttl))
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.Entry{}, "", false, nil
	}
	if err != nil {
		return domain.Entry{}, "", false, perr.FromPostgres(err, "cache lookup")
	}
	s.warm(ctx, e, now)
	return e, domain.SourceShared, true, nil
}

// LookupAnalysis checks the legacy analysis table for the caller's recent report of the pair.
// A hit is copied into the shared cache under checksum, keeping its original age.
func (s *Service) LookupAnalysis(ctx context.Context, callerID, domainA, domainB, checksum string) (domain.Entry, bool, error) {
	if callerID == "" {
		return domain.Entry{}, false, nil
	}
	now := s.now()
	a, err := s.repo.LatestAnalysis(ctx, callerID, domainA, domainB, now.Add(-s.ttl))
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.Entry{}, false, nil
	}
	if err != nil {
		return domain.Entry{}, false, perr.FromPostgres(err, "analysis lookup")
	}

	e := domain.Entry{Checksum: checksum, Module: "competitor", Payload: a.Payload, CreatedAt: a.CreatedAt}
	if err := s.repo.Upsert(ctx, e); err != nil {
		s.log.Warn().Err(err).Str("checksum", checksum).Msg("legacy analysis migration failed")
	} else {
		s.log.Debug().Str("checksum", checksum).Msg("legacy analysis migrated into cache")
		s.warm(ctx, e, now)
	}
	return e, true, nil
}

// Store upserts payload under checksum, last write wins
func (s *Service) Store(ctx context.Context, checksum, module string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "cache payload")
	}
	now := s.now().UTC()
	e := domain.Entry{Checksum: checksum, Module: module, Payload: raw, CreatedAt: now}
	if err := s.repo.Upsert(ctx, e); err != nil {
		return perr.FromPostgres(err, "cache store")
	}
	s.warm(ctx, e, now)
	return nil
}

// warm copies e into redis for the rest of its window; failures only cost a later SQL read
func (s *Service) warm(ctx context.Context, e domain.Entry, now time.Time) {
	if !s.hot.enabled() {
		return
	}
	if err := s.hot.put(ctx, e, s.ttl-now.Sub(e.CreatedAt)); err != nil {
		s.log.Debug().Err(err).Str("checksum", e.Checksum).Msg("redis cache write failed")
	}
}

// PruneCache deletes (or with dryRun counts) cache rows older than olderThan
func (s *Service) PruneCache(ctx context.Context, olderThan time.Duration, dryRun bool) (int64, error) {
	return s.prune(ctx, repo.TableCache, olderThan, dryRun)
}

// PruneAnalysis deletes (or with dryRun counts) legacy analysis rows older than olderThan
func (s *Service) PruneAnalysis(ctx context.Context, olderThan time.Duration, dryRun bool) (int64, error) {
	return s.prune(ctx, repo.TableAnalysis, olderThan, dryRun)
}

func (s *Service) prune(ctx context.Context, t repo.Table, olderThan time.Duration, dryRun bool) (int64, error) {
	if olderThan <= 0 {
		olderThan = s.ttl
	}
	before := s.now().Add(-olderThan)
	var (
		n   int64
		err error
	)
	if dryRun {
		n, err = s.repo.CountBefore(ctx, t, before)
	} else {
		n, err = s.repo.DeleteBefore(ctx, t, before)
	}
	if err != nil {
		return 0, perr.FromPostgresf(err, "prune %s", t)
	}
	return n, nil
}
