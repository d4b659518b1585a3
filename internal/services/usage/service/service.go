// Package service records usage entries without ever failing the caller
package service

import (
	"context"
	"sync/atomic"
	"time"

	"seogate/internal/modkit/repokit"
	"seogate/internal/platform/logger"
	"seogate/internal/services/usage/domain"
	"seogate/internal/services/usage/repo"
)

// Mirror is the optional analytics sink
type Mirror interface {
	Insert(ctx context.Context, e domain.Entry) error
}

// Service implements domain.LoggerPort
type Service struct {
	repo   repo.Repo
	mirror Mirror
	log    logger.Logger
	now    func() time.Time

	timeout  time.Duration
	warnedPG atomic.Bool
}

// Config tunes the usage service
type Config struct {
	// WriteTimeout bounds each write; the request context may already be done
	WriteTimeout time.Duration
}

// New constructs the service. db may be nil: entries are then dropped with a one time warning
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], mirror Mirror, cfg Config) *Service {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	s := &Service{
		mirror:  mirror,
		log:     *logger.Named("usage"),
		now:     time.Now,
		timeout: cfg.WriteTimeout,
	}
	if db != nil && binder != nil {
		s.repo = binder.Bind(db)
	}
	return s
}

// TryLog writes e to postgres and then the mirror. Failures and panics are logged and swallowed
func (s *Service) TryLog(ctx context.Context, e domain.Entry) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("endpoint", e.Endpoint).Msg("usage log panicked")
		}
	}()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if s.repo == nil {
		if s.warnedPG.CompareAndSwap(false, true) {
			s.log.Warn().Msg("usage log has no database, entries are dropped")
		}
	} else if err := s.repo.Insert(ctx, e); err != nil {
		s.log.Warn().Err(err).
			Str("endpoint", e.Endpoint).
			Str("correlation_id", e.CorrelationID).
			Msg("usage log insert failed")
	}

	if s.mirror == nil {
		return
	}
	if err := s.mirror.Insert(ctx, e); err != nil {
		s.log.Debug().Err(err).Str("correlation_id", e.CorrelationID).Msg("usage mirror insert failed")
	}
}
