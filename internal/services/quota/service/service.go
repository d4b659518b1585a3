// Package service implements the freemium quota gate
package service

import (
	"context"
	"time"

	"seogate/internal/modkit/repokit"
	perr "seogate/internal/platform/errors"
	"seogate/internal/platform/logger"
	"seogate/internal/services/quota/domain"
	"seogate/internal/services/quota/repo"
)

const (
	// DefaultFreeReports is the free competitor reports per window
	DefaultFreeReports = 3
	// DefaultWindow is the renewal period
	DefaultWindow = 30 * 24 * time.Hour
)

// Config for the quota gate
type Config struct {
	Limits map[domain.Class]int
	Window time.Duration
}

// Service implements domain.GatePort
type Service struct {
	repo   repo.Repo
	limits map[domain.Class]int
	window time.Duration
	log    logger.Logger
	now    func() time.Time
}

// New constructs the quota gate
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], cfg Config) *Service {
	if db == nil {
		panic("quota.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("quota.Service requires a non nil Repo binder")
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	limits := map[domain.Class]int{domain.ClassCompetitorReport: DefaultFreeReports}
	for k, v := range cfg.Limits {
		limits[k] = v
	}
	return &Service{
		repo:   binder.Bind(db),
		limits: limits,
		window: cfg.Window,
		log:    *logger.Named("quota"),
		now:    time.Now,
	}
}

// Check reports whether callerID may run one more class operation.
// An expired window counts as used=0 without writing anything.
func (s *Service) Check(ctx context.Context, callerID string, class domain.Class) (domain.Decision, error) {
	if callerID == "" {
		return domain.Decision{}, perr.New(perr.ErrorCodeUnauthorized, "quota requires a caller")
	}
	limit, ok := s.limits[class]
	if !ok {
		return domain.Decision{}, perr.Newf(perr.ErrorCodeInvalidArgument, "unknown quota class %q", class)
	}
	now := s.now()

	st, err := s.repo.Get(ctx, callerID, class)
	switch {
	case perr.IsCode(err, perr.ErrorCodeNotFound):
		st = domain.State{CallerID: callerID, Class: class, Plan: domain.PlanFree, RenewalAt: now.Add(s.window)}
	case err != nil:
		return domain.Decision{}, perr.FromPostgres(err, "quota lookup")
	}
	st = st.Rolled(now, s.window)

	d := domain.Decision{
		Used:      st.Used,
		Limit:     limit,
		RenewalAt: st.RenewalAt,
		Bypass:    st.Plan != "" && st.Plan != domain.PlanFree,
	}
	d.Allowed = d.Bypass || st.Used < limit
	if !d.Allowed {
		s.log.Info().Str("caller_id", callerID).Str("class", string(class)).
			Int("used", st.Used).Int("limit", limit).Msg("quota exceeded")
	}
	return d, nil
}

// Consume charges one unit; call it only after the metered work succeeded
func (s *Service) Consume(ctx context.Context, callerID string, class domain.Class) (domain.State, error) {
	if callerID == "" {
		return domain.State{}, perr.New(perr.ErrorCodeUnauthorized, "quota requires a caller")
	}
	now := s.now()
	st, err := s.repo.Increment(ctx, callerID, class, now, now.Add(s.window))
	if err != nil {
		return domain.State{}, perr.FromPostgres(err, "quota consume")
	}
	return st, nil
}
