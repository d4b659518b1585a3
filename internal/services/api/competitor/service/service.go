// Package service composes competitor reports from six independent gateway calls
package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"seogate/internal/adapters/dataforseo"
	"seogate/internal/core/checksum"
	"seogate/internal/core/normalize"
	perr "seogate/internal/platform/errors"
	"seogate/internal/platform/logger"
	pnet "seogate/internal/platform/net"
	"seogate/internal/services/api/competitor/domain"
	cachedomain "seogate/internal/services/cache/domain"
	quotadomain "seogate/internal/services/quota/domain"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ModuleName tags usage rows and cache entries
const ModuleName = "competitor"

// Service defines the competitor service contract
type Service interface {
	domain.ServicePort
}

// Config carries the gateway and the stores a report runs against
type Config struct {
	Gateway    domain.Gateway
	Cache      cachedomain.CachePort
	Quota      quotadomain.GatePort
	Poller     *dataforseo.Poller
	CrawlPages int
}

// Svc implements the competitor service
type Svc struct {
	gw     domain.Gateway
	cache  cachedomain.CachePort
	quota  quotadomain.GatePort
	poller *dataforseo.Poller
	pages  int

	group singleflight.Group
	log   logger.Logger
	now   func() time.Time
}

// New constructs a competitor service
func New(cfg Config) *Svc {
	if cfg.Gateway == nil {
		panic("competitor.Service requires a gateway")
	}
	if cfg.Cache == nil || cfg.Quota == nil {
		panic("competitor.Service requires cache and quota ports")
	}
	if cfg.Poller == nil {
		cfg.Poller = dataforseo.NewPoller(0, 0)
	}
	return &Svc{
		gw:     cfg.Gateway,
		cache:  cfg.Cache,
		quota:  cfg.Quota,
		poller: cfg.Poller,
		pages:  cfg.CrawlPages,
		log:    *logger.Named("competitor"),
		now:    time.Now,
	}
}

// Normalize validates in and reduces both domains to their registrable host
func Normalize(in domain.AnalyzeInput) (domain.Params, error) {
	yours, err := normalize.Domain(in.YourDomain)
	if err != nil {
		return domain.Params{}, perr.WithFieldChain(err, "your_domain")
	}
	theirs, err := normalize.Domain(in.CompetitorDomain)
	if err != nil {
		return domain.Params{}, perr.WithFieldChain(err, "competitor_domain")
	}
	if normalize.SameSite(yours, theirs) {
		return domain.Params{}, perr.InvalidArgf("your_domain and competitor_domain must differ")
	}
	p := domain.Params{
		YourDomain:       yours,
		CompetitorDomain: theirs,
		LocationCode:     in.LocationCode,
		LanguageCode:     in.LanguageCode,
		Limit:            in.Limit,
	}
	if p.LocationCode <= 0 {
		p.LocationCode = dataforseo.DefaultLocationCode
	}
	if p.LanguageCode == "" {
		p.LanguageCode = dataforseo.DefaultLanguageCode
	}
	if p.Limit <= 0 {
		p.Limit = dataforseo.DefaultLimit
	}
	return p, nil
}

// Analyze checks quota, serves a cached report when one is fresh, and otherwise
// aggregates a new one. Sub operation failures never fail the call.
func (s *Svc) Analyze(ctx context.Context, callerID string, in domain.AnalyzeInput) (domain.Analysis, error) {
	p, err := Normalize(in)
	if err != nil {
		return domain.Analysis{}, err
	}
	log := logger.Ctx(ctx, s.log).With().
		Str("your_domain", p.YourDomain).Str("competitor_domain", p.CompetitorDomain).Logger()

	decision, err := s.quota.Check(ctx, callerID, quotadomain.ClassCompetitorReport)
	if err != nil {
		return domain.Analysis{}, err
	}
	if !decision.Allowed {
		return domain.Analysis{}, &domain.QuotaExceededError{Used: decision.Used, Limit: decision.Limit}
	}

	sum, err := checksum.Of(struct {
		Module string        `json:"module"`
		Params domain.Params `json:"params"`
	}{ModuleName, p})
	if err != nil {
		return domain.Analysis{}, err
	}

	var warnings []string
	cacheable := p.Default()
	if cacheable {
		if rep, ok := s.cached(ctx, log, callerID, p, sum); ok {
			return domain.Analysis{Report: rep, Warnings: []string{}}, nil
		}
	} else {
		warnings = append(warnings, domain.WarnCacheBypass)
	}

	// joiners share the leader's upstream calls, so usage rows carry the leader's caller
	meta := dataforseo.Meta{Module: ModuleName, CallerID: callerID, CorrelationID: correlationID(ctx)}
	v, err, shared := s.group.Do(sum, func() (any, error) {
		agg, err := s.aggregate(ctx, meta, p)
		if err == nil && cacheable && len(agg.failures) == 0 {
			if err := s.cache.Store(ctx, sum, ModuleName, agg.report); err != nil {
				log.Warn().Err(err).Msg("report cache write failed")
			}
		}
		return agg, err
	})
	if err != nil {
		return domain.Analysis{}, err
	}
	agg := v.(aggregate)
	if shared {
		log.Debug().Str("checksum", sum).Msg("joined in flight report")
	}

	for _, f := range agg.failures {
		warnings = append(warnings, f.Warning())
		log.Warn().Err(f.Err).Str("op", string(f.Op)).Str("side", string(f.Side)).
			Str("reason", string(f.Reason)).Msg("report section degraded")
	}

	// every caller handed a report is charged, joiners included
	if agg.failures.all() {
		log.Warn().Msg("every report section failed, quota not charged")
	} else if !decision.Bypass {
		if _, err := s.quota.Consume(ctx, callerID, quotadomain.ClassCompetitorReport); err != nil {
			log.Error().Err(err).Msg("quota consume failed")
		}
	}

	if warnings == nil {
		warnings = []string{}
	}
	return domain.Analysis{Report: agg.report, Warnings: warnings}, nil
}

// cached looks in the shared cache, then the caller's legacy analyses. Read errors are misses.
func (s *Svc) cached(ctx context.Context, log logger.Logger, callerID string, p domain.Params, sum string) (domain.Report, bool) {
	e, src, ok, err := s.cache.Lookup(ctx, sum)
	if err != nil {
		log.Warn().Err(err).Msg("report cache read failed")
	}
	if !ok {
		e, ok, err = s.cache.LookupAnalysis(ctx, callerID, p.YourDomain, p.CompetitorDomain, sum)
		if err != nil {
			log.Warn().Err(err).Msg("legacy analysis read failed")
		}
		src = cachedomain.SourceLegacy
	}
	if !ok {
		return domain.Report{}, false
	}
	var rep domain.Report
	if err := json.Unmarshal(e.Payload, &rep); err != nil {
		log.Warn().Err(err).Str("source", string(src)).Msg("cached report unreadable")
		return domain.Report{}, false
	}
	rep.Cached = true
	rep.CacheSource = string(src)
	log.Debug().Str("source", string(src)).Msg("report served from cache")
	return rep, true
}

// correlationID ties every upstream call of one request together
func correlationID(ctx context.Context) string {
	if id := pnet.RequestID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

type failures []domain.Failure

// all is true when every one of the six sections failed
func (f failures) all() bool { return len(f) == sectionCount }

const sectionCount = 6

type aggregate struct {
	report   domain.Report
	failures failures
}

// aggregate runs the six sub operations concurrently. Each catches its own failure;
// only a systemic gateway error cancels the siblings and fails the report.
func (s *Svc) aggregate(ctx context.Context, meta dataforseo.Meta, p domain.Params) (aggregate, error) {
	var (
		kwYours, kwTheirs domain.Outcome[[]dataforseo.RankedKeyword]
		blYours, blTheirs domain.Outcome[dataforseo.BacklinksSummary]
		opYours, opTheirs domain.Outcome[dataforseo.OnPageSummary]
	)
	g, gctx := errgroup.WithContext(ctx)

	keywords := func(side domain.Side, target string, out *domain.Outcome[[]dataforseo.RankedKeyword]) func() error {
		return func() error {
			rows, err := s.gw.RankedKeywords(gctx, meta, target, p.Locale(), p.Limit)
			return settle(out, domain.OpKeywords, side, rows, err)
		}
	}
	backlinks := func(side domain.Side, target string, out *domain.Outcome[dataforseo.BacklinksSummary]) func() error {
		return func() error {
			sum, err := s.gw.BacklinksSummary(gctx, meta, target)
			return settle(out, domain.OpBacklinks, side, sum, err)
		}
	}
	onpage := func(side domain.Side, target string, out *domain.Outcome[dataforseo.OnPageSummary]) func() error {
		return func() error {
			sum, err := s.gw.CrawlOnPage(gctx, meta, s.poller, target, s.pages)
			return settle(out, domain.OpOnPage, side, sum, err)
		}
	}

	g.Go(keywords(domain.SideYours, p.YourDomain, &kwYours))
	g.Go(keywords(domain.SideCompetitor, p.CompetitorDomain, &kwTheirs))
	g.Go(backlinks(domain.SideYours, p.YourDomain, &blYours))
	g.Go(backlinks(domain.SideCompetitor, p.CompetitorDomain, &blTheirs))
	g.Go(onpage(domain.SideYours, p.YourDomain, &opYours))
	g.Go(onpage(domain.SideCompetitor, p.CompetitorDomain, &opTheirs))
	if err := g.Wait(); err != nil {
		return aggregate{}, err
	}

	yours := kwYours.Or([]dataforseo.RankedKeyword{})
	theirs := kwTheirs.Or([]dataforseo.RankedKeyword{})
	gap, shared := KeywordGap(yours, theirs)

	agg := aggregate{report: domain.Report{
		YourDomain:       p.YourDomain,
		CompetitorDomain: p.CompetitorDomain,
		LocationCode:     p.LocationCode,
		LanguageCode:     p.LanguageCode,
		Keywords:         domain.KeywordSides{Yours: yours, Competitor: theirs},
		KeywordGap:       gap,
		SharedKeywords:   shared,
		Backlinks:        domain.BacklinkSides{Yours: blYours.Or(dataforseo.BacklinksSummary{}), Competitor: blTheirs.Or(dataforseo.BacklinksSummary{})},
		OnPage:           domain.OnPageSides{Yours: opYours.Or(dataforseo.OnPageSummary{}), Competitor: opTheirs.Or(dataforseo.OnPageSummary{})},
		GeneratedAt:      s.now().UTC(),
	}}
	// fixed order keeps the warnings stable across runs
	for _, f := range []*domain.Failure{
		kwYours.Failure, kwTheirs.Failure,
		blYours.Failure, blTheirs.Failure,
		opYours.Failure, opTheirs.Failure,
	} {
		if f != nil {
			agg.failures = append(agg.failures, *f)
		}
	}
	return agg, nil
}

// settle records the outcome of one sub operation and only escalates systemic errors
func settle[T any](out *domain.Outcome[T], op domain.Op, side domain.Side, v T, err error) error {
	if err == nil {
		*out = domain.Succeeded(v)
		return nil
	}
	if dataforseo.IsSystemic(err) {
		return err
	}
	*out = domain.Failed[T](op, side, err)
	return nil
}

// KeywordGap returns the competitor keywords yours does not rank for, by volume,
// and how many keywords both rank for. Keywords compare in folded form.
func KeywordGap(yours, theirs []dataforseo.RankedKeyword) ([]dataforseo.RankedKeyword, int) {
	have := make(map[string]struct{}, len(yours))
	for _, k := range yours {
		have[normalize.Keyword(k.Keyword)] = struct{}{}
	}
	gap := []dataforseo.RankedKeyword{}
	seen := make(map[string]struct{}, len(theirs))
	shared := 0
	for _, k := range theirs {
		key := normalize.Keyword(k.Keyword)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := have[key]; ok {
			shared++
			continue
		}
		gap = append(gap, k)
	}
	sort.SliceStable(gap, func(i, j int) bool { return gap[i].SearchVolume > gap[j].SearchVolume })
	return gap, shared
}
