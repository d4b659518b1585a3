// Package service fetches organic result pages through the shared cache
package service

import (
	"context"
	"encoding/json"
	"time"

	"seogate/internal/adapters/dataforseo"
	"seogate/internal/core/checksum"
	"seogate/internal/core/normalize"
	perr "seogate/internal/platform/errors"
	"seogate/internal/platform/logger"
	pnet "seogate/internal/platform/net"
	"seogate/internal/services/api/serp/domain"
	cachedomain "seogate/internal/services/cache/domain"
)

// ModuleName tags usage rows and cache entries
const ModuleName = "serp"

// Svc implements domain.ServicePort
type Svc struct {
	gw    domain.Gateway
	cache cachedomain.CachePort
	log   logger.Logger
	now   func() time.Time
}

// New constructs the SERP service
func New(gw domain.Gateway, cache cachedomain.CachePort) *Svc {
	if gw == nil || cache == nil {
		panic("serp.Service requires a gateway and a cache")
	}
	return &Svc{gw: gw, cache: cache, log: *logger.Named("serp"), now: time.Now}
}

// Normalize folds the keyword and fills market defaults
func Normalize(in domain.AnalyzeInput) (domain.Params, error) {
	p := domain.Params{
		Keyword:      normalize.Keyword(in.Keyword),
		LocationCode: in.LocationCode,
		LanguageCode: in.LanguageCode,
		Depth:        in.Depth,
	}
	if p.Keyword == "" {
		return domain.Params{}, perr.InvalidArgf("keyword is empty")
	}
	if p.LocationCode <= 0 {
		p.LocationCode = dataforseo.DefaultLocationCode
	}
	if p.LanguageCode == "" {
		p.LanguageCode = dataforseo.DefaultLanguageCode
	}
	if p.Depth <= 0 {
		p.Depth = dataforseo.DefaultSERPDepth
	}
	return p, nil
}

// Analyze returns the results page for the keyword. Upstream failures are returned as errors.
func (s *Svc) Analyze(ctx context.Context, callerID string, in domain.AnalyzeInput) (domain.Analysis, error) {
	p, err := Normalize(in)
	if err != nil {
		return domain.Analysis{}, err
	}
	target := ""
	if in.Target != "" {
		if target, err = normalize.Domain(in.Target); err != nil {
			return domain.Analysis{}, perr.WithFieldChain(err, "target")
		}
	}
	log := logger.Ctx(ctx, s.log).With().Str("keyword", p.Keyword).Logger()

	sum, err := checksum.Of(struct {
		Module string        `json:"module"`
		Params domain.Params `json:"params"`
	}{ModuleName, p})
	if err != nil {
		return domain.Analysis{}, err
	}

	warnings := []string{}
	cacheable := p.Default()
	if !cacheable {
		warnings = append(warnings, domain.WarnCacheBypass)
	} else if e, src, ok, err := s.cache.Lookup(ctx, sum); err != nil {
		log.Warn().Err(err).Msg("serp cache read failed")
	} else if ok {
		var rep domain.Report
		if err := json.Unmarshal(e.Payload, &rep); err == nil {
			rep.Cached, rep.CacheSource = true, string(src)
			locate(&rep, target)
			return domain.Analysis{Report: rep, Warnings: warnings}, nil
		}
		log.Warn().Str("checksum", sum).Msg("cached serp unreadable")
	}

	meta := dataforseo.Meta{Module: ModuleName, CallerID: callerID, CorrelationID: pnet.RequestID(ctx)}
	page, err := s.gw.SERPOrganic(ctx, meta, p.Keyword, dataforseo.Locale{LocationCode: p.LocationCode, LanguageCode: p.LanguageCode}, p.Depth)
	if err != nil {
		return domain.Analysis{}, err
	}
	rep := domain.Report{
		SERP:         page,
		LocationCode: p.LocationCode,
		LanguageCode: p.LanguageCode,
		FetchedAt:    s.now().UTC(),
	}
	if cacheable {
		if err := s.cache.Store(ctx, sum, ModuleName, rep); err != nil {
			log.Warn().Err(err).Msg("serp cache write failed")
		}
	}
	locate(&rep, target)
	return domain.Analysis{Report: rep, Warnings: warnings}, nil
}

// locate sets the best position of target among the organic items
func locate(rep *domain.Report, target string) {
	rep.Target, rep.TargetPosition = target, 0
	if target == "" {
		return
	}
	for _, it := range rep.Items {
		host, err := normalize.Domain(it.Domain)
		if err != nil || !normalize.SameSite(host, target) {
			continue
		}
		if rep.TargetPosition == 0 || it.Position < rep.TargetPosition {
			rep.TargetPosition = it.Position
		}
	}
}
