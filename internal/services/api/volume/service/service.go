// Package service looks up keyword volumes through the shared cache
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
	"seogate/internal/services/api/volume/domain"
	cachedomain "seogate/internal/services/cache/domain"
)

// ModuleName tags usage rows and cache entries
const ModuleName = "volume"

// cached is the payload stored under a volume checksum: every row, unsorted and unpaged
type cached struct {
	Rows      []dataforseo.VolumeRow `json:"rows"`
	FetchedAt time.Time              `json:"fetched_at"`
}

// Svc implements domain.ServicePort
type Svc struct {
	gw    domain.Gateway
	cache cachedomain.CachePort
	log   logger.Logger
	now   func() time.Time
}

// New constructs the volume service
func New(gw domain.Gateway, cache cachedomain.CachePort) *Svc {
	if gw == nil || cache == nil {
		panic("volume.Service requires a gateway and a cache")
	}
	return &Svc{gw: gw, cache: cache, log: *logger.Named("volume"), now: time.Now}
}

// Normalize folds, dedups and sorts the keywords so any ordering shares a cache key
func Normalize(in domain.SearchInput) (domain.Params, error) {
	kws := normalize.Keywords(in.Keywords)
	if len(kws) == 0 {
		return domain.Params{}, perr.InvalidArgf("keywords are empty")
	}
	if len(kws) > domain.MaxKeywords {
		return domain.Params{}, perr.InvalidArgf("at most %d keywords per request", domain.MaxKeywords)
	}
	sort.Strings(kws)
	p := domain.Params{Keywords: kws, LocationCode: in.LocationCode, LanguageCode: in.LanguageCode}
	if p.LocationCode <= 0 {
		p.LocationCode = dataforseo.DefaultLocationCode
	}
	if p.LanguageCode == "" {
		p.LanguageCode = dataforseo.DefaultLanguageCode
	}
	return p, nil
}

// Search returns one filtered, sorted page of volume rows
func (s *Svc) Search(ctx context.Context, callerID string, in domain.SearchInput) (domain.Analysis, error) {
	p, err := Normalize(in)
	if err != nil {
		return domain.Analysis{}, err
	}
	log := logger.Ctx(ctx, s.log).With().Int("keywords", len(p.Keywords)).Logger()

	sum, err := checksum.Of(struct {
		Module string        `json:"module"`
		Params domain.Params `json:"params"`
	}{ModuleName, p})
	if err != nil {
		return domain.Analysis{}, err
	}

	warnings := []string{}
	var (
		data   cached
		source cachedomain.Source
		hit    bool
	)
	cacheable := p.Default()
	if !cacheable {
		warnings = append(warnings, domain.WarnCacheBypass)
	} else if e, src, ok, err := s.cache.Lookup(ctx, sum); err != nil {
		log.Warn().Err(err).Msg("volume cache read failed")
	} else if ok {
		if err := json.Unmarshal(e.Payload, &data); err != nil {
			log.Warn().Err(err).Str("checksum", sum).Msg("cached volume unreadable")
		} else {
			source, hit = src, true
		}
	}

	if !hit {
		meta := dataforseo.Meta{Module: ModuleName, CallerID: callerID, CorrelationID: pnet.RequestID(ctx)}
		rows, err := s.gw.SearchVolume(ctx, meta, p.Keywords, dataforseo.Locale{LocationCode: p.LocationCode, LanguageCode: p.LanguageCode})
		if err != nil {
			return domain.Analysis{}, err
		}
		data = cached{Rows: rows, FetchedAt: s.now().UTC()}
		if cacheable {
			if err := s.cache.Store(ctx, sum, ModuleName, data); err != nil {
				log.Warn().Err(err).Msg("volume cache write failed")
			}
		}
	}

	view := viewOf(in)
	page, total := apply(data.Rows, view)
	return domain.Analysis{
		Report: domain.Report{
			Rows:         page,
			Total:        total,
			Missing:      missing(p.Keywords, data.Rows),
			View:         view,
			LocationCode: p.LocationCode,
			LanguageCode: p.LanguageCode,
			FetchedAt:    data.FetchedAt,
			Cached:       hit,
			CacheSource:  string(source),
		},
		Warnings: warnings,
	}, nil
}
