// Package domain holds DTOs and ports for the competitor report
package domain

import (
	"time"

	"seogate/internal/adapters/dataforseo"
)

// AnalyzeInput compares a caller's domain with a competitor's.
// Domains may be urls; they are normalized to registrable hosts before use.
type AnalyzeInput struct {
	YourDomain       string `json:"your_domain" validate:"required,max=2048" example:"example.com"`
	CompetitorDomain string `json:"competitor_domain" validate:"required,max=2048" example:"www.rival.org/path"`
	LocationCode     int    `json:"location_code,omitempty" validate:"omitempty,min=1,max=9999999" example:"2840"`
	LanguageCode     string `json:"language_code,omitempty" validate:"omitempty,min=2,max=8" example:"en"`
	Limit            int    `json:"limit,omitempty" validate:"omitempty,min=1,max=1000" example:"100"`
}

// Params are the normalized inputs; their canonical JSON is the cache key
type Params struct {
	YourDomain       string `json:"your_domain"`
	CompetitorDomain string `json:"competitor_domain"`
	LocationCode     int    `json:"location_code"`
	LanguageCode     string `json:"language_code"`
	Limit            int    `json:"limit"`
}

// Default reports whether p uses the market and size every cached report is built with
func (p Params) Default() bool {
	return p.LocationCode == dataforseo.DefaultLocationCode &&
		p.LanguageCode == dataforseo.DefaultLanguageCode &&
		p.Limit == dataforseo.DefaultLimit
}

// Locale returns the gateway market of p
func (p Params) Locale() dataforseo.Locale {
	return dataforseo.Locale{LocationCode: p.LocationCode, LanguageCode: p.LanguageCode}
}

// KeywordSides holds ranked keywords per side
type KeywordSides struct {
	Yours      []dataforseo.RankedKeyword `json:"your_domain"`
	Competitor []dataforseo.RankedKeyword `json:"competitor_domain"`
}

// BacklinkSides holds link profiles per side
type BacklinkSides struct {
	Yours      dataforseo.BacklinksSummary `json:"your_domain"`
	Competitor dataforseo.BacklinksSummary `json:"competitor_domain"`
}

// OnPageSides holds crawl summaries per side
type OnPageSides struct {
	Yours      dataforseo.OnPageSummary `json:"your_domain"`
	Competitor dataforseo.OnPageSummary `json:"competitor_domain"`
}

// Report is the composed comparison. Failed sections carry their zero value.
type Report struct {
	YourDomain       string                     `json:"your_domain" example:"example.com"`
	CompetitorDomain string                     `json:"competitor_domain" example:"rival.org"`
	LocationCode     int                        `json:"location_code" example:"2840"`
	LanguageCode     string                     `json:"language_code" example:"en"`
	Keywords         KeywordSides               `json:"keywords"`
	KeywordGap       []dataforseo.RankedKeyword `json:"keyword_gap"`
	SharedKeywords   int                        `json:"shared_keywords" example:"12"`
	Backlinks        BacklinkSides              `json:"backlinks"`
	OnPage           OnPageSides                `json:"onpage"`
	GeneratedAt      time.Time                  `json:"generated_at"`
	Cached           bool                       `json:"cached"`
	CacheSource      string                     `json:"cache_source,omitempty" example:"cache"`
}

// Analysis is a report plus the warnings that travel next to it
type Analysis struct {
	Report   Report
	Warnings []string
}
