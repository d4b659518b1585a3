// Package domain holds DTOs and ports for SERP analysis
package domain

import (
	"context"
	"time"

	"seogate/internal/adapters/dataforseo"
)

// AnalyzeInput asks for the organic results of one keyword
type AnalyzeInput struct {
	Keyword      string `json:"keyword" validate:"required,max=700" example:"rank tracker"`
	LocationCode int    `json:"location_code,omitempty" validate:"omitempty,min=1,max=9999999" example:"2840"`
	LanguageCode string `json:"language_code,omitempty" validate:"omitempty,min=2,max=8" example:"en"`
	Depth        int    `json:"depth,omitempty" validate:"omitempty,min=1,max=700" example:"10"`
	// Target is an optional domain whose best position is reported
	Target string `json:"target,omitempty" validate:"omitempty,max=2048" example:"example.com"`
}

// Params are the normalized, cache relevant inputs
type Params struct {
	Keyword      string `json:"keyword"`
	LocationCode int    `json:"location_code"`
	LanguageCode string `json:"language_code"`
	Depth        int    `json:"depth"`
}

// Default reports whether p uses the market and depth cached pages are built with
func (p Params) Default() bool {
	return p.LocationCode == dataforseo.DefaultLocationCode &&
		p.LanguageCode == dataforseo.DefaultLanguageCode &&
		p.Depth == dataforseo.DefaultSERPDepth
}

// Report is one results page
type Report struct {
	dataforseo.SERP
	LocationCode   int       `json:"location_code"`
	LanguageCode   string    `json:"language_code"`
	Target         string    `json:"target,omitempty"`
	TargetPosition int       `json:"target_position,omitempty"`
	FetchedAt      time.Time `json:"fetched_at"`
	Cached         bool      `json:"cached"`
	CacheSource    string    `json:"cache_source,omitempty"`
}

// Analysis is a report plus its warnings
type Analysis struct {
	Report   Report
	Warnings []string
}

// ServicePort is consumed by handlers
type ServicePort interface {
	Analyze(ctx context.Context, callerID string, in AnalyzeInput) (Analysis, error)
}

// Gateway is the slice of the DataForSEO client SERP analysis needs
type Gateway interface {
	SERPOrganic(ctx context.Context, m dataforseo.Meta, keyword string, loc dataforseo.Locale, depth int) (dataforseo.SERP, error)
}

// WarnCacheBypass tags pages fetched with non default parameters
const WarnCacheBypass = "cache_bypass_custom_params"
