// Package domain holds DTOs and ports for keyword volume lookups
package domain

import (
	"context"
	"time"

	"seogate/internal/adapters/dataforseo"
)

// Sort keys accepted by SearchInput.Sort
const (
	SortSearchVolume = "search_volume"
	SortCPC          = "cpc"
	SortCompetition  = "competition"
	SortKeyword      = "keyword"
)

// Paging defaults
const (
	DefaultPageSize = 50
	MaxKeywords     = 1000
)

// SearchInput asks for Google Ads volume of a keyword list
type SearchInput struct {
	Keywords     []string `json:"keywords" validate:"required,min=1,max=1000,dive,required,max=80" example:"rank tracker,seo tools"`
	LocationCode int      `json:"location_code,omitempty" validate:"omitempty,min=1,max=9999999" example:"2840"`
	LanguageCode string   `json:"language_code,omitempty" validate:"omitempty,min=2,max=8" example:"en"`
	Sort         string   `json:"sort,omitempty" validate:"omitempty,oneof=search_volume cpc competition keyword" example:"search_volume"`
	Order        string   `json:"order,omitempty" validate:"omitempty,oneof=asc desc" example:"desc"`
	MinVolume    int64    `json:"min_volume,omitempty" validate:"omitempty,min=0" example:"100"`
	Page         int      `json:"page,omitempty" validate:"omitempty,min=1" example:"1"`
	PageSize     int      `json:"page_size,omitempty" validate:"omitempty,min=1,max=1000" example:"50"`
}

// Params are the cache relevant inputs; keywords are folded and sorted
type Params struct {
	Keywords     []string `json:"keywords"`
	LocationCode int      `json:"location_code"`
	LanguageCode string   `json:"language_code"`
}

// Default reports whether p targets the default market
func (p Params) Default() bool {
	return p.LocationCode == dataforseo.DefaultLocationCode && p.LanguageCode == dataforseo.DefaultLanguageCode
}

// View is how a row set is filtered, ordered and paged; it never affects the cache key
type View struct {
	Sort      string `json:"sort"`
	Order     string `json:"order"`
	MinVolume int64  `json:"min_volume"`
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
}

// Report is one page of volume rows
type Report struct {
	Rows         []dataforseo.VolumeRow `json:"rows"`
	Total        int                    `json:"total" example:"2"`
	Missing      []string               `json:"missing"`
	View         View                   `json:"view"`
	LocationCode int                    `json:"location_code"`
	LanguageCode string                 `json:"language_code"`
	FetchedAt    time.Time              `json:"fetched_at"`
	Cached       bool                   `json:"cached"`
	CacheSource  string                 `json:"cache_source,omitempty"`
}

// Analysis is a report plus its warnings
type Analysis struct {
	Report   Report
	Warnings []string
}

// ServicePort is consumed by handlers
type ServicePort interface {
	Search(ctx context.Context, callerID string, in SearchInput) (Analysis, error)
}

// Gateway is the slice of the DataForSEO client volume lookups need
type Gateway interface {
	SearchVolume(ctx context.Context, m dataforseo.Meta, keywords []string, loc dataforseo.Locale) ([]dataforseo.VolumeRow, error)
}

// WarnCacheBypass tags lookups made with a non default market
const WarnCacheBypass = "cache_bypass_custom_params"
