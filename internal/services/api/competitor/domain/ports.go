package domain

import (
	"context"

	"seogate/internal/adapters/dataforseo"
)

// ServicePort is consumed by handlers
type ServicePort interface {
	Analyze(ctx context.Context, callerID string, in AnalyzeInput) (Analysis, error)
}

// Gateway is the slice of the DataForSEO client a report needs
type Gateway interface {
	RankedKeywords(ctx context.Context, m dataforseo.Meta, target string, loc dataforseo.Locale, limit int) ([]dataforseo.RankedKeyword, error)
	BacklinksSummary(ctx context.Context, m dataforseo.Meta, target string) (dataforseo.BacklinksSummary, error)
	CrawlOnPage(ctx context.Context, m dataforseo.Meta, p *dataforseo.Poller, target string, maxPages int) (dataforseo.OnPageSummary, error)
}

// QuotaExceededError is returned by Analyze when the caller's free allowance is spent
type QuotaExceededError struct {
	Used  int
	Limit int
}

func (e *QuotaExceededError) Error() string { return "competitor report quota exceeded" }
