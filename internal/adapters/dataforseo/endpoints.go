package dataforseo

import (
	"context"
	"net/http"
	"strings"
)

// Upstream endpoints, relative to the base url
const (
	EndpointRankedKeywords   = "/dataforseo_labs/google/ranked_keywords/live"
	EndpointBacklinksSummary = "/backlinks/summary/live"
	EndpointOnPageTaskPost   = "/on_page/task_post"
	EndpointOnPageSummary    = "/on_page/summary/"
	EndpointSERPOrganic      = "/serp/google/organic/live/advanced"
	EndpointSearchVolume     = "/keywords_data/google_ads/search_volume/live"
)

// Defaults used when a caller leaves locale or size unset
const (
	DefaultLocationCode = 2840 // United States
	DefaultLanguageCode = "en"
	DefaultLimit        = 100
	DefaultSERPDepth    = 10
	DefaultCrawlPages   = 10
)

// Meta identifies who issued a call, for the usage log and retry diagnostics
type Meta struct {
	Module        string
	CallerID      string
	CorrelationID string
}

func (m Meta) request(endpoint, method string, payload any) Request {
	return Request{
		Endpoint:      endpoint,
		Method:        method,
		Payload:       payload,
		Module:        m.Module,
		CallerID:      m.CallerID,
		CorrelationID: m.CorrelationID,
	}
}

// Locale targets a market
type Locale struct {
	LocationCode int
	LanguageCode string
}

func (l Locale) withDefaults() Locale {
	if l.LocationCode <= 0 {
		l.LocationCode = DefaultLocationCode
	}
	if l.LanguageCode == "" {
		l.LanguageCode = DefaultLanguageCode
	}
	return l
}

// task posts one task and returns its checked first task
func (c *Client) task(ctx context.Context, req Request) (Task, error) {
	env, err := c.Call(ctx, req)
	if err != nil {
		return Task{}, err
	}
	return env.FirstTask(req.Endpoint)
}

// RankedKeywords lists the keywords target ranks for, highest volume first as returned upstream
func (c *Client) RankedKeywords(ctx context.Context, m Meta, target string, loc Locale, limit int) ([]RankedKeyword, error) {
	loc = loc.withDefaults()
	if limit <= 0 {
		limit = DefaultLimit
	}
	payload := []map[string]any{{
		"target":        target,
		"location_code": loc.LocationCode,
		"language_code": loc.LanguageCode,
		"limit":         limit,
		"order_by":      []string{"keyword_data.keyword_info.search_volume,desc"},
	}}
	t, err := c.task(ctx, m.request(EndpointRankedKeywords, http.MethodPost, payload))
	if err != nil {
		return nil, err
	}
	res, err := DecodeResult[rankedKeywordsResult](t)
	if err != nil {
		return nil, withEndpoint(err, EndpointRankedKeywords)
	}
	out := []RankedKeyword{}
	for _, r := range res {
		for _, it := range r.Items {
			if it.KeywordData.Keyword == "" {
				continue
			}
			out = append(out, it.row())
		}
	}
	return out, nil
}

// BacklinksSummary returns the link profile of target
func (c *Client) BacklinksSummary(ctx context.Context, m Meta, target string) (BacklinksSummary, error) {
	payload := []map[string]any{{
		"target":                target,
		"internal_list_limit":   10,
		"backlinks_status_type": "live",
		"include_subdomains":    true,
	}}
	t, err := c.task(ctx, m.request(EndpointBacklinksSummary, http.MethodPost, payload))
	if err != nil {
		return BacklinksSummary{}, err
	}
	res, err := DecodeResult[backlinksSummaryRaw](t)
	if err != nil {
		return BacklinksSummary{}, withEndpoint(err, EndpointBacklinksSummary)
	}
	if len(res) == 0 {
		return BacklinksSummary{}, nil
	}
	r := res[0]
	return BacklinksSummary{
		Backlinks:        r.Backlinks,
		ReferringDomains: r.ReferringDomains,
		ReferringIPs:     r.ReferringIPs,
		Rank:             r.Rank,
		BrokenBacklinks:  r.BrokenBacklinks,
	}, nil
}

// PostOnPageTask starts a crawl of target and returns the upstream task id
func (c *Client) PostOnPageTask(ctx context.Context, m Meta, target string, maxPages int) (string, error) {
	if maxPages <= 0 {
		maxPages = DefaultCrawlPages
	}
	payload := []map[string]any{{
		"target":          target,
		"max_crawl_pages": maxPages,
	}}
	t, err := c.task(ctx, m.request(EndpointOnPageTaskPost, http.MethodPost, payload))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(t.ID) == "" {
		return "", &GatewayError{Kind: KindTask, Endpoint: EndpointOnPageTaskPost, Message: "task_post returned no task id"}
	}
	return t.ID, nil
}

// OnPageSummary checks a crawl once, in a single attempt since the poller retries;
// done is true when the crawl finished
func (c *Client) OnPageSummary(ctx context.Context, m Meta, taskID string) (OnPageSummary, bool, error) {
	req := m.request(EndpointOnPageSummary+taskID, http.MethodGet, nil)
	req.NoRetry = true
	env, err := c.Call(ctx, req)
	if err != nil {
		return OnPageSummary{}, false, err
	}
	if len(env.Tasks) > 0 && env.Tasks[0].inQueue() {
		return OnPageSummary{CrawlProgress: "in_queue"}, false, nil
	}
	t, err := env.FirstTask(EndpointOnPageSummary)
	if err != nil {
		return OnPageSummary{}, false, err
	}
	res, err := DecodeResult[onPageSummaryRaw](t)
	if err != nil {
		return OnPageSummary{}, false, withEndpoint(err, EndpointOnPageSummary)
	}
	if len(res) == 0 {
		return OnPageSummary{}, false, nil
	}
	s := res[0].summary()
	return s, s.CrawlProgress == crawlFinished, nil
}

// CrawlOnPage posts a crawl task and polls it to completion. A crawl that does not
// finish in the poll budget yields ErrPollTimeout.
func (c *Client) CrawlOnPage(ctx context.Context, m Meta, p *Poller, target string, maxPages int) (OnPageSummary, error) {
	id, err := c.PostOnPageTask(ctx, m, target, maxPages)
	if err != nil {
		return OnPageSummary{}, err
	}
	return Poll(ctx, p, id, func(ctx context.Context) (OnPageSummary, bool, error) {
		return c.OnPageSummary(ctx, m, id)
	})
}

// SERPOrganic fetches the organic results page for keyword
func (c *Client) SERPOrganic(ctx context.Context, m Meta, keyword string, loc Locale, depth int) (SERP, error) {
	loc = loc.withDefaults()
	if depth <= 0 {
		depth = DefaultSERPDepth
	}
	payload := []map[string]any{{
		"keyword":       keyword,
		"location_code": loc.LocationCode,
		"language_code": loc.LanguageCode,
		"depth":         depth,
	}}
	t, err := c.task(ctx, m.request(EndpointSERPOrganic, http.MethodPost, payload))
	if err != nil {
		return SERP{}, err
	}
	res, err := DecodeResult[serpResultRaw](t)
	if err != nil {
		return SERP{}, withEndpoint(err, EndpointSERPOrganic)
	}
	if len(res) == 0 {
		return SERP{Keyword: keyword, Features: []string{}, Items: []SERPItem{}}, nil
	}
	return res[0].serp(), nil
}

// SearchVolume returns Google Ads volume rows for up to 1000 keywords
func (c *Client) SearchVolume(ctx context.Context, m Meta, keywords []string, loc Locale) ([]VolumeRow, error) {
	loc = loc.withDefaults()
	payload := []map[string]any{{
		"keywords":      keywords,
		"location_code": loc.LocationCode,
		"language_code": loc.LanguageCode,
	}}
	t, err := c.task(ctx, m.request(EndpointSearchVolume, http.MethodPost, payload))
	if err != nil {
		return nil, err
	}
	res, err := DecodeResult[volumeRowRaw](t)
	if err != nil {
		return nil, withEndpoint(err, EndpointSearchVolume)
	}
	out := make([]VolumeRow, 0, len(res))
	for _, r := range res {
		out = append(out, r.row())
	}
	return out, nil
}

func withEndpoint(err error, endpoint string) error {
	if ge, ok := AsGatewayError(err); ok && ge.Endpoint == "" {
		ge.Endpoint = endpoint
	}
	return err
}
