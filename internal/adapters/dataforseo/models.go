package dataforseo

// Wire shapes of the result elements, trimmed to the fields the gateway reads

type rankedKeywordsResult struct {
	Target     string             `json:"target"`
	TotalCount int64              `json:"total_count"`
	ItemsCount int                `json:"items_count"`
	Items      []rankedKeywordRaw `json:"items"`
}

type rankedKeywordRaw struct {
	KeywordData struct {
		Keyword     string `json:"keyword"`
		KeywordInfo struct {
			SearchVolume *int64   `json:"search_volume"`
			CPC          *float64 `json:"cpc"`
			Competition  *float64 `json:"competition"`
		} `json:"keyword_info"`
		KeywordProperties struct {
			KeywordDifficulty *int `json:"keyword_difficulty"`
		} `json:"keyword_properties"`
		SearchIntentInfo *struct {
			MainIntent string `json:"main_intent"`
		} `json:"search_intent_info"`
	} `json:"keyword_data"`
	RankedSERPElement struct {
		SERPItem struct {
			Type         string   `json:"type"`
			RankGroup    int      `json:"rank_group"`
			RankAbsolute int      `json:"rank_absolute"`
			URL          string   `json:"url"`
			ETV          *float64 `json:"etv"`
		} `json:"serp_item"`
	} `json:"ranked_serp_element"`
}

// RankedKeyword is one keyword a domain ranks for
type RankedKeyword struct {
	Keyword      string  `json:"keyword"`
	SearchVolume int64   `json:"search_volume"`
	CPC          float64 `json:"cpc"`
	Competition  float64 `json:"competition"`
	Difficulty   int     `json:"difficulty"`
	Intent       string  `json:"intent,omitempty"`
	Position     int     `json:"position"`
	URL          string  `json:"url,omitempty"`
	ETV          float64 `json:"etv"`
}

func (r rankedKeywordRaw) row() RankedKeyword {
	kd := r.KeywordData
	item := r.RankedSERPElement.SERPItem
	out := RankedKeyword{
		Keyword:      kd.Keyword,
		SearchVolume: deref(kd.KeywordInfo.SearchVolume),
		CPC:          deref(kd.KeywordInfo.CPC),
		Competition:  deref(kd.KeywordInfo.Competition),
		Difficulty:   deref(kd.KeywordProperties.KeywordDifficulty),
		Position:     item.RankGroup,
		URL:          item.URL,
		ETV:          deref(item.ETV),
	}
	if kd.SearchIntentInfo != nil {
		out.Intent = kd.SearchIntentInfo.MainIntent
	}
	return out
}

// BacklinksSummary is the link profile of a target; the zero value is the neutral default
type BacklinksSummary struct {
	Backlinks        int64 `json:"backlinks"`
	ReferringDomains int64 `json:"referring_domains"`
	ReferringIPs     int64 `json:"referring_ips"`
	Rank             int   `json:"rank"`
	BrokenBacklinks  int64 `json:"broken_backlinks"`
}

type backlinksSummaryRaw struct {
	Target           string `json:"target"`
	Backlinks        int64  `json:"backlinks"`
	ReferringDomains int64  `json:"referring_domains"`
	ReferringIPs     int64  `json:"referring_ips"`
	Rank             int    `json:"rank"`
	BrokenBacklinks  int64  `json:"broken_backlinks"`
}

// OnPageSummary is the crawl digest of a site; the zero value is the neutral default
type OnPageSummary struct {
	CrawlProgress   string  `json:"crawl_progress"`
	PagesCrawled    int     `json:"pages_crawled"`
	OnPageScore     float64 `json:"onpage_score"`
	BrokenLinks     int     `json:"broken_links"`
	BrokenResources int     `json:"broken_resources"`
	DuplicateTitle  int     `json:"duplicate_title"`
	DuplicateDesc   int     `json:"duplicate_description"`
	CMS             string  `json:"cms,omitempty"`
	Server          string  `json:"server,omitempty"`
}

type onPageSummaryRaw struct {
	CrawlProgress string `json:"crawl_progress"`
	CrawlStatus   *struct {
		PagesCrawled int `json:"pages_crawled"`
	} `json:"crawl_status"`
	DomainInfo *struct {
		CMS    string `json:"cms"`
		Server string `json:"server"`
	} `json:"domain_info"`
	PageMetrics *struct {
		OnPageScore          *float64 `json:"onpage_score"`
		BrokenLinks          int      `json:"broken_links"`
		BrokenResources      int      `json:"broken_resources"`
		DuplicateTitle       int      `json:"duplicate_title"`
		DuplicateDescription int      `json:"duplicate_description"`
	} `json:"page_metrics"`
}

// crawlFinished is the terminal crawl_progress marker
const crawlFinished = "finished"

func (r onPageSummaryRaw) summary() OnPageSummary {
	out := OnPageSummary{CrawlProgress: r.CrawlProgress}
	if r.CrawlStatus != nil {
		out.PagesCrawled = r.CrawlStatus.PagesCrawled
	}
	if r.DomainInfo != nil {
		out.CMS = r.DomainInfo.CMS
		out.Server = r.DomainInfo.Server
	}
	if m := r.PageMetrics; m != nil {
		out.OnPageScore = deref(m.OnPageScore)
		out.BrokenLinks = m.BrokenLinks
		out.BrokenResources = m.BrokenResources
		out.DuplicateTitle = m.DuplicateTitle
		out.DuplicateDesc = m.DuplicateDescription
	}
	return out
}

type serpResultRaw struct {
	Keyword        string        `json:"keyword"`
	CheckURL       string        `json:"check_url"`
	SEResultsCount int64         `json:"se_results_count"`
	ItemTypes      []string      `json:"item_types"`
	Items          []serpItemRaw `json:"items"`
}

type serpItemRaw struct {
	Type         string `json:"type"`
	RankGroup    int    `json:"rank_group"`
	RankAbsolute int    `json:"rank_absolute"`
	Domain       string `json:"domain"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	Description  string `json:"description"`
	Breadcrumb   string `json:"breadcrumb"`
}

// SERPItem is one organic result
type SERPItem struct {
	Position    int    `json:"position"`
	Domain      string `json:"domain"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Breadcrumb  string `json:"breadcrumb,omitempty"`
}

// SERP is an organic results page with the non organic features it showed
type SERP struct {
	Keyword      string     `json:"keyword"`
	CheckURL     string     `json:"check_url,omitempty"`
	ResultsCount int64      `json:"results_count"`
	Features     []string   `json:"features"`
	Items        []SERPItem `json:"items"`
}

func (r serpResultRaw) serp() SERP {
	out := SERP{
		Keyword:      r.Keyword,
		CheckURL:     r.CheckURL,
		ResultsCount: r.SEResultsCount,
		Features:     []string{},
		Items:        []SERPItem{},
	}
	for _, t := range r.ItemTypes {
		if t != "organic" {
			out.Features = append(out.Features, t)
		}
	}
	for _, it := range r.Items {
		if it.Type != "organic" {
			continue
		}
		out.Items = append(out.Items, SERPItem{
			Position:    it.RankGroup,
			Domain:      it.Domain,
			Title:       it.Title,
			URL:         it.URL,
			Description: it.Description,
			Breadcrumb:  it.Breadcrumb,
		})
	}
	return out
}

type volumeRowRaw struct {
	Keyword          string   `json:"keyword"`
	Competition      *string  `json:"competition"`
	CompetitionIndex *int     `json:"competition_index"`
	SearchVolume     *int64   `json:"search_volume"`
	CPC              *float64 `json:"cpc"`
	LowTopOfPageBid  *float64 `json:"low_top_of_page_bid"`
	HighTopOfPageBid *float64 `json:"high_top_of_page_bid"`
	MonthlySearches  []struct {
		Year         int    `json:"year"`
		Month        int    `json:"month"`
		SearchVolume *int64 `json:"search_volume"`
	} `json:"monthly_searches"`
}

// MonthlySearch is one point of a keyword's volume history
type MonthlySearch struct {
	Year         int   `json:"year"`
	Month        int   `json:"month"`
	SearchVolume int64 `json:"search_volume"`
}

// VolumeRow is the Google Ads volume data of one keyword
type VolumeRow struct {
	Keyword          string          `json:"keyword"`
	SearchVolume     int64           `json:"search_volume"`
	CPC              float64         `json:"cpc"`
	Competition      string          `json:"competition,omitempty"`
	CompetitionIndex int             `json:"competition_index"`
	LowTopOfPageBid  float64         `json:"low_top_of_page_bid"`
	HighTopOfPageBid float64         `json:"high_top_of_page_bid"`
	MonthlySearches  []MonthlySearch `json:"monthly_searches"`
}

func (r volumeRowRaw) row() VolumeRow {
	out := VolumeRow{
		Keyword:          r.Keyword,
		SearchVolume:     deref(r.SearchVolume),
		CPC:              deref(r.CPC),
		Competition:      deref(r.Competition),
		CompetitionIndex: deref(r.CompetitionIndex),
		LowTopOfPageBid:  deref(r.LowTopOfPageBid),
		HighTopOfPageBid: deref(r.HighTopOfPageBid),
		MonthlySearches:  make([]MonthlySearch, 0, len(r.MonthlySearches)),
	}
	for _, m := range r.MonthlySearches {
		out.MonthlySearches = append(out.MonthlySearches, MonthlySearch{Year: m.Year, Month: m.Month, SearchVolume: deref(m.SearchVolume)})
	}
	return out
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
