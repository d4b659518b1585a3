package dataforseo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func envelope(taskStatus int, taskID, result string) string {
	return `{"status_code":20000,"status_message":"Ok.","cost":0.01,"tasks_count":1,"tasks_error":0,"tasks":[{"id":"` + taskID +
		`","status_code":` + strconv.Itoa(taskStatus) + `,"status_message":"msg","cost":0.01,"result":` + result + `}]}`
}

func routeServer(t *testing.T, routes map[string]func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		for prefix, fn := range routes {
			if strings.HasPrefix(r.URL.Path, prefix) {
				fn(w, r)
				return
			}
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func write(body string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(body)) }
}

var meta = Meta{Module: "competitor", CallerID: "user-1"}

func TestRankedKeywords_Decodes(t *testing.T) {
	t.Parallel()

	result := `[{"target":"example.com","total_count":2,"items_count":2,"items":[
{"keyword_data":{"keyword":"seo tools","keyword_info":{"search_volume":1200,"cpc":3.5,"competition":0.4},
 "keyword_properties":{"keyword_difficulty":55},"search_intent_info":{"main_intent":"commercial"}},
 "ranked_serp_element":{"serp_item":{"type":"organic","rank_group":3,"url":"https://example.com/tools","etv":80.5}}},
{"keyword_data":{"keyword":"rank tracker","keyword_info":{"search_volume":null,"cpc":null}},
 "ranked_serp_element":{"serp_item":{"type":"organic","rank_group":11}}}]}]`
	srv := routeServer(t, map[string]func(http.ResponseWriter, *http.Request){
		EndpointRankedKeywords: write(envelope(20000, "t-1", result)),
	})
	h := newHarness(t, srv.URL, nil)

	rows, err := h.client.RankedKeywords(context.Background(), meta, "example.com", Locale{}, 0)
	if err != nil {
		t.Fatalf("RankedKeywords: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	first := rows[0]
	if first.Keyword != "seo tools" || first.SearchVolume != 1200 || first.CPC != 3.5 || first.Difficulty != 55 ||
		first.Intent != "commercial" || first.Position != 3 || first.ETV != 80.5 {
		t.Fatalf("first row = %+v", first)
	}
	if rows[1].SearchVolume != 0 || rows[1].Intent != "" || rows[1].Position != 11 {
		t.Fatalf("null fields should decode to zero: %+v", rows[1])
	}
	if u := h.usage.all(); len(u) != 1 || u[0].Module != "competitor" {
		t.Fatalf("usage = %+v", u)
	}
}

func TestTypedWrapper_TaskFailureInsideOK(t *testing.T) {
	t.Parallel()

	srv := routeServer(t, map[string]func(http.ResponseWriter, *http.Request){
		EndpointBacklinksSummary: write(envelope(40501, "t-1", `null`)),
	})
	h := newHarness(t, srv.URL, nil)

	_, err := h.client.BacklinksSummary(context.Background(), meta, "example.com")
	ge, ok := AsGatewayError(err)
	if !ok || ge.Kind != KindTask || ge.StatusCode != 40501 {
		t.Fatalf("got %v", err)
	}
	if ge.IsRateLimit() {
		t.Fatal("task failure is not a rate limit")
	}
}

func TestTypedWrapper_EnvelopeFailure(t *testing.T) {
	t.Parallel()

	srv := routeServer(t, map[string]func(http.ResponseWriter, *http.Request){
		EndpointSERPOrganic: write(`{"status_code":40100,"status_message":"You are not authorized.","tasks":[]}`),
	})
	h := newHarness(t, srv.URL, nil)

	_, err := h.client.SERPOrganic(context.Background(), meta, "seo", Locale{}, 0)
	ge, ok := AsGatewayError(err)
	if !ok || ge.Kind != KindTask || ge.StatusCode != 40100 || !strings.Contains(ge.Error(), "not authorized") {
		t.Fatalf("got %v", err)
	}
}

func TestBacklinksSummary_Decodes(t *testing.T) {
	t.Parallel()

	srv := routeServer(t, map[string]func(http.ResponseWriter, *http.Request){
		EndpointBacklinksSummary: write(envelope(20000, "t-1",
			`[{"target":"rival.org","backlinks":5400,"referring_domains":310,"referring_ips":290,"rank":412,"broken_backlinks":12}]`)),
	})
	h := newHarness(t, srv.URL, nil)

	got, err := h.client.BacklinksSummary(context.Background(), meta, "rival.org")
	if err != nil {
		t.Fatalf("BacklinksSummary: %v", err)
	}
	want := BacklinksSummary{Backlinks: 5400, ReferringDomains: 310, ReferringIPs: 290, Rank: 412, BrokenBacklinks: 12}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestCrawlOnPage_PollsUntilFinished(t *testing.T) {
	t.Parallel()

	var polls atomic.Int32
	srv := routeServer(t, map[string]func(http.ResponseWriter, *http.Request){
		EndpointOnPageTaskPost: write(envelope(20100, "task-42", `null`)),
		EndpointOnPageSummary: func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || !strings.HasSuffix(r.URL.Path, "/task-42") {
				http.Error(w, "bad poll", http.StatusBadRequest)
				return
			}
			switch polls.Add(1) {
			case 1:
				_, _ = w.Write([]byte(envelope(40602, "task-42", `null`)))
			case 2:
				_, _ = w.Write([]byte(envelope(20000, "task-42", `[{"crawl_progress":"in_progress"}]`)))
			default:
				_, _ = w.Write([]byte(envelope(20000, "task-42", `[{"crawl_progress":"finished","crawl_status":{"pages_crawled":9},
"domain_info":{"cms":"wordpress","server":"nginx"},"page_metrics":{"onpage_score":91.2,"broken_links":3,"duplicate_title":2}}]`)))
			}
		},
	})
	h := newHarness(t, srv.URL, nil)
	p, _ := fastPoller(6)

	s, err := h.client.CrawlOnPage(context.Background(), meta, p, "example.com", 0)
	if err != nil {
		t.Fatalf("CrawlOnPage: %v", err)
	}
	if polls.Load() != 3 {
		t.Fatalf("polls = %d, want 3", polls.Load())
	}
	if s.CrawlProgress != "finished" || s.PagesCrawled != 9 || s.OnPageScore != 91.2 || s.BrokenLinks != 3 || s.CMS != "wordpress" {
		t.Fatalf("summary = %+v", s)
	}
	// one usage row per upstream call: post + 3 polls
	if n := len(h.usage.all()); n != 4 {
		t.Fatalf("usage rows = %d, want 4", n)
	}
}

func TestCrawlOnPage_TimesOut(t *testing.T) {
	t.Parallel()

	var polls atomic.Int32
	srv := routeServer(t, map[string]func(http.ResponseWriter, *http.Request){
		EndpointOnPageTaskPost: write(envelope(20100, "task-1", `null`)),
		EndpointOnPageSummary: func(w http.ResponseWriter, _ *http.Request) {
			polls.Add(1)
			_, _ = w.Write([]byte(envelope(20000, "task-1", `[{"crawl_progress":"in_progress"}]`)))
		},
	})
	h := newHarness(t, srv.URL, nil)
	p, slept := fastPoller(DefaultPollBudget)

	s, err := h.client.CrawlOnPage(context.Background(), meta, p, "example.com", 0)
	if !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("err = %v, want ErrPollTimeout", err)
	}
	if s != (OnPageSummary{}) {
		t.Fatalf("timed out crawl should yield the zero summary, got %+v", s)
	}
	if polls.Load() != DefaultPollBudget || len(*slept) != DefaultPollBudget {
		t.Fatalf("polls = %d sleeps = %d", polls.Load(), len(*slept))
	}
	var total time.Duration
	for _, d := range *slept {
		total += d
	}
	if total != time.Duration(DefaultPollBudget)*10*time.Second {
		t.Fatalf("total wait %v", total)
	}
}

func TestCrawlOnPage_FailingSummaryStaysWithinCeiling(t *testing.T) {
	t.Parallel()

	var polls atomic.Int32
	srv := routeServer(t, map[string]func(http.ResponseWriter, *http.Request){
		EndpointOnPageTaskPost: write(envelope(20100, "task-5", `null`)),
		EndpointOnPageSummary: func(w http.ResponseWriter, _ *http.Request) {
			polls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		},
	})

	// every check is one attempt, not a full retry loop
	h := newHarness(t, srv.URL, nil)
	p, _ := fastPoller(6)
	_, err := h.client.CrawlOnPage(context.Background(), meta, p, "example.com", 0)
	ge, ok := AsGatewayError(err)
	if !ok || ge.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("err = %v, want the last 503", err)
	}
	if polls.Load() != 6 {
		t.Fatalf("summary hits = %d, want 6", polls.Load())
	}
	if len(h.delays) != 0 {
		t.Fatalf("client retry sleeps = %v, want none", h.delays)
	}
	rows := h.usage.all()
	if len(rows) != 7 {
		t.Fatalf("usage rows = %d, want 7", len(rows))
	}
	for _, r := range rows[1:] {
		if r.Attempts != 1 || r.ResponseStatus != http.StatusServiceUnavailable {
			t.Fatalf("poll usage row = %+v", r)
		}
	}

	// with real waits the whole crawl ends near the poll ceiling
	polls.Store(0)
	h = newHarness(t, srv.URL, nil)
	rp := NewPoller(6, 20*time.Millisecond)
	start := time.Now()
	_, err = h.client.CrawlOnPage(context.Background(), meta, rp, "example.com", 0)
	elapsed := time.Since(start)
	if err == nil {
		t.Fatal("expected error")
	}
	if polls.Load() > 6 {
		t.Fatalf("summary hits = %d, above the budget", polls.Load())
	}
	if elapsed > rp.Ceiling()+500*time.Millisecond {
		t.Fatalf("crawl took %v, ceiling %v", elapsed, rp.Ceiling())
	}
}

func TestPostOnPageTask_MissingID(t *testing.T) {
	t.Parallel()

	srv := routeServer(t, map[string]func(http.ResponseWriter, *http.Request){
		EndpointOnPageTaskPost: write(envelope(20100, "", `null`)),
	})
	h := newHarness(t, srv.URL, nil)

	_, err := h.client.PostOnPageTask(context.Background(), meta, "example.com", 5)
	ge, ok := AsGatewayError(err)
	if !ok || ge.Kind != KindTask {
		t.Fatalf("got %v", err)
	}
}

func TestSERPOrganic_SplitsFeatures(t *testing.T) {
	t.Parallel()

	result := `[{"keyword":"coffee grinder","check_url":"https://www.google.com/search?q=coffee+grinder","se_results_count":1000000,
"item_types":["organic","people_also_ask","shopping"],
"items":[{"type":"organic","rank_group":1,"domain":"a.com","title":"A","url":"https://a.com"},
{"type":"people_also_ask","rank_group":1},
{"type":"organic","rank_group":2,"domain":"b.com","title":"B","url":"https://b.com"}]}]`
	srv := routeServer(t, map[string]func(http.ResponseWriter, *http.Request){
		EndpointSERPOrganic: write(envelope(20000, "t", result)),
	})
	h := newHarness(t, srv.URL, nil)

	s, err := h.client.SERPOrganic(context.Background(), meta, "coffee grinder", Locale{LocationCode: 2826, LanguageCode: "en"}, 20)
	if err != nil {
		t.Fatalf("SERPOrganic: %v", err)
	}
	if len(s.Items) != 2 || s.Items[1].Domain != "b.com" || s.Items[1].Position != 2 {
		t.Fatalf("items = %+v", s.Items)
	}
	if len(s.Features) != 2 || s.Features[0] != "people_also_ask" {
		t.Fatalf("features = %v", s.Features)
	}
}

func TestSearchVolume_Decodes(t *testing.T) {
	t.Parallel()

	result := `[{"keyword":"espresso","competition":"HIGH","competition_index":88,"search_volume":40500,"cpc":1.2,
"monthly_searches":[{"year":2026,"month":1,"search_volume":41000},{"year":2025,"month":12,"search_volume":null}]},
{"keyword":"ristretto","competition":null,"search_volume":null,"cpc":null,"monthly_searches":null}]`
	srv := routeServer(t, map[string]func(http.ResponseWriter, *http.Request){
		EndpointSearchVolume: write(envelope(20000, "t", result)),
	})
	h := newHarness(t, srv.URL, nil)

	rows, err := h.client.SearchVolume(context.Background(), meta, []string{"espresso", "ristretto"}, Locale{})
	if err != nil {
		t.Fatalf("SearchVolume: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].SearchVolume != 40500 || rows[0].Competition != "HIGH" || len(rows[0].MonthlySearches) != 2 || rows[0].MonthlySearches[1].SearchVolume != 0 {
		t.Fatalf("row 0 = %+v", rows[0])
	}
	if rows[1].SearchVolume != 0 || rows[1].MonthlySearches == nil {
		t.Fatalf("row 1 = %+v", rows[1])
	}
}

func TestDecodeResult_BadShape(t *testing.T) {
	t.Parallel()

	_, err := DecodeResult[backlinksSummaryRaw](Task{Result: []json.RawMessage{json.RawMessage(`"nope"`)}})
	ge, ok := AsGatewayError(err)
	if !ok || ge.Kind != KindDecode {
		t.Fatalf("got %v", err)
	}
}
