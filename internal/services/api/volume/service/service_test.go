package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"seogate/internal/adapters/dataforseo"
	perr "seogate/internal/platform/errors"
	"seogate/internal/platform/logger"
	"seogate/internal/services/api/volume/domain"
	cachedomain "seogate/internal/services/cache/domain"

	"github.com/rs/zerolog"
)

var rows = []dataforseo.VolumeRow{
	{Keyword: "crm", SearchVolume: 90500, CPC: 12.4, CompetitionIndex: 40},
	{Keyword: "rank tracker", SearchVolume: 2900, CPC: 8.1, CompetitionIndex: 70},
	{Keyword: "seo tools", SearchVolume: 18100, CPC: 5.5, CompetitionIndex: 90},
	{Keyword: "zebra crm", SearchVolume: 10, CPC: 0, CompetitionIndex: 0},
}

type fakeGateway struct {
	calls int
	got   []string
}

func (g *fakeGateway) SearchVolume(_ context.Context, _ dataforseo.Meta, kws []string, _ dataforseo.Locale) ([]dataforseo.VolumeRow, error) {
	g.calls++
	g.got = kws
	out := []dataforseo.VolumeRow{}
	for _, r := range rows {
		for _, k := range kws {
			if r.Keyword == k {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

type mapCache struct{ entries map[string]cachedomain.Entry }

func (c *mapCache) Lookup(_ context.Context, sum string) (cachedomain.Entry, cachedomain.Source, bool, error) {
	e, ok := c.entries[sum]
	return e, cachedomain.SourceShared, ok, nil
}

func (c *mapCache) LookupAnalysis(context.Context, string, string, string, string) (cachedomain.Entry, bool, error) {
	return cachedomain.Entry{}, false, nil
}

func (c *mapCache) Store(_ context.Context, sum, module string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.entries[sum] = cachedomain.Entry{Checksum: sum, Module: module, Payload: raw}
	return nil
}

type downCache struct{}

func (downCache) Lookup(context.Context, string) (cachedomain.Entry, cachedomain.Source, bool, error) {
	return cachedomain.Entry{}, "", false, errors.New("redis down")
}

func (downCache) LookupAnalysis(context.Context, string, string, string, string) (cachedomain.Entry, bool, error) {
	return cachedomain.Entry{}, false, nil
}

func (downCache) Store(context.Context, string, string, any) error { return errors.New("redis down") }

func newSvc() (*Svc, *fakeGateway) {
	gw := &fakeGateway{}
	s := New(gw, &mapCache{entries: map[string]cachedomain.Entry{}})
	s.now = func() time.Time { return time.Unix(0, 0) }
	return s, gw
}

func keywords(rs []dataforseo.VolumeRow) []string {
	out := []string{}
	for _, r := range rs {
		out = append(out, r.Keyword)
	}
	return out
}

func TestSearch_KeywordOrderSharesCache(t *testing.T) {
	t.Parallel()

	s, gw := newSvc()
	ctx := context.Background()
	if _, err := s.Search(ctx, "u1", domain.SearchInput{Keywords: []string{"SEO tools", "crm", "crm", "unknown kw"}}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !reflect.DeepEqual(gw.got, []string{"crm", "seo tools", "unknown kw"}) {
		t.Fatalf("gateway keywords = %v", gw.got)
	}
	res, err := s.Search(ctx, "u2", domain.SearchInput{Keywords: []string{"unknown kw", "seo tools", "CRM"}})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gw.calls != 1 || !res.Report.Cached {
		t.Fatalf("calls = %d cached = %v", gw.calls, res.Report.Cached)
	}
	if !reflect.DeepEqual(res.Report.Missing, []string{"unknown kw"}) {
		t.Fatalf("missing = %v", res.Report.Missing)
	}
}

func TestSearch_CustomMarketBypassesCache(t *testing.T) {
	t.Parallel()

	s, gw := newSvc()
	in := domain.SearchInput{Keywords: []string{"crm"}, LocationCode: 2826, LanguageCode: "en"}
	for i := 0; i < 2; i++ {
		res, err := s.Search(context.Background(), "u1", in)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if !reflect.DeepEqual(res.Warnings, []string{domain.WarnCacheBypass}) {
			t.Fatalf("warnings = %v", res.Warnings)
		}
	}
	if gw.calls != 2 {
		t.Fatalf("calls = %d, want 2", gw.calls)
	}
}

func TestSearch_SortFilterPage(t *testing.T) {
	t.Parallel()

	all := []string{"crm", "rank tracker", "seo tools", "zebra crm"}
	tests := []struct {
		name  string
		in    domain.SearchInput
		want  []string
		total int
	}{
		{"default volume desc", domain.SearchInput{}, []string{"crm", "seo tools", "rank tracker", "zebra crm"}, 4},
		{"cpc asc", domain.SearchInput{Sort: "cpc", Order: "asc"}, []string{"zebra crm", "seo tools", "rank tracker", "crm"}, 4},
		{"competition desc", domain.SearchInput{Sort: "competition"}, []string{"seo tools", "rank tracker", "crm", "zebra crm"}, 4},
		{"keyword defaults asc", domain.SearchInput{Sort: "keyword"}, []string{"crm", "rank tracker", "seo tools", "zebra crm"}, 4},
		{"min volume", domain.SearchInput{MinVolume: 3000}, []string{"crm", "seo tools"}, 2},
		{"second page", domain.SearchInput{Page: 2, PageSize: 3}, []string{"zebra crm"}, 4},
		{"past the end", domain.SearchInput{Page: 9, PageSize: 3}, []string{}, 4},
	}
	for _, tc := range tests {
		s, _ := newSvc()
		tc.in.Keywords = all
		res, err := s.Search(context.Background(), "u1", tc.in)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got := keywords(res.Report.Rows); !reflect.DeepEqual(got, tc.want) || res.Report.Total != tc.total {
			t.Errorf("%s: rows = %v total = %d, want %v %d", tc.name, got, res.Report.Total, tc.want, tc.total)
		}
	}
}

func TestSearch_BlankKeywords(t *testing.T) {
	t.Parallel()

	s, gw := newSvc()
	_, err := s.Search(context.Background(), "u1", domain.SearchInput{Keywords: []string{" ", "\t"}})
	if perr.CodeOf(err) != perr.ErrorCodeInvalidArgument || gw.calls != 0 {
		t.Fatalf("err = %v calls = %d", err, gw.calls)
	}
}

func TestSearch_DegradedCacheLogsCarryRequestID(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	s := New(gw, downCache{})
	var buf bytes.Buffer
	s.log = zerolog.New(&buf)

	ctx := logger.WithRequest(context.Background(), "req-7", "u1")
	res, err := s.Search(ctx, "u1", domain.SearchInput{Keywords: []string{"crm"}})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gw.calls != 1 || res.Report.Cached {
		t.Fatalf("calls = %d cached = %v", gw.calls, res.Report.Cached)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want a read and a write warning, got %q", lines)
	}
	for _, l := range lines {
		if !strings.Contains(l, `"request_id":"req-7"`) || !strings.Contains(l, `"caller_id":"u1"`) {
			t.Fatalf("log line lacks request context: %s", l)
		}
	}
}
