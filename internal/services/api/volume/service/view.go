package service

import (
	"sort"
	"strings"

	"seogate/internal/adapters/dataforseo"
	"seogate/internal/services/api/volume/domain"
)

// viewOf fills the defaults of the sort, order and paging fields
func viewOf(in domain.SearchInput) domain.View {
	v := domain.View{
		Sort:      in.Sort,
		Order:     in.Order,
		MinVolume: in.MinVolume,
		Page:      in.Page,
		PageSize:  in.PageSize,
	}
	if v.Sort == "" {
		v.Sort = domain.SortSearchVolume
	}
	if v.Order == "" {
		v.Order = "desc"
		if v.Sort == domain.SortKeyword {
			v.Order = "asc"
		}
	}
	if v.Page < 1 {
		v.Page = 1
	}
	if v.PageSize < 1 {
		v.PageSize = domain.DefaultPageSize
	}
	return v
}

// apply filters rows by volume, sorts them and cuts the requested page.
// It returns the page and the filtered total.
func apply(rows []dataforseo.VolumeRow, v domain.View) ([]dataforseo.VolumeRow, int) {
	kept := make([]dataforseo.VolumeRow, 0, len(rows))
	for _, r := range rows {
		if r.SearchVolume >= v.MinVolume {
			kept = append(kept, r)
		}
	}

	less := lessFor(v.Sort)
	desc := v.Order == "desc"
	sort.SliceStable(kept, func(i, j int) bool {
		if desc {
			return less(kept[j], kept[i])
		}
		return less(kept[i], kept[j])
	})

	total := len(kept)
	start := (v.Page - 1) * v.PageSize
	if start >= total {
		return []dataforseo.VolumeRow{}, total
	}
	end := min(start+v.PageSize, total)
	return kept[start:end], total
}

func lessFor(key string) func(a, b dataforseo.VolumeRow) bool {
	switch key {
	case domain.SortCPC:
		return func(a, b dataforseo.VolumeRow) bool { return a.CPC < b.CPC }
	case domain.SortCompetition:
		return func(a, b dataforseo.VolumeRow) bool { return a.CompetitionIndex < b.CompetitionIndex }
	case domain.SortKeyword:
		return func(a, b dataforseo.VolumeRow) bool { return strings.Compare(a.Keyword, b.Keyword) < 0 }
	default:
		return func(a, b dataforseo.VolumeRow) bool { return a.SearchVolume < b.SearchVolume }
	}
}

// missing lists requested keywords the upstream returned no row for
func missing(requested []string, rows []dataforseo.VolumeRow) []string {
	have := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		have[r.Keyword] = struct{}{}
	}
	out := []string{}
	for _, k := range requested {
		if _, ok := have[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}
