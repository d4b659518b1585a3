// Package normalize canonicalizes the user supplied inputs that key upstream calls
// and cache entries. Keywords go through NFKC, case folding, format character
// removal and width folding, then whitespace is collapsed. Domains are reduced
// to a bare lower case ASCII host, see Domain.
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// chains holds reusable transformer chains, each one is stateful
var chains = sync.Pool{New: func() any {
	return transform.Chain(norm.NFKC, cases.Fold(), runes.Remove(runes.In(unicode.Cf)), width.Fold)
}}

func fold(s string) string {
	t := chains.Get().(transform.Transformer)
	defer chains.Put(t)
	t.Reset()
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Keyword returns the canonical form of a search keyword, "" when nothing printable remains
func Keyword(s string) string {
	if s = Sanitize(s); s == "" {
		return ""
	}
	return strings.Join(strings.Fields(fold(s)), " ")
}

// Keywords normalizes a keyword list, dropping blanks and duplicates while keeping first-seen order
func Keywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, raw := range in {
		if k := Keyword(raw); k != "" && !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// Sanitize removes invalid UTF-8 and control runes. Tab, CR and LF survive
// since later whitespace collapsing handles them
func Sanitize(s string) string {
	s = strings.ToValidUTF8(s, "")
	if strings.IndexFunc(s, isControl) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isControl(r) {
			return -1
		}
		return r
	}, s)
}

// isControl covers C0 (minus whitespace), DEL and C1
func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return r < 0x20 || (r >= 0x7F && r <= 0x9F)
}
