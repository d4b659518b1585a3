package normalize

import (
	"net"
	"strings"

	perr "seogate/internal/platform/errors"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

var hostProfile = idna.New(
	idna.MapForLookup(),
	idna.Transitional(false),
	idna.StrictDomainName(true),
)

// Domain reduces a user supplied domain or URL to its bare host:
// scheme, credentials, path, query, fragment, port and a leading "www." are removed,
// the host is lower cased and IDNA encoded. "https://WWW.Rival.org:443/path?q=1" becomes "rival.org".
// The result must sit under a public suffix.
func Domain(in string) (string, error) {
	s := strings.TrimSpace(Sanitize(in))
	if s == "" {
		return "", perr.InvalidArgf("domain is empty")
	}
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	s = strings.TrimPrefix(s, "//")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndexByte(s, '@'); i >= 0 {
		s = s[i+1:]
	}
	if h, _, err := net.SplitHostPort(s); err == nil {
		s = h
	}
	s = strings.TrimSuffix(s, ".")
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return "", perr.InvalidArgf("domain %q is not a host name", in)
	}

	host, err := hostProfile.ToASCII(s)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "domain %q is not a valid host name", in)
	}
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	if net.ParseIP(host) != nil {
		return "", perr.InvalidArgf("domain %q is an IP address", in)
	}
	if _, err := publicsuffix.EffectiveTLDPlusOne(host); err != nil {
		return "", perr.InvalidArgf("domain %q has no registrable part", in)
	}
	return host, nil
}

// RegistrableDomain returns the eTLD+1 of a normalized host, e.g. "blog.example.co.uk" -> "example.co.uk"
func RegistrableDomain(host string) string {
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return d
}

// SameSite reports whether two normalized hosts share a registrable domain
func SameSite(a, b string) bool {
	return RegistrableDomain(a) == RegistrableDomain(b)
}
