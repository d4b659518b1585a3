// Package version reports what build is running
package version

import (
	"runtime/debug"
	"sync"
)

// BuildInfo holds version information about the service build.
type BuildInfo struct {
	Service string `json:"service" example:"seogate-api"`
	Version string `json:"version" example:"v0.4.0"`
	Commit  string `json:"commit"  example:"3f9c2ab"`
	Date    string `json:"date"    example:"2026-10-01"`
}

// set with -ldflags "-X seogate/internal/core/version.version=v0.4.0 -X ...commit=3f9c2ab -X ...date=2026-10-01"
var (
	version = "dev"
	commit  = ""
	date    = "unknown"
)

// vcsCommit falls back to the revision the go toolchain stamps into module builds
var vcsCommit = sync.OnceValue(func() string {
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return shortSHA(s.Value)
			}
		}
	}
	return "none"
})

func shortSHA(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}

// Info returns the build information; ldflags win over embedded vcs data
func Info() BuildInfo {
	c := shortSHA(commit)
	if c == "" {
		c = vcsCommit()
	}
	return BuildInfo{Service: "seogate-api", Version: version, Commit: c, Date: date}
}
