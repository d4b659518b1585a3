package ch

import (
	"os"
	"runtime"
	"strings"

	"seogate/internal/core/version"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// BuildClientInfo identifies this process in system.query_log. role is the binary
// ("api", "janitor"); an empty tag reports the build version
func BuildClientInfo(role, tag string) clickhouse.ClientInfo {
	b := version.Info()
	if tag = strings.TrimSpace(tag); tag == "" {
		tag = b.Version
	}
	host, _ := os.Hostname()

	info := clickhouse.ClientInfo{}
	for _, p := range [][2]string{
		{"seogate", tag},
		{"role", role},
		{"go", runtime.Version()},
		{"commit", b.Commit},
		{"host", host},
	} {
		info.Products = append(info.Products, struct{ Name, Version string }{p[0], strings.TrimSpace(p[1])})
	}
	return info
}
