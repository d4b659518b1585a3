// Package module wires competitor reports into the API using modkit
package module

import (
	"seogate/internal/adapters/dataforseo"
	modkit "seogate/internal/modkit"
	"seogate/internal/modkit/httpkit"
	compdomain "seogate/internal/services/api/competitor/domain"
	comphttp "seogate/internal/services/api/competitor/http"
	compsvc "seogate/internal/services/api/competitor/service"
	cachedomain "seogate/internal/services/cache/domain"
	quotadomain "seogate/internal/services/quota/domain"
)

// Ports are the collaborators the module needs from the rest of the process
type Ports struct {
	Gateway compdomain.Gateway
	Cache   cachedomain.CachePort
	Quota   quotadomain.GatePort
	Poller  *dataforseo.Poller
}

// New constructs the competitor module; Ports must be supplied with modkit.WithPorts.
// DATAFORSEO_CRAWL_PAGES caps the on-page crawl per domain.
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("competitor"), modkit.WithPrefix("/competitor")}, opts...)...)
	ports := modkit.MustPorts[Ports](b)

	svc := compsvc.New(compsvc.Config{
		Gateway:    ports.Gateway,
		Cache:      ports.Cache,
		Quota:      ports.Quota,
		Poller:     ports.Poller,
		CrawlPages: deps.Cfg.Prefix("DATAFORSEO_").MayInt("CRAWL_PAGES", dataforseo.DefaultCrawlPages),
	})
	return modkit.NewRouted(b, ports, func(r httpkit.Router) { comphttp.Register(r, svc) })
}
