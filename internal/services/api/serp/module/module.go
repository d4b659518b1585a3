// Package module wires SERP analysis into the API using modkit
package module

import (
	modkit "seogate/internal/modkit"
	"seogate/internal/modkit/httpkit"
	serpdomain "seogate/internal/services/api/serp/domain"
	serphttp "seogate/internal/services/api/serp/http"
	serpsvc "seogate/internal/services/api/serp/service"
	cachedomain "seogate/internal/services/cache/domain"
)

// Ports are the collaborators the module needs
type Ports struct {
	Gateway serpdomain.Gateway
	Cache   cachedomain.CachePort
}

// New constructs the serp module; Ports must be supplied with modkit.WithPorts
func New(_ modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("serp"), modkit.WithPrefix("/serp")}, opts...)...)
	ports := modkit.MustPorts[Ports](b)
	svc := serpsvc.New(ports.Gateway, ports.Cache)
	return modkit.NewRouted(b, ports, func(r httpkit.Router) { serphttp.Register(r, svc) })
}
