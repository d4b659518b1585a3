// Package module wires keyword volume lookups into the API using modkit
package module

import (
	modkit "seogate/internal/modkit"
	"seogate/internal/modkit/httpkit"
	voldomain "seogate/internal/services/api/volume/domain"
	volhttp "seogate/internal/services/api/volume/http"
	volsvc "seogate/internal/services/api/volume/service"
	cachedomain "seogate/internal/services/cache/domain"
)

// Ports are the collaborators the module needs
type Ports struct {
	Gateway voldomain.Gateway
	Cache   cachedomain.CachePort
}

// New constructs the volume module
func New(_ modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("volume"), modkit.WithPrefix("/volume")}, opts...)...)
	ports := modkit.MustPorts[Ports](b)
	svc := volsvc.New(ports.Gateway, ports.Cache)
	return modkit.NewRouted(b, ports, func(r httpkit.Router) { volhttp.Register(r, svc) })
}
