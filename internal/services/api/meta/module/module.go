// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	modkit "seogate/internal/modkit"
	"seogate/internal/modkit/httpkit"
	"seogate/internal/modkit/module"

	metahttp "seogate/internal/services/api/meta/http"
)

// New constructs the meta module. Gateway settings are optional, pass them with
// modkit.WithPorts(metahttp.GatewayInfo{...}); the module exposes no ports itself.
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	gw, _ := b.Ports.(metahttp.GatewayInfo)
	d := metahttp.Deps{
		ServiceName: "seogate-api",
		StartedAt:   time.Now(),
		PG:          deps.PG,
		KV:          deps.KV,
		CH:          deps.CH,
		Gateway:     gw,
		Modules:     module.Names,
	}
	return modkit.NewRouted(b, nil, func(r httpkit.Router) { metahttp.Register(r, d) })
}
