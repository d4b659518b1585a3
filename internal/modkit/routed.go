package modkit

import (
	"seogate/internal/modkit/httpkit"
	str "seogate/internal/platform/strings"
)

// Routed is a Module that mounts a single register func under its prefix
type Routed struct {
	b        Built
	ports    any
	register func(httpkit.Router)
}

// NewRouted wraps a built config, the ports to expose and the route registration
func NewRouted(b Built, ports any, register func(httpkit.Router)) *Routed {
	return &Routed{b: b, ports: ports, register: register}
}

// MountRoutes mounts the module under its prefix with its own middleware
func (m *Routed) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.Prefix(), m.b.Mw, m.register)
}

// Name returns the module name
func (m *Routed) Name() string { return str.MustString(m.b.Name, "module name") }

// Prefix returns the module route prefix
func (m *Routed) Prefix() string { return str.MustPrefix(m.b.Prefix) }

// Ports returns the module ports
func (m *Routed) Ports() any { return m.ports }
