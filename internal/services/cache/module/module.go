// Package module wires the request cache; it mounts no routes
package module

import (
	"seogate/internal/modkit"
	"seogate/internal/modkit/httpkit"
	"seogate/internal/services/cache/domain"
	"seogate/internal/services/cache/repo"
	"seogate/internal/services/cache/service"
)

// Ports exposed by the cache module
type Ports struct {
	Cache domain.CachePort
	Prune domain.PrunePort
}

// Module implements the cache module
type Module struct {
	svc   *service.Service
	ports Ports
}

// New constructs the cache module; redis is used as a hot layer when deps.KV is set
func New(deps modkit.Deps) *Module {
	svc := service.New(deps.PG, repo.NewPG(), deps.KV, service.Config{
		TTL: deps.Cfg.Prefix("CACHE_").MayDuration("TTL", service.DefaultTTL),
	})
	return &Module{svc: svc, ports: Ports{Cache: svc, Prune: svc}}
}

// Cache returns the lookup and store port
func (m *Module) Cache() domain.CachePort { return m.ports.Cache }

// Name satisfies modkit.Module
func (m *Module) Name() string { return "cache" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(httpkit.Router) {}
