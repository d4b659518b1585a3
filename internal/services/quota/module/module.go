// Package module wires the quota gate; it mounts no routes
package module

import (
	"seogate/internal/modkit"
	"seogate/internal/modkit/httpkit"
	"seogate/internal/services/quota/domain"
	"seogate/internal/services/quota/repo"
	"seogate/internal/services/quota/service"
)

// Ports exposed by the quota module
type Ports struct {
	Gate domain.GatePort
}

// Module implements the quota module
type Module struct {
	ports Ports
}

// New constructs the quota module from QUOTA_* settings
func New(deps modkit.Deps) *Module {
	c := deps.Cfg.Prefix("QUOTA_")
	svc := service.New(deps.PG, repo.NewPG(), service.Config{
		Limits: map[domain.Class]int{
			domain.ClassCompetitorReport: c.MayInt("FREE_COMPETITOR_REPORTS", service.DefaultFreeReports),
		},
		Window: c.MayDuration("WINDOW", service.DefaultWindow),
	})
	return &Module{ports: Ports{Gate: svc}}
}

// Gate returns the quota port
func (m *Module) Gate() domain.GatePort { return m.ports.Gate }

// Name satisfies modkit.Module
func (m *Module) Name() string { return "quota" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(httpkit.Router) {}
