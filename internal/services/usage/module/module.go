// Package module wires the usage log; it mounts no routes
package module

import (
	"context"
	"time"

	"seogate/internal/adapters/dataforseo"
	"seogate/internal/modkit"
	"seogate/internal/modkit/httpkit"
	"seogate/internal/services/usage/domain"
	"seogate/internal/services/usage/repo"
	"seogate/internal/services/usage/service"
)

// Ports exposed by the usage module
type Ports struct {
	Logger domain.LoggerPort
}

// Module implements the usage module
type Module struct {
	svc   *service.Service
	ports Ports
}

// New constructs the usage module. The clickhouse mirror is used when deps.CH is set
func New(deps modkit.Deps) *Module {
	var mirror service.Mirror
	if m := repo.NewMirror(deps.CH); m != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.EnsureTable(ctx); err != nil {
			deps.Log.Warn().Err(err).Msg("usage_events table unavailable, mirror disabled")
		} else {
			mirror = m
		}
	}
	binder := repo.NewPG()
	svc := service.New(deps.PG, binder, mirror, service.Config{
		WriteTimeout: deps.Cfg.Prefix("USAGE_").MayDuration("WRITE_TIMEOUT", 5*time.Second),
	})
	return &Module{svc: svc, ports: Ports{Logger: svc}}
}

// Sink adapts the usage log to the gateway's UsageSink
func (m *Module) Sink() dataforseo.UsageSink {
	return dataforseo.UsageFunc(func(ctx context.Context, u dataforseo.Usage) {
		m.svc.TryLog(ctx, FromGateway(u))
	})
}

// FromGateway converts a gateway usage record into a log entry
func FromGateway(u dataforseo.Usage) domain.Entry {
	return domain.Entry{
		CorrelationID:  u.CorrelationID,
		CallerID:       u.CallerID,
		Module:         u.Module,
		Endpoint:       u.Endpoint,
		RequestPayload: u.RequestPayload,
		ResponseStatus: u.ResponseStatus,
		Attempts:       u.Attempts,
		CreditsUsed:    u.CreditsUsed,
		CostUSD:        u.CostUSD,
		ErrorMessage:   u.ErrorMessage,
		Duration:       u.Duration,
	}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "usage" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(httpkit.Router) {}
