// Package http serves the unauthenticated meta routes: liveness, readiness,
// build and gateway settings
package http

import (
	"context"
	"net/http"
	"time"

	"seogate/internal/core/version"
	"seogate/internal/modkit/httpkit"

	"golang.org/x/sync/errgroup"
)

// readyTimeout bounds the whole readiness probe
const readyTimeout = 2 * time.Second

// Pinger is satisfied by store seams that can report readiness
type Pinger interface {
	Ping(context.Context) error
}

// Deps are the handler dependencies. PG is required for readiness, KV and CH are optional
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
	KV          any
	CH          any
	Gateway     GatewayInfo

	// Modules lists the mounted modules, read per request since meta mounts first
	Modules func() []string
}

// GatewayInfo describes the upstream client configuration, never its secrets
type GatewayInfo struct {
	BaseURL        string `json:"base_url"        example:"https://api.dataforseo.com/v3"`
	HasCredentials bool   `json:"has_credentials" example:"true"`
	MaxRetries     int    `json:"max_retries"     example:"3"`
	PollBudget     int    `json:"poll_budget"     example:"6"`
	PollInterval   string `json:"poll_interval"   example:"10s"`
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	now := func() time.Time { return time.Now().UTC() }
	started := d.StartedAt.UTC().Format(time.RFC3339)

	httpkit.Get(r, "/health", func(*http.Request) (any, error) {
		return HealthResponse{OK: true, Service: d.ServiceName, Started: started, Now: now().Format(time.RFC3339)}, nil
	})
	httpkit.Get(r, "/ready", func(r *http.Request) (any, error) {
		return probe(r.Context(), d, now()), nil
	})
	httpkit.Get(r, "/version", func(*http.Request) (any, error) {
		return version.Info(), nil
	})
	httpkit.Get(r, "/service", func(*http.Request) (any, error) {
		out := ServiceResponse{Name: d.ServiceName, Started: started, Uptime: int64(time.Since(d.StartedAt) / time.Second), Modules: []string{}}
		if d.Modules != nil {
			out.Modules = d.Modules()
		}
		return out, nil
	})
	httpkit.Get(r, "/gateway", func(*http.Request) (any, error) {
		return GatewayResponse{Gateway: d.Gateway, Build: version.Info()}, nil
	})
}

// HealthResponse is the liveness payload
// @Description GET /meta/health
type HealthResponse struct {
	OK      bool   `json:"ok"       example:"true"`
	Service string `json:"service"  example:"seogate-api"`
	Started string `json:"started"  example:"2026-03-01T13:00:00Z"`
	Now     string `json:"now"      example:"2026-03-01T13:05:00Z"`
}

// ReadyCheck is one backend probe, Status is ok, fail, skipped or unknown
type ReadyCheck struct {
	Name   string `json:"name"   example:"pg"`
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432: connect: connection refused"`
}

// ReadyResponse summarizes readiness, Status is ok, degraded or fail
// @Description GET /meta/ready
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2026-03-01T13:05:00Z"`
}

// ServiceResponse describes service info
// @Description GET /meta/service
type ServiceResponse struct {
	Name    string   `json:"name"    example:"seogate-api"`
	Started string   `json:"started" example:"2026-03-01T13:00:00Z"`
	Uptime  int64    `json:"uptime"  example:"300"`
	Modules []string `json:"modules" example:"cache,competitor,meta"`
}

// GatewayResponse reports how the upstream client is configured
// @Description GET /meta/gateway
type GatewayResponse struct {
	Gateway GatewayInfo       `json:"gateway"`
	Build   version.BuildInfo `json:"build"`
}

// probe pings the backends concurrently. Redis and clickhouse may be absent,
// postgres may not; any failed ping fails the whole probe
func probe(ctx context.Context, d Deps, now time.Time) ReadyResponse {
	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()

	backends := []struct {
		name string
		seam any
	}{{"pg", d.PG}, {"redis", d.KV}, {"ch", d.CH}}

	checks := make([]ReadyCheck, len(backends))
	var g errgroup.Group
	for i, b := range backends {
		g.Go(func() error {
			checks[i] = ping(ctx, b.name, b.seam)
			return nil
		})
	}
	_ = g.Wait()

	status := "ok"
	for i, c := range checks {
		switch {
		case c.Status == "fail":
			return ReadyResponse{Status: "fail", Checks: checks, Now: now.Format(time.RFC3339)}
		case c.Status == "unknown", i == 0 && c.Status != "ok":
			status = "degraded"
		}
	}
	return ReadyResponse{Status: status, Checks: checks, Now: now.Format(time.RFC3339)}
}

func ping(ctx context.Context, name string, seam any) ReadyCheck {
	if seam == nil {
		return ReadyCheck{Name: name, Status: "skipped"}
	}
	p, ok := seam.(Pinger)
	if !ok {
		return ReadyCheck{Name: name, Status: "unknown"}
	}
	if err := p.Ping(ctx); err != nil {
		return ReadyCheck{Name: name, Status: "fail", Error: err.Error()}
	}
	return ReadyCheck{Name: name, Status: "ok"}
}
