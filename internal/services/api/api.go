// Package api provides the HTTP API for the application
package api

import (
	"time"

	"seogate/internal/adapters/dataforseo"
	"seogate/internal/platform/config"
	"seogate/internal/platform/logger"
	phttp "seogate/internal/platform/net/http"
	"seogate/internal/platform/net/middleware"
	"seogate/internal/platform/store"

	"seogate/internal/modkit"
	"seogate/internal/modkit/httpkit"
	"seogate/internal/modkit/module"
	"seogate/internal/modkit/swaggerkit"

	compmod "seogate/internal/services/api/competitor/module"
	metahttp "seogate/internal/services/api/meta/http"
	metamod "seogate/internal/services/api/meta/module"
	serpmod "seogate/internal/services/api/serp/module"
	volumemod "seogate/internal/services/api/volume/module"
	cachemod "seogate/internal/services/cache/module"
	quotamod "seogate/internal/services/quota/module"
	usagemod "seogate/internal/services/usage/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
	RequestTimeout time.Duration

	// Gateway configures the DataForSEO client; Usage is filled in by Mount
	Gateway      dataforseo.Options
	PollBudget   int
	PollInterval time.Duration

	// Auth resolves bearer tokens for feature routes. nil leaves every caller anonymous,
	// which feature handlers answer with an auth stage failure
	Auth middleware.AuthPort
}

// GatewayFromConfig reads the DATAFORSEO_ view into client options and the poll budget
func GatewayFromConfig(c config.Conf) (dataforseo.Options, int, time.Duration) {
	d := c.Prefix("DATAFORSEO_")
	o := dataforseo.Options{
		BaseURL:        d.MayString("BASE_URL", "https://api.dataforseo.com/v3"),
		Login:          d.MayString("LOGIN", ""),
		Password:       d.MayString("PASSWORD", ""),
		AttemptTimeout: d.MayDuration("ATTEMPT_TIMEOUT", 60*time.Second),
		MaxRetries:     d.MayInt("MAX_RETRIES", dataforseo.MaxRetries),
		RPS:            d.MayFloat64("RPS", 30),
		Burst:          d.MayInt("BURST", 10),
	}
	if o.MaxRetries == 0 {
		// an explicit 0 turns retries off; the client reads 0 as "use the default"
		o.MaxRetries = -1
	}
	budget := d.MayInt("POLL_BUDGET", dataforseo.DefaultPollBudget)
	interval := d.MayDuration("POLL_INTERVAL", dataforseo.DefaultPollInterval)
	return o, budget, interval
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	log := logger.Get()
	if opt.Logger != nil {
		log = opt.Logger
	}

	// shared deps for modules
	deps := modkit.Deps{
		Log: *log,
		Cfg: opt.Config,
	}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
		deps.KV = opt.Store.KV
		deps.CH = opt.Store.CH
	}

	// infrastructure modules first, their ports feed the feature modules
	usage := usagemod.New(deps)
	cache := cachemod.New(deps)
	quota := quotamod.New(deps)

	gwOpts := opt.Gateway
	gwOpts.Usage = usage.Sink()
	if gwOpts.Logger == nil {
		gwOpts.Logger = logger.Named("dataforseo")
	}
	client := dataforseo.NewClient(gwOpts)
	poller := dataforseo.NewPoller(opt.PollBudget, opt.PollInterval)

	var guard []modkit.Option
	if opt.Auth != nil {
		guard = append(guard, modkit.WithMiddlewares(httpkit.AuthResult(opt.Auth)))
	} else {
		log.Warn().Msg("no token verifier configured, feature routes will reject every caller")
	}

	mods := []module.Module{
		metamod.New(deps, modkit.WithPorts(metahttp.GatewayInfo{
			BaseURL:        client.BaseURL(),
			HasCredentials: client.HasCredentials(),
			MaxRetries:     client.MaxRetries(),
			PollBudget:     poller.Budget,
			PollInterval:   poller.Interval.String(),
		})),
		compmod.New(deps, append([]modkit.Option{modkit.WithPorts(compmod.Ports{
			Gateway: client,
			Cache:   cache.Cache(),
			Quota:   quota.Gate(),
			Poller:  poller,
		})}, guard...)...),
		serpmod.New(deps, append([]modkit.Option{modkit.WithPorts(serpmod.Ports{
			Gateway: client,
			Cache:   cache.Cache(),
		})}, guard...)...),
		volumemod.New(deps, append([]modkit.Option{modkit.WithPorts(volumemod.Ports{
			Gateway: client,
			Cache:   cache.Cache(),
		})}, guard...)...),
		usage,
		cache,
		quota,
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStackTimeout(opt.RequestTimeout), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}
