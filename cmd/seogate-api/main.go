// @title         SEOGate API
// @version       0.1.0
// @description   DataForSEO gateway: competitor reports, SERP lookups and search volume
// @securityDefinitions.apikey BearerAuth
// @in            header
// @name          Authorization

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"seogate/internal/modkit/httpkit"
	"seogate/internal/modkit/repokit"
	"seogate/internal/platform/auth"
	"seogate/internal/platform/config"
	"seogate/internal/platform/logger"
	phttp "seogate/internal/platform/net/http"
	"seogate/internal/platform/net/middleware"
	"seogate/internal/platform/store"

	"seogate/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (SEOGATE_API_*)
	root := config.New()
	apiCfg := root.Prefix("SEOGATE_API_")

	pgCfg := root.Prefix("SERVICE_PGSQL_")      // pgCfg lives under SERVICE_PGSQL_*
	rdsCfg := root.Prefix("SERVICE_REDIS_")     // rdsCfg lives under SERVICE_REDIS_*
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_") // chCfg lives under SERVICE_CLICKHOUSE_*
	// bring up logging early
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// postgres is required, redis and clickhouse are optional accelerators
	cfg := store.Config{
		AppName: "seogate-api",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 8)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		RDS: store.RedisConfig{
			Enabled: rdsCfg.MayBool("ENABLED", false),
		},
		CH: store.CHConfig{
			Enabled: chCfg.MayBool("ENABLED", false),
		},
	}
	if cfg.RDS.Enabled {
		cfg.RDS.URL = rdsCfg.MustString("URL")
	}
	if cfg.CH.Enabled {
		cfg.CH.URL = chCfg.MustString("DBURL")
	}

	st, err := store.Open(ctx, cfg, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	if pgCfg.MayBool("MIGRATE", false) {
		if err := store.Migrate(ctx, st.PG); err != nil {
			l.Panic().Err(err).Msg("schema migration failed")
		}
		l.Info().Msg("schema migrated")
	}

	// supabase access tokens; without a secret every feature call answers with an auth failure
	var authPort middleware.AuthPort
	if secret := apiCfg.MayString("JWT_SECRET", ""); secret != "" {
		v, err := auth.NewVerifier(auth.Config{
			Secret:   secret,
			Audience: apiCfg.MayString("JWT_AUDIENCE", "authenticated"),
			Leeway:   30 * time.Second,
		})
		if err != nil {
			l.Panic().Err(err).Msg("jwt verifier")
		}
		authPort = httpkit.NewPortFunc(v.TokenFunc())
	}

	gw, budget, interval := api.GatewayFromConfig(root)

	// http server (reads SEOGATE_API_PORT)
	srv := phttp.NewServer(apiCfg)

	// mount our API
	api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
			RequestTimeout: apiCfg.MayDuration("REQUEST_TIMEOUT", httpkit.DefaultRequestTimeout),
			Gateway:        gw,
			PollBudget:     budget,
			PollInterval:   interval,
			Auth:           authPort,
		},
	)

	// serves until SIGINT or SIGTERM, then drains
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
	l.Info().Msg("http server stopped")
}
