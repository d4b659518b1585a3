package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"seogate/internal/modkit"
	"seogate/internal/modkit/module"
	"seogate/internal/platform/config"
	"seogate/internal/platform/logger"
	"seogate/internal/platform/store"

	cachedomain "seogate/internal/services/cache/domain"
	cachemod "seogate/internal/services/cache/module"
	cachesvc "seogate/internal/services/cache/service"
)

func main() {
	root := config.New()
	dbCfg := root.Prefix("SERVICE_PGSQL_")

	l := logger.Get()

	// Flags
	var (
		fCache    = flag.Bool("prune-cache", false, "delete shared cache rows older than -older-than")
		fAnalysis = flag.Bool("prune-analysis", false, "delete legacy analysis_cache rows older than -older-than")
		fOlder    = flag.Duration("older-than", cachesvc.DefaultTTL, "age threshold, rows created before now-older-than are pruned")
		fDryRun   = flag.Bool("dry-run", false, "count matching rows without deleting")
	)
	flag.Parse()

	if !*fCache && !*fAnalysis {
		l.Panic().Msg("janitor: nothing to do, pass -prune-cache and/or -prune-analysis")
	}
	if *fOlder <= 0 {
		l.Panic().Dur("older_than", *fOlder).Msg("janitor: -older-than must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		AppName: "seogate-janitor",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         dbCfg.MustString("DBURL"),
			MaxConns:    int32(dbCfg.MayInt("MAX_CONNS", 2)),
			SlowQueryMs: dbCfg.MayInt("SLOW_MS", 500),
			LogSQL:      dbCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// Shared deps, no redis: hot entries expire on their own TTL
	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		Log: *l,
	}

	cm := cachemod.New(deps)
	module.Register(cm.Name(), cm.Ports())
	prune := module.MustPortsOf[cachedomain.PrunePort](cm)

	started := time.Now()
	if *fCache {
		n, err := prune.PruneCache(ctx, *fOlder, *fDryRun)
		if err != nil {
			l.Fatal().Err(err).Msg("prune cache failed")
		}
		l.Info().Int64("rows", n).Bool("dry_run", *fDryRun).Dur("older_than", *fOlder).Msg("cache pruned")
	}
	if *fAnalysis {
		n, err := prune.PruneAnalysis(ctx, *fOlder, *fDryRun)
		if err != nil {
			l.Fatal().Err(err).Msg("prune analysis_cache failed")
		}
		l.Info().Int64("rows", n).Bool("dry_run", *fDryRun).Dur("older_than", *fOlder).Msg("analysis_cache pruned")
	}
	l.Info().Dur("took", time.Since(started)).Msg("janitor done")
}
