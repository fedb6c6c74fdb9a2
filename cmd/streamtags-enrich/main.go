// @title         Streamtags Enrichment API
// @version       0.1.0
// @description   Enrichment run control and service metadata

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"streamtags/internal/core/version"
	"streamtags/internal/modkit"
	"streamtags/internal/modkit/module"
	"streamtags/internal/modkit/repokit"
	"streamtags/internal/platform/config"
	perr "streamtags/internal/platform/errors"
	"streamtags/internal/platform/logger"
	"streamtags/internal/platform/metrics"
	phttp "streamtags/internal/platform/net/http"
	"streamtags/internal/platform/store"

	"streamtags/internal/services/api"
	"streamtags/internal/services/enrichment/domain"
	enrichmod "streamtags/internal/services/enrichment/module"
	"streamtags/internal/services/enrichment/repo"
	"streamtags/internal/services/enrichment/service"
	metamod "streamtags/internal/services/meta/module"
)

const (
	modeEnrich  = "enrich"
	modeAnalyze = "analyze"
	modeServe   = "serve"
)

func main() {
	root := config.New()
	o := enrichmod.FromConfig(root)

	var (
		fMode     = flag.String("mode", modeEnrich, "enrich | analyze | serve")
		fDryRun   = flag.Bool("dry-run", o.DryRun, "report proposals without writing")
		fPlatform = flag.String("platform", o.Platform, "only process records of this platform")
		fBatch    = flag.Int("batch", o.BatchSize, "records per page")
		fLimit    = flag.Int("limit", 0, "stop after this many records (0 = all)")
		fOnly     = flag.Bool("only-unenriched", false, "skip records already stamped by a previous run")
		fSamples  = flag.Int("samples", service.DefaultSampleSize, "analyze: sample results to report")
		fJSON     = flag.Bool("json", false, "print the report as JSON")
		fVersion  = flag.Bool("version", false, "print build info and exit")
	)
	flag.Parse()

	if *fVersion {
		_ = writeJSON(os.Stdout, version.Info())
		return
	}

	lo := logger.FromEnv()
	lo.Writer = os.Stderr
	if lo.Service == "" {
		lo.Service = version.Service
	}
	logger.Init(lo)
	l := logger.Get()

	o.DryRun = *fDryRun
	o.Platform = *fPlatform
	o.BatchSize = *fBatch

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, root, o, *fMode, cliOptions{
		limit:   *fLimit,
		only:    *fOnly,
		samples: *fSamples,
		json:    *fJSON,
	})
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		l.Warn().Msg("interrupted")
		os.Exit(130)
	default:
		l.Error().Err(err).Str("mode", *fMode).Msg("streamtags-enrich failed")
		os.Exit(1)
	}
}

type cliOptions struct {
	limit   int
	only    bool
	samples int
	json    bool
}

func run(ctx context.Context, root config.Conf, o enrichmod.Options, mode string, cli cliOptions) error {
	l := logger.Get()
	switch mode {
	case modeEnrich, modeAnalyze, modeServe:
	default:
		return perr.InvalidArgf("unknown -mode %q", mode)
	}

	st, err := openStore(ctx, root, o.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)
	if st.Lite != nil {
		err := repokit.WithTx(ctx, st.Lite, func(q repokit.Queryer) error {
			return repo.EnsureLiteSchema(ctx, q)
		})
		if err != nil {
			return err
		}
	}
	if st.CH != nil {
		if err := repo.EnsureAuditSchema(ctx, st.CH); err != nil {
			return err
		}
	}

	col, err := metrics.New()
	if err != nil {
		return err
	}

	deps := modkit.FromStore(st, root)
	em, err := enrichmod.New(deps, o, modkit.WithPorts(enrichmod.Inbound{Base: ctx, Metrics: col}))
	if err != nil {
		return err
	}
	module.Register(em.Name(), em.Ports())
	ports := module.MustPortsOf[enrichmod.Ports](em)

	switch mode {
	case modeEnrich:
		sum, err := ports.Runner.RunFullEnrichment(ctx, domain.RunOptions{
			BatchSize:      o.BatchSize,
			DryRun:         o.DryRun,
			Platform:       o.Platform,
			OnlyUnenriched: cli.only,
			Limit:          cli.limit,
			ProgressEvery:  o.ProgressEvery,
			CollectResults: o.DryRun,
			OnProgress: func(p domain.Progress) {
				l.Info().Int("processed", p.Processed).Int("total", p.Total).
					Int("updated", p.Updated).Int("errors", p.Errors).Msg("progress")
			},
		})
		if sum.RunID != "" {
			report(cli.json, func() error { return writeJSON(os.Stdout, sum) }, func() { printSummary(os.Stdout, sum) })
		}
		return err

	case modeAnalyze:
		a, err := ports.Runner.Analyze(ctx, domain.AnalyzeOptions{Platform: o.Platform, SampleSize: cli.samples})
		if err != nil {
			return err
		}
		report(cli.json, func() error { return writeJSON(os.Stdout, a) }, func() { printAnalysis(os.Stdout, a) })
		return nil

	default:
		return serve(ctx, root, o, em, deps, col)
	}
}

func report(asJSON bool, j func() error, pretty func()) {
	if !asJSON {
		pretty()
		return
	}
	if err := j(); err != nil {
		logger.Get().Error().Err(err).Msg("write report")
	}
}

// serve runs the status server and, when configured, the cron schedule
// until ctx is cancelled
func serve(ctx context.Context, root config.Conf, o enrichmod.Options, em *enrichmod.Module, deps modkit.Deps, col *metrics.Collector) error {
	l := logger.Get()

	if o.Schedule != "" {
		loc, err := time.LoadLocation(o.Timezone)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "timezone %q", o.Timezone)
		}
		sched, err := service.NewScheduler(o.Schedule, loc, em.Runs(), domain.RunOptions{
			BatchSize:     o.BatchSize,
			DryRun:        o.DryRun,
			Platform:      o.Platform,
			ProgressEvery: o.ProgressEvery,
		})
		if err != nil {
			return err
		}
		sched.Start()
		l.Info().Str("schedule", o.Schedule).Time("next", sched.Next()).Msg("enrichment scheduled")
		defer func() { <-sched.Stop().Done() }()
	}

	srv := phttp.NewServer(root)
	api.Mount(srv.Router(), api.Options{
		Config:  root.Prefix("API_"),
		Metrics: col,
		Modules: []modkit.Module{
			metamod.New(deps, modkit.WithPorts(metamod.Inbound{Taxonomy: em.Taxonomy()})),
			em,
		},
	})

	err := srv.Run(ctx)
	// an in-flight run observes the same ctx; wait for it to record its summary
	em.Runs().Wait()
	return err
}

// openStore opens the record store selected by ENRICH_STORE plus the
// optional ClickHouse audit sink
func openStore(ctx context.Context, root config.Conf, kind string) (*store.Store, error) {
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	liteCfg := root.Prefix("SERVICE_SQLITE_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	var cfg store.Config
	switch kind {
	case enrichmod.StoreSQLite:
		cfg.Lite = store.LiteConfig{
			Enabled:     true,
			Path:        liteCfg.MayString("PATH", "streamers.db"),
			BusyTimeout: liteCfg.MayDuration("BUSY_TIMEOUT", 5*time.Second),
		}
	default:
		cfg.PG = store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		}
	}
	if chCfg.MayBool("ENABLED", chCfg.Has("DBURL")) {
		cfg.CH = store.CHConfig{
			Enabled: true,
			URL:     chCfg.MustString("DBURL"),
			Role:    "enrichment",
			Tag:     version.Info().Version,
		}
	}

	st, err := store.Open(ctx, cfg, store.WithLogger(*logger.Get()))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}
