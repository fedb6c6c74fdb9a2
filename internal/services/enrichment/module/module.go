// Package module wires the enrichment service into the application using modkit
package module

import (
	"context"
	"net/http"

	"streamtags/internal/adapters/platforms"
	"streamtags/internal/adapters/platforms/kick"
	"streamtags/internal/adapters/platforms/twitch"
	"streamtags/internal/adapters/platforms/youtube"
	"streamtags/internal/core/classify"
	"streamtags/internal/core/pacer"
	"streamtags/internal/core/taxonomy"
	"streamtags/internal/modkit"
	"streamtags/internal/modkit/repokit"
	perr "streamtags/internal/platform/errors"
	"streamtags/internal/platform/metrics"
	phttp "streamtags/internal/platform/net/http"
	"streamtags/internal/services/enrichment/domain"
	ehttp "streamtags/internal/services/enrichment/http"
	"streamtags/internal/services/enrichment/repo"
	"streamtags/internal/services/enrichment/service"
)

// Ports exposed by the enrichment module
type Ports struct {
	Runner domain.RunnerPort
	Merger domain.MergerPort
	Runs   domain.RunsPort
}

// Inbound are optional collaborators injected with modkit.WithPorts
type Inbound struct {
	// Base scopes async runs; cancelling it stops them
	Base    context.Context
	Metrics *metrics.Collector
	// Fetchers replaces the configured platform fetchers when non-empty
	Fetchers []platforms.Fetcher
}

// Module implements the enrichment module
type Module struct {
	deps   modkit.Deps
	opts   Options
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler

	table *taxonomy.Table
	svc   *service.Service
	runs  *service.Runs
	ports Ports
}

// New constructs the enrichment module from deps and opts
func New(deps modkit.Deps, opts Options, mo ...modkit.Option) (*Module, error) {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("enrichment"),
		modkit.WithPrefix("/enrichment"),
	}, mo...)...)

	var in Inbound
	if p, ok := b.Ports.(Inbound); ok {
		in = p
	}
	if in.Base == nil {
		in.Base = context.Background()
	}

	st, err := openStore(deps, opts.Store)
	if err != nil {
		return nil, err
	}

	table := taxonomy.MustDefault()
	if opts.PatternsFile != "" {
		if table, err = taxonomy.LoadFile(opts.PatternsFile); err != nil {
			return nil, err
		}
	}
	cls, err := classify.New(table)
	if err != nil {
		return nil, err
	}

	fetchers := in.Fetchers
	if len(fetchers) == 0 {
		fetchers = newFetchers(opts, in.Metrics)
	}

	svcOpts := []service.Option{service.WithAudit(repo.NewAudit(deps.CH))}
	if in.Metrics != nil {
		svcOpts = append(svcOpts, service.WithMetrics(in.Metrics))
	}
	svc := service.New(st, platforms.NewRegistry(fetchers...), cls, service.Config{
		BatchSize:           opts.BatchSize,
		ProgressEvery:       opts.ProgressEvery,
		IncludePlatformTags: opts.IncludePlatformTags,
		LockPath:            opts.LockPath,
	}, svcOpts...)
	runs := service.NewRuns(in.Base, svc)

	return &Module{
		deps:   deps,
		opts:   opts,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		table:  table,
		svc:    svc,
		runs:   runs,
		ports:  Ports{Runner: svc, Merger: svc, Runs: runs},
	}, nil
}

// openStore binds the configured record store to its SQL seam
func openStore(deps modkit.Deps, kind string) (domain.StorePort, error) {
	switch kind {
	case StoreSQLite:
		if deps.Lite == nil {
			return nil, perr.Unavailablef("ENRICH_STORE=sqlite but no sqlite database is open")
		}
		return repokit.MustBind(repo.NewLite(), deps.Lite), nil
	case StorePostgres, "":
		if deps.PG == nil {
			return nil, perr.Unavailablef("ENRICH_STORE=postgres but no postgres pool is open")
		}
		return repokit.MustBind(repo.NewPG(), deps.PG), nil
	default:
		return nil, perr.InvalidArgf("unknown store %q", kind)
	}
}

// newFetchers builds the platform adapters sharing one pacer
func newFetchers(o Options, obs *metrics.Collector) []platforms.Fetcher {
	p := pacer.New(o.PaceDefault)
	p.Set(platforms.Twitch.String(), o.PaceTwitch)
	p.Set(platforms.Kick.String(), o.PaceKick)

	var observer platforms.Observer
	if obs != nil {
		observer = obs
	}
	return []platforms.Fetcher{
		twitch.New(twitch.Options{
			ClientID:     o.Twitch.ClientID,
			ClientSecret: o.Twitch.ClientSecret,
			AuthURL:      o.Twitch.AuthURL,
			APIURL:       o.Twitch.APIURL,
			Timeout:      o.HTTPTimeout,
			MaxAttempts:  o.MaxAttempts,
			RetryBase:    o.RetryBase,
			Pacer:        p,
			Observer:     observer,
		}),
		kick.New(kick.Options{
			APIURL:      o.Kick.APIURL,
			UserAgent:   o.Kick.UserAgent,
			Timeout:     o.HTTPTimeout,
			MaxAttempts: o.MaxAttempts,
			RetryBase:   o.RetryBase,
			Pacer:       p,
			Observer:    observer,
		}),
		youtube.New(),
	}
}

// Service returns the underlying service for CLI use
func (m *Module) Service() *service.Service { return m.svc }

// Runs returns the async run tracker
func (m *Module) Runs() *service.Runs { return m.runs }

// Taxonomy returns the pattern table the classifier was built from
func (m *Module) Taxonomy() *taxonomy.Table { return m.table }

// Options returns the options the module was built with
func (m *Module) Options() Options { return m.opts }

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {
	r.Route(m.prefix, func(rr phttp.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		ehttp.Register(rr, m.svc, m.runs)
	})
}
