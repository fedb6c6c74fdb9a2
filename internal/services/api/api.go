// Package api provides the HTTP API for the application
package api

import (
	"net/http"

	"streamtags/internal/platform/config"
	"streamtags/internal/platform/metrics"
	phttp "streamtags/internal/platform/net/http"
	"streamtags/internal/platform/net/middleware"

	"streamtags/internal/modkit"
	"streamtags/internal/modkit/module"
	"streamtags/internal/modkit/swaggerkit"
)

// Options are the API options
type Options struct {
	// Config is the API_ scoped view
	Config  config.Conf
	Metrics *metrics.Collector
	Modules []modkit.Module
}

// Mount mounts the API service onto the given router. Probes, /metrics,
// the docs and the profiler sit outside the /v1 middleware stack
func Mount(r phttp.Router, opt Options) {
	r.Use(middleware.Heartbeat("/healthz"))
	r.Handle("/metrics", opt.Metrics.Handler())
	swaggerkit.Mount(r, swaggerkit.Options{
		Enabled:     opt.Config.MayBool("SWAGGER", true),
		Path:        "/swagger",
		Server:      "/v1",
		TitleSuffix: opt.Config.MayString("DOCS_TITLE_SUFFIX", ""),
	})
	phttp.MountProfiler(r, "/debug", opt.Config.MayBool("PROFILER", false))

	r.Route("/v1", func(api phttp.Router) {
		api.Use(Stack(opt)...)
		for _, m := range opt.Modules {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its prefix
			m.MountRoutes(api)
		}
	})
}

// Stack is the middleware chain applied to /v1
func Stack(opt Options) []func(http.Handler) http.Handler {
	mws := middleware.Defaults()
	mws = append(mws,
		middleware.AccessLogZerolog(middleware.AccessLogOptions{
			Slow: opt.Config.MayDuration("SLOW_REQUEST", 0),
		}),
		opt.Metrics.InstrumentHandler,
	)
	if origins := opt.Config.MayCSV("CORS_ORIGINS", nil); len(origins) > 0 {
		mws = append([]func(http.Handler) http.Handler{middleware.CORS(middleware.CORSOptions{
			AllowedOrigins: origins,
			MaxAge:         opt.Config.MayInt("CORS_MAX_AGE", 300),
		})}, mws...)
	}
	return mws
}
