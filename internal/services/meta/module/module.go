// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"net/http"
	"time"

	"streamtags/internal/core/taxonomy"
	"streamtags/internal/core/version"
	"streamtags/internal/modkit"
	phttp "streamtags/internal/platform/net/http"
	str "streamtags/internal/platform/strings"

	metahttp "streamtags/internal/services/meta/http"
)

// Inbound are the optional collaborators injected with modkit.WithPorts
type Inbound struct {
	Taxonomy *taxonomy.Table
}

// Module implements the modkit.Module interface
type Module struct {
	name      string
	prefix    string
	mws       []func(http.Handler) http.Handler
	deps      metahttp.Deps
	startedAt time.Time
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	in, _ := b.Ports.(Inbound)
	m := &Module{
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		startedAt: time.Now(),
	}
	m.deps = metahttp.Deps{
		ServiceName: version.Service,
		StartedAt:   m.startedAt,
		Taxonomy:    in.Taxonomy,
	}
	if deps.PG != nil {
		m.deps.PG = deps.PG
	}
	if deps.Lite != nil {
		m.deps.Lite = deps.Lite
	}
	if deps.CH != nil {
		m.deps.CH = deps.CH
	}
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r phttp.Router) {
	r.Route(str.MustPrefix(m.prefix), func(rr phttp.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		metahttp.Register(rr, m.deps)
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.name, "meta") }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
