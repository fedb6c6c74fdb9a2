// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"streamtags/internal/core/taxonomy"
	"streamtags/internal/core/version"
	phttp "streamtags/internal/platform/net/http"
	"streamtags/internal/platform/store"
)

// Deps are the handler dependencies. Nil backends are reported as skipped
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
	Lite        any
	CH          any
	Taxonomy    *taxonomy.Table
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r phttp.Router, d Deps) {
	h := &handlers{deps: d}

	phttp.GetJSON(r, "/health", h.health)
	phttp.GetJSON(r, "/ready", h.ready)
	phttp.GetJSON(r, "/version", h.version)
	phttp.GetJSON(r, "/service", h.service)
	phttp.GetJSON(r, "/taxonomy", h.taxonomy)
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Started string `json:"started"`
	Now     string `json:"now"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // ok fail skipped unknown
	Error  string `json:"error,omitempty"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status"` // ok degraded fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"`
}

// ServiceResponse describes service info
type ServiceResponse struct {
	Name    string `json:"name"`
	Started string `json:"started"`
	Uptime  int64  `json:"uptime"`
}

// TaxonomyResponse reports the loaded classification table
type TaxonomyResponse struct {
	TargetTag string            `json:"target_tag"`
	Labels    []string          `json:"labels"`
	Build     version.BuildInfo `json:"build"`
}

// swagger:route GET /meta/health Meta metaHealth
// @Summary Liveness
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse "ok"
// @Router /meta/health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// swagger:route GET /meta/ready Meta metaReady
// @Summary Readiness of the record stores and audit sink
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse "ok"
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	check := func(name string, c any) ReadyCheck {
		if c == nil {
			return ReadyCheck{Name: name, Status: "skipped"}
		}
		if p, ok := c.(store.Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				return ReadyCheck{Name: name, Status: "fail", Error: err.Error()}
			}
			return ReadyCheck{Name: name, Status: "ok"}
		}
		return ReadyCheck{Name: name, Status: "unknown"}
	}

	checks := []ReadyCheck{
		check("pg", h.deps.PG),
		check("sqlite", h.deps.Lite),
		check("ch", h.deps.CH),
	}

	// one reachable record store is enough; the audit sink is optional
	overall := "ok"
	stores := 0
	for _, c := range checks {
		switch c.Status {
		case "fail":
			if overall == "ok" {
				overall = "degraded"
			}
			if c.Name != "ch" {
				overall = "fail"
			}
		case "ok":
			if c.Name != "ch" {
				stores++
			}
		}
	}
	if stores == 0 {
		overall = "fail"
	}

	return ReadyResponse{
		Status: overall,
		Checks: checks,
		Now:    time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// swagger:route GET /meta/version Meta metaVersion
// @Summary Build information
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo "ok"
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

// swagger:route GET /meta/service Meta metaService
// @Summary Service name and uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse "ok"
// @Router /meta/service [get]
func (h *handlers) service(_ *http.Request) (any, error) {
	uptime := time.Since(h.deps.StartedAt)
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(uptime / time.Second),
	}, nil
}

// swagger:route GET /meta/taxonomy Meta metaTaxonomy
// @Summary Loaded keyword table
// @Tags Meta
// @Produce json
// @Success 200 {object} TaxonomyResponse "ok"
// @Router /meta/taxonomy [get]
func (h *handlers) taxonomy(_ *http.Request) (any, error) {
	out := TaxonomyResponse{Build: version.Info(), Labels: []string{}}
	if t := h.deps.Taxonomy; t != nil {
		out.TargetTag = t.TargetTag
		out.Labels = t.Labels()
	}
	return out, nil
}
