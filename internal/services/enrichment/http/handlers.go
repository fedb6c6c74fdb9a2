// Package http provides the enrichment status endpoints
package http

import (
	stdhttp "net/http"
	"strconv"
	"strings"

	perr "streamtags/internal/platform/errors"
	phttp "streamtags/internal/platform/net/http"
	"streamtags/internal/platform/net/http/bind"
	"streamtags/internal/services/enrichment/domain"
)

// Register mounts the enrichment routes on r
func Register(r phttp.Router, runner domain.RunnerPort, runs domain.RunsPort) {
	h := &handlers{runner: runner, runs: runs}
	phttp.GetJSON(r, "/analyze", h.analyze)
	r.Post("/runs", phttp.Handle(h.start))
	phttp.GetJSON(r, "/runs/current", h.current)
}

type handlers struct {
	runner domain.RunnerPort
	runs   domain.RunsPort
}

// swagger:route GET /enrichment/analyze Enrichment enrichmentAnalyze
// @Summary Read-only tag coverage analysis
// @Tags Enrichment
// @Produce json
// @Param platform query string false "Platform filter" Enums(twitch, kick, youtube, tiktok, instagram, x)
// @Param sample_size query int false "Sample results to include (0-1000)"
// @Success 200 {object} domain.Analysis "ok"
// @Failure 422 {object} phttp.Envelope "invalid query"
// @Router /enrichment/analyze [get]
func (h *handlers) analyze(r *stdhttp.Request) (any, error) {
	q := r.URL.Query()
	o := domain.AnalyzeOptions{Platform: strings.TrimSpace(q.Get("platform"))}
	if s := strings.TrimSpace(q.Get("sample_size")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, perr.WithField(perr.InvalidArgf("sample_size must be an integer"), "sample_size")
		}
		o.SampleSize = n
	}
	return h.runner.Analyze(r.Context(), o)
}

// swagger:route POST /enrichment/runs Enrichment enrichmentStartRun
// @Summary Start an asynchronous enrichment run
// @Description An empty body starts a run with the configured defaults
// @Tags Enrichment
// @Accept json
// @Produce json
// @Param payload body domain.RunOptions false "Run options"
// @Success 202 {object} domain.RunStatus "accepted"
// @Failure 409 {object} phttp.Envelope "a run is already active"
// @Router /enrichment/runs [post]
func (h *handlers) start(r *stdhttp.Request) phttp.Response {
	in, err := bind.ParseJSON[domain.RunOptions](r, bind.JSONOptions{
		MaxBytes:        1 << 16,
		DisallowUnknown: true,
		AllowEmptyBody:  true,
	})
	if err != nil {
		return phttp.Error(err)
	}
	st, err := h.runs.Start(in)
	if err != nil {
		return phttp.Error(err)
	}
	return phttp.Accepted(st)
}

// swagger:route GET /enrichment/runs/current Enrichment enrichmentCurrentRun
// @Summary Status of the active or most recent run
// @Tags Enrichment
// @Produce json
// @Success 200 {object} domain.RunStatus "ok"
// @Failure 404 {object} phttp.Envelope "no run has been started"
// @Router /enrichment/runs/current [get]
func (h *handlers) current(*stdhttp.Request) (any, error) {
	st, ok := h.runs.Current()
	if !ok {
		return nil, perr.NotFoundf("no enrichment run has been started")
	}
	return st, nil
}
