package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	perr "streamtags/internal/platform/errors"
	"streamtags/internal/platform/logger"
	"streamtags/internal/platform/net/http/bind"
	ptime "streamtags/internal/platform/time"
	"streamtags/internal/services/enrichment/domain"
)

// Runs starts enrichment passes in the background, one at a time, and keeps
// a snapshot of the current or last run for the status endpoints
type Runs struct {
	svc  *Service
	base context.Context

	mu     sync.Mutex
	cur    *domain.RunStatus
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRuns binds async runs to svc. Runs are cancelled when base is done
func NewRuns(base context.Context, svc *Service) *Runs {
	return &Runs{svc: svc, base: base}
}

// Start validates o and launches a run. A run already in flight, or a
// writing run held elsewhere in the process, yields a Conflict
func (r *Runs) Start(o domain.RunOptions) (domain.RunStatus, error) {
	o = r.svc.runDefaults(o)
	if err := bind.Struct(o); err != nil {
		return domain.RunStatus{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cur != nil && r.cur.State == domain.RunRunning {
		return domain.RunStatus{}, perr.Conflictf("run %s is still running", r.cur.RunID)
	}
	if !o.DryRun && r.svc.Writing() {
		return domain.RunStatus{}, perr.Conflictf("an enrichment run is already writing")
	}

	if o.RunID == "" {
		o.RunID = r.svc.newID()
	}
	st := &domain.RunStatus{RunID: o.RunID, State: domain.RunRunning, DryRun: o.DryRun, StartedAt: r.svc.now().UTC()}
	r.cur = st

	user := o.OnProgress
	o.OnProgress = func(p domain.Progress) {
		r.mu.Lock()
		st.Progress = p
		r.mu.Unlock()
		if user != nil {
			user(p)
		}
	}

	ctx, cancel := context.WithCancel(r.base)
	r.cancel = cancel
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()
		sum, err := r.svc.RunFullEnrichment(ctx, o)
		r.finish(st, sum, err)
	}()
	return *st, nil
}

func (r *Runs) finish(st *domain.RunStatus, sum domain.RunSummary, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st.FinishedAt = ptime.Ptr(r.svc.now().UTC())
	st.Summary = &sum
	st.Progress = domain.Progress{Processed: sum.Processed, Total: sum.Total, Updated: sum.Updated, Errors: sum.Errors}
	switch {
	case err == nil:
		st.State = domain.RunSucceeded
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		st.State = domain.RunCancelled
		st.Error = err.Error()
	default:
		st.State = domain.RunFailed
		st.Error = err.Error()
		logger.Named("enrichment.runs").Error().Err(err).Str("run_id", st.RunID).Msg("async run failed")
	}
}

// Current returns a copy of the current or last run status
func (r *Runs) Current() (domain.RunStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cur == nil {
		return domain.RunStatus{}, false
	}
	out := *r.cur
	if r.cur.Summary != nil {
		sum := *r.cur.Summary
		out.Summary = &sum
	}
	return out, true
}

// Cancel stops the run in flight, if any
func (r *Runs) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
}

// Wait blocks until the run in flight returns
func (r *Runs) Wait() { r.wg.Wait() }

// Trigger starts a run and logs instead of returning; used by the scheduler
func (r *Runs) Trigger(o domain.RunOptions) {
	st, err := r.Start(o)
	log := logger.Named("enrichment.runs")
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeConflict) {
			log.Info().Str("reason", strings.TrimSpace(err.Error())).Msg("scheduled run skipped")
			return
		}
		log.Error().Err(err).Msg("scheduled run rejected")
		return
	}
	log.Info().Str("run_id", st.RunID).Bool("dry_run", st.DryRun).Msg("scheduled run started")
}
