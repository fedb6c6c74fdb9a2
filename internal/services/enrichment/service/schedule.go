package service

import (
	"context"
	"strings"
	"time"

	perr "streamtags/internal/platform/errors"
	"streamtags/internal/services/enrichment/domain"

	"github.com/robfig/cron/v3"
)

// Scheduler triggers async runs on a cron spec
type Scheduler struct {
	cron *cron.Cron
	spec string
}

// NewScheduler parses spec (standard five field cron, or descriptors such as
// "@hourly") in loc and wires it to runs.Trigger with opts
func NewScheduler(spec string, loc *time.Location, runs *Runs, opts domain.RunOptions) (*Scheduler, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, perr.InvalidArgf("empty schedule")
	}
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(spec, func() { runs.Trigger(opts) }); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "schedule %q", spec)
	}
	return &Scheduler{cron: c, spec: spec}, nil
}

// Start begins firing in the background
func (s *Scheduler) Start() { s.cron.Start() }

// Next returns the next fire time
func (s *Scheduler) Next() time.Time {
	if es := s.cron.Entries(); len(es) > 0 {
		return es[0].Next
	}
	return time.Time{}
}

// Stop halts the schedule; the returned context is done when a job still
// being dispatched has returned
func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }
