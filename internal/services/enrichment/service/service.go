// Package service implements tag enrichment: the batch orchestrator, the
// merge engine, the classifier-only analysis pass and async run tracking
package service

import (
	"sync/atomic"
	"time"

	"streamtags/internal/adapters/platforms"
	"streamtags/internal/core/classify"
	perr "streamtags/internal/platform/errors"
	"streamtags/internal/platform/logger"
	"streamtags/internal/services/enrichment/domain"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// Defaults applied to zero RunOptions and AnalyzeOptions fields
const (
	DefaultBatchSize     = 100
	DefaultProgressEvery = 100
	DefaultSampleSize    = 10
)

// Run results reported to metrics and the audit sink
const (
	ResultOK        = "ok"
	ResultCancelled = "cancelled"
	ResultFailed    = "failed"
)

// Config holds service level knobs; zero values take the defaults above
type Config struct {
	BatchSize     int
	ProgressEvery int

	// IncludePlatformTags adds canonicalized platform tags and the current
	// game name to the proposal, not only classifier output
	IncludePlatformTags bool

	// LockPath enables a host lock file so writing runs exclude each other
	// across processes; empty keeps the in-process guard only
	LockPath string
}

// Recorder receives run and record counters. *metrics.Collector satisfies it
type Recorder interface {
	RecordOutcome(platform, outcome string)
	RecordRun(mode, result string)
}

type nopRecorder struct{}

func (nopRecorder) RecordOutcome(string, string) {}
func (nopRecorder) RecordRun(string, string)     {}

// Service runs enrichment over a record store
type Service struct {
	store    domain.StorePort
	fetchers platforms.Registry
	cls      *classify.Classifier
	cfg      Config

	audit   domain.AuditPort
	metrics Recorder
	now     func() time.Time
	newID   func() string

	writing atomic.Bool
	lock    *flock.Flock
	log     logger.Logger
}

// Option customizes a Service
type Option func(*Service)

// WithAudit sets the run audit sink
func WithAudit(a domain.AuditPort) Option { return func(s *Service) { s.audit = a } }

// WithMetrics sets the counter sink
func WithMetrics(r Recorder) Option { return func(s *Service) { s.metrics = r } }

// WithClock overrides time.Now, mostly for tests
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithIDs overrides run id generation
func WithIDs(fn func() string) Option { return func(s *Service) { s.newID = fn } }

// New constructs the service. store and cls are required; fetchers may be
// empty, in which case every record is inference only
func New(store domain.StorePort, fetchers platforms.Registry, cls *classify.Classifier, cfg Config, opts ...Option) *Service {
	if store == nil {
		panic("enrichment.Service requires a non nil StorePort")
	}
	if cls == nil {
		cls = classify.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = DefaultProgressEvery
	}
	s := &Service{
		store:    store,
		fetchers: fetchers,
		cls:      cls,
		cfg:      cfg,
		metrics:  nopRecorder{},
		now:      time.Now,
		newID:    uuid.NewString,
		log:      *logger.Named("enrichment"),
	}
	if cfg.LockPath != "" {
		s.lock = flock.New(cfg.LockPath)
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	return s
}

// acquireWriter claims the single-writer slot; the returned func releases it
func (s *Service) acquireWriter() (func(), error) {
	if !s.writing.CompareAndSwap(false, true) {
		return nil, perr.Conflictf("an enrichment run is already writing")
	}
	if s.lock == nil {
		return func() { s.writing.Store(false) }, nil
	}
	ok, err := s.lock.TryLock()
	if err != nil {
		s.writing.Store(false)
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "acquire lock %s", s.cfg.LockPath)
	}
	if !ok {
		s.writing.Store(false)
		return nil, perr.Conflictf("lock %s is held by another process", s.cfg.LockPath)
	}
	return func() {
		if err := s.lock.Unlock(); err != nil {
			s.log.Warn().Err(err).Str("lock", s.cfg.LockPath).Msg("release writer lock")
		}
		s.writing.Store(false)
	}, nil
}

// Writing reports whether a writing run holds the in-process guard
func (s *Service) Writing() bool { return s.writing.Load() }
