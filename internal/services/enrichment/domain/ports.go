package domain

import (
	"context"
	"time"
)

// StorePort is the record store. UpdateTags is conditional on updated_at
// still equal to expectedUpdatedAt (nil matches NULL) and reports a Conflict
// error when the row changed or vanished
type StorePort interface {
	Count(ctx context.Context, f Filter) (int, error)
	FindMany(ctx context.Context, f Filter, p Page) ([]Record, error)
	FindUnique(ctx context.Context, id string) (Record, error)
	UpdateTags(ctx context.Context, id string, tags []string, at time.Time, expectedUpdatedAt *time.Time) error
}

// AuditPort receives run summaries and per-record results. Failures are
// logged by the caller and never fail a run
type AuditPort interface {
	RecordRun(ctx context.Context, s RunSummary, result string) error
	RecordResults(ctx context.Context, runID string, at time.Time, rs []InferenceResult) error
}

// RunnerPort is the external port for synchronous passes (CLI, cron)
type RunnerPort interface {
	RunFullEnrichment(ctx context.Context, o RunOptions) (RunSummary, error)
	Analyze(ctx context.Context, o AnalyzeOptions) (Analysis, error)
}

// MergerPort merges new tags into one record
type MergerPort interface {
	Merge(ctx context.Context, id string, newTags []string) (Outcome, error)
}

// RunsPort starts and observes async runs (HTTP, schedule)
type RunsPort interface {
	Start(o RunOptions) (RunStatus, error)
	Current() (RunStatus, bool)
}
