package repo

import (
	"context"
	"strings"
	"time"

	perr "streamtags/internal/platform/errors"
	"streamtags/internal/platform/store"
	"streamtags/internal/services/enrichment/domain"
)

// ClickHouse tables written by Audit
const (
	RunsTable    = "enrichment_runs"
	ResultsTable = "enrichment_results"
)

// AuditSchema is applied by EnsureAuditSchema; rows are append only
var AuditSchema = []string{
	`CREATE TABLE IF NOT EXISTS ` + RunsTable + ` (
		run_id      String,
		mode        LowCardinality(String),
		result      LowCardinality(String),
		platform    LowCardinality(String),
		started_at  DateTime64(3, 'UTC'),
		finished_at DateTime64(3, 'UTC'),
		total       UInt32,
		processed   UInt32,
		updated     UInt32,
		skipped     UInt32,
		errors      UInt32
	) ENGINE = MergeTree ORDER BY (started_at, run_id)`,
	`CREATE TABLE IF NOT EXISTS ` + ResultsTable + ` (
		run_id        String,
		recorded_at   DateTime64(3, 'UTC'),
		record_id     String,
		platform      LowCardinality(String),
		username      String,
		inferred_tags Array(String),
		confidence    LowCardinality(String),
		source        LowCardinality(String),
		category      LowCardinality(String),
		outcome       LowCardinality(String),
		error         String
	) ENGINE = MergeTree ORDER BY (recorded_at, run_id, record_id)`,
}

// EnsureAuditSchema creates the audit tables when missing
func EnsureAuditSchema(ctx context.Context, ch store.Clickhouse) error {
	for _, ddl := range AuditSchema {
		if err := ch.Exec(ctx, ddl); err != nil {
			return perr.Wrap(err, perr.ErrorCodeDB, "clickhouse audit schema")
		}
	}
	return nil
}

// Audit writes run summaries and per-record results to ClickHouse.
// A nil *Audit or one without a connection discards everything
type Audit struct{ ch store.Clickhouse }

// NewAudit wraps a ClickHouse seam; ch may be nil
func NewAudit(ch store.Clickhouse) *Audit { return &Audit{ch: ch} }

func (a *Audit) enabled() bool { return a != nil && a.ch != nil }

// RecordRun implements domain.AuditPort
func (a *Audit) RecordRun(ctx context.Context, s domain.RunSummary, result string) error {
	if !a.enabled() {
		return nil
	}
	row := []any{
		s.RunID, s.Mode(), result, strings.ToLower(s.Platform),
		s.StartedAt.UTC(), s.FinishedAt.UTC(),
		uint32(s.Total), uint32(s.Processed), uint32(s.Updated), uint32(s.Skipped), uint32(s.Errors),
	}
	if err := a.ch.Insert(ctx, RunsTable, [][]any{row}); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "audit run %s", s.RunID)
	}
	return nil
}

// RecordResults implements domain.AuditPort
func (a *Audit) RecordResults(ctx context.Context, runID string, at time.Time, rs []domain.InferenceResult) error {
	if !a.enabled() || len(rs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(rs))
	for _, r := range rs {
		tags := r.InferredTags
		if tags == nil {
			tags = []string{}
		}
		rows = append(rows, []any{
			runID, at.UTC(), r.RecordID, strings.ToLower(r.Platform), r.Username,
			tags, r.Confidence, r.Source, r.Category, string(r.Outcome), r.Error,
		})
	}
	if err := a.ch.Insert(ctx, ResultsTable, rows); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "audit %d results for run %s", len(rows), runID)
	}
	return nil
}
