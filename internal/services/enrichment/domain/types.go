// Package domain defines the core types and ports for the enrichment service
package domain

import "time"

// Record is one streamer row as the enrichment pipeline sees it.
// (Platform, Username) is unique and immutable; Tags only ever grow
type Record struct {
	ID                   string     `json:"id"`
	Platform             string     `json:"platform"`
	Username             string     `json:"username"`
	Tags                 []string   `json:"tags"`
	CurrentGame          string     `json:"current_game,omitempty"`
	TopGames             []string   `json:"top_games,omitempty"`
	LastEnrichmentUpdate *time.Time `json:"last_enrichment_update,omitempty"`
	UpdatedAt            *time.Time `json:"updated_at,omitempty"`
}

// Filter narrows the record set. Zero value selects everything
type Filter struct {
	Platform   string
	TagsEmpty  *bool
	Unenriched bool // last_enrichment_update IS NULL
}

// Page is offset paging ordered by id
type Page struct {
	Skip int
	Take int
}

// Outcome is what happened to one record in a run
type Outcome string

// Outcomes
const (
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged" // proposal already present; counted as skipped
	OutcomeSkipped   Outcome = "skipped"   // nothing to propose
	OutcomeProposed  Outcome = "proposed"  // dry run with a non-empty proposal
	OutcomeError     Outcome = "error"
)

// Skipped reports whether o counts as skipped in a summary
func (o Outcome) Skipped() bool { return o == OutcomeSkipped || o == OutcomeUnchanged }

// InferenceResult is the per-record proposal, reported but never persisted as such
type InferenceResult struct {
	RecordID     string   `json:"record_id"`
	Platform     string   `json:"platform"`
	Username     string   `json:"username"`
	InferredTags []string `json:"inferred_tags"`
	Confidence   string   `json:"confidence"`
	Source       string   `json:"source,omitempty"`
	Category     string   `json:"category"`
	Outcome      Outcome  `json:"outcome,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// Progress is handed to RunOptions.OnProgress
type Progress struct {
	Processed int `json:"processed"`
	Total     int `json:"total"`
	Updated   int `json:"updated"`
	Errors    int `json:"errors"`
}

// RunOptions controls one enrichment pass
type RunOptions struct {
	RunID          string `json:"-"`
	BatchSize      int    `json:"batch_size" validate:"omitempty,min=1,max=1000"`
	DryRun         bool   `json:"dry_run"`
	Platform       string `json:"platform" validate:"omitempty,oneof=twitch kick youtube tiktok instagram x"`
	OnlyUnenriched bool   `json:"only_unenriched"`
	Limit          int    `json:"limit" validate:"min=0"`
	ProgressEvery  int    `json:"progress_every" validate:"min=0"`
	CollectResults bool   `json:"collect_results"`

	OnProgress func(Progress) `json:"-"`
}

// RunSummary is the result of RunFullEnrichment
type RunSummary struct {
	RunID      string            `json:"run_id"`
	DryRun     bool              `json:"dry_run"`
	Platform   string            `json:"platform,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Total      int               `json:"total"`
	Processed  int               `json:"processed"`
	Updated    int               `json:"updated"`
	Skipped    int               `json:"skipped"`
	Errors     int               `json:"errors"`
	Results    []InferenceResult `json:"results,omitempty"`
}

// Mode labels the run for metrics and audit rows
func (s RunSummary) Mode() string {
	if s.DryRun {
		return "dry_run"
	}
	return "enrich"
}

// AnalyzeOptions controls the classifier-only pass
type AnalyzeOptions struct {
	Platform   string `json:"platform" validate:"omitempty,oneof=twitch kick youtube tiktok instagram x"`
	SampleSize int    `json:"sample_size" validate:"min=0,max=1000"`
}

// Analysis is the result of Analyze
type Analysis struct {
	TotalRecords           int               `json:"total_records"`
	RecordsWithTargetTag   int               `json:"records_with_target_tag"`
	RecordsMatchingContent int               `json:"records_matching_content"`
	PotentialNewTags       int               `json:"potential_new_tags"`
	TargetTag              string            `json:"target_tag"`
	Categories             map[string]int    `json:"categories"`
	SampleResults          []InferenceResult `json:"sample_results"`
}

// RunState is the lifecycle of an async run
type RunState string

// Run states
const (
	RunRunning   RunState = "running"
	RunSucceeded RunState = "succeeded"
	RunFailed    RunState = "failed"
	RunCancelled RunState = "cancelled"
)

// RunStatus is a snapshot of the current or last async run
type RunStatus struct {
	RunID      string      `json:"run_id"`
	State      RunState    `json:"state"`
	DryRun     bool        `json:"dry_run"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
	Progress   Progress    `json:"progress"`
	Summary    *RunSummary `json:"summary,omitempty"`
	Error      string      `json:"error,omitempty"`
}
