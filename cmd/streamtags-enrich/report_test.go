package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"streamtags/internal/services/enrichment/domain"
)

func TestRenderTable(t *testing.T) {
	t.Parallel()
	if got := renderTable("", nil, nil, nil); got != "" {
		t.Fatalf("empty headers should render nothing, got %q", got)
	}
	out := renderTable("T", []string{"A", "B"}, [][]string{{"x"}, {"y", "2"}}, []columnAlignment{alignLeft, alignRight})
	for _, want := range []string{"T", "A", "B", "x", "y", "2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	printSummary(&buf, domain.RunSummary{
		RunID: "r-1", DryRun: true, StartedAt: start, FinishedAt: start.Add(1500 * time.Millisecond),
		Total: 3, Processed: 3, Skipped: 2,
		Results: []domain.InferenceResult{{Platform: "kick", Username: "dave", InferredTags: []string{"SLOTS", "IGAMING"}, Confidence: "high", Outcome: domain.OutcomeProposed}},
	})
	out := buf.String()
	for _, want := range []string{"r-1", "dry_run", "all", "1.5s", "Proposals", "SLOTS, IGAMING", "proposed"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestPrintAnalysis(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	printAnalysis(&buf, domain.Analysis{
		TotalRecords: 10, RecordsWithTargetTag: 2, TargetTag: "IGAMING",
		Categories: map[string]int{"Slots": 1, "Just Chatting": 4},
	})
	out := buf.String()
	if !strings.Contains(out, "with IGAMING") {
		t.Fatalf("analysis missing target row:\n%s", out)
	}
	if strings.Index(out, "Just Chatting") > strings.Index(out, "Slots") {
		t.Fatalf("categories not sorted by count:\n%s", out)
	}
	if strings.Contains(out, "Samples") {
		t.Fatalf("empty samples should be omitted")
	}
}
