package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"streamtags/internal/services/enrichment/domain"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(title string, headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if title != "" {
		tw.SetTitle(title)
	}

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	cfgs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		cfgs = append(cfgs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(cfgs)

	return tw.Render()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSummary(w io.Writer, s domain.RunSummary) {
	d := s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond)
	rows := [][]string{
		{"run", s.RunID},
		{"mode", s.Mode()},
		{"platform", orAll(s.Platform)},
		{"total", strconv.Itoa(s.Total)},
		{"processed", strconv.Itoa(s.Processed)},
		{"updated", strconv.Itoa(s.Updated)},
		{"skipped", strconv.Itoa(s.Skipped)},
		{"errors", strconv.Itoa(s.Errors)},
		{"duration", d.String()},
	}
	fmt.Fprintln(w, renderTable("Enrichment", []string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
	if len(s.Results) > 0 {
		fmt.Fprintln(w, resultsTable("Proposals", s.Results))
	}
}

func printAnalysis(w io.Writer, a domain.Analysis) {
	rows := [][]string{
		{"total records", strconv.Itoa(a.TotalRecords)},
		{"with " + a.TargetTag, strconv.Itoa(a.RecordsWithTargetTag)},
		{"matching content", strconv.Itoa(a.RecordsMatchingContent)},
		{"potential new tags", strconv.Itoa(a.PotentialNewTags)},
	}
	fmt.Fprintln(w, renderTable("Analysis", []string{"Metric", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))

	labels := make([]string, 0, len(a.Categories))
	for l := range a.Categories {
		labels = append(labels, l)
	}
	// most common first, then by name
	slices.SortFunc(labels, func(x, y string) int {
		if c := a.Categories[y] - a.Categories[x]; c != 0 {
			return c
		}
		return strings.Compare(x, y)
	})
	cats := make([][]string, 0, len(labels))
	for _, l := range labels {
		cats = append(cats, []string{l, strconv.Itoa(a.Categories[l])})
	}
	if len(cats) > 0 {
		fmt.Fprintln(w, renderTable("Categories", []string{"Category", "Records"}, cats, []columnAlignment{alignLeft, alignRight}))
	}
	if len(a.SampleResults) > 0 {
		fmt.Fprintln(w, resultsTable("Samples", a.SampleResults))
	}
}

func resultsTable(title string, rs []domain.InferenceResult) string {
	rows := make([][]string, 0, len(rs))
	for _, r := range rs {
		tags := strings.Join(r.InferredTags, ", ")
		if r.Error != "" {
			tags = r.Error
		}
		rows = append(rows, []string{r.Platform, r.Username, tags, r.Confidence, r.Category, string(r.Outcome)})
	}
	return renderTable(title, []string{"Platform", "Username", "Tags", "Confidence", "Category", "Outcome"}, rows, nil)
}

func orAll(p string) string {
	if p == "" {
		return "all"
	}
	return p
}
