package service

import (
	"context"
	"slices"
	"strings"

	"streamtags/internal/core/classify"
	"streamtags/internal/platform/logger"
	"streamtags/internal/platform/net/http/bind"
	"streamtags/internal/services/enrichment/domain"
)

// Analyze runs the classifier over stored signals only: no platform calls
// and no writes. SampleResults holds up to SampleSize records that would
// gain tags
func (s *Service) Analyze(ctx context.Context, o domain.AnalyzeOptions) (domain.Analysis, error) {
	if o.SampleSize == 0 {
		o.SampleSize = DefaultSampleSize
	}
	o.Platform = strings.ToLower(strings.TrimSpace(o.Platform))
	if err := bind.Struct(o); err != nil {
		return domain.Analysis{}, err
	}

	a, err := s.analyze(ctx, o)
	result := ResultOK
	if err != nil {
		result = ResultFailed
		if ctx.Err() != nil {
			result = ResultCancelled
		}
	}
	s.metrics.RecordRun("analyze", result)
	if err != nil {
		return a, err
	}
	logger.C(ctx).Info().
		Int("total", a.TotalRecords).
		Int("with_target", a.RecordsWithTargetTag).
		Int("matching", a.RecordsMatchingContent).
		Int("potential", a.PotentialNewTags).
		Msg("analysis finished")
	return a, nil
}

func (s *Service) analyze(ctx context.Context, o domain.AnalyzeOptions) (domain.Analysis, error) {
	target := s.cls.TargetTag()
	a := domain.Analysis{
		TargetTag:     target,
		Categories:    make(map[string]int),
		SampleResults: []domain.InferenceResult{},
	}
	f := domain.Filter{Platform: o.Platform}
	total, err := s.store.Count(ctx, f)
	if err != nil {
		return a, err
	}
	a.TotalRecords = total

	for skip := 0; skip < total; {
		if err := ctx.Err(); err != nil {
			return a, err
		}
		page, err := s.store.FindMany(ctx, f, domain.Page{Skip: skip, Take: s.cfg.BatchSize})
		if err != nil {
			return a, err
		}
		if len(page) == 0 {
			break
		}
		skip += len(page)

		for _, rec := range page {
			inf := s.cls.Infer(classify.Signals{
				CurrentGame: []string{rec.CurrentGame},
				TopGames:    rec.TopGames,
				Existing:    rec.Tags,
			})
			if slices.Contains(rec.Tags, target) {
				a.RecordsWithTargetTag++
			}
			if slices.Contains(inf.Candidates, target) {
				a.RecordsMatchingContent++
			}
			a.Categories[s.cls.InferCategory(rec.CurrentGame, rec.Tags)]++
			if len(inf.Tags) == 0 {
				continue
			}
			a.PotentialNewTags++
			if len(a.SampleResults) < o.SampleSize {
				a.SampleResults = append(a.SampleResults, domain.InferenceResult{
					RecordID:     rec.ID,
					Platform:     rec.Platform,
					Username:     rec.Username,
					InferredTags: inf.Tags,
					Confidence:   string(inf.Confidence),
					Source:       string(inf.Source),
					Category:     s.cls.InferCategory(rec.CurrentGame, append(rec.Tags[:len(rec.Tags):len(rec.Tags)], inf.Tags...)),
					Outcome:      domain.OutcomeProposed,
				})
			}
		}
	}
	return a, nil
}
