package service

import (
	"context"

	perr "streamtags/internal/platform/errors"
	"streamtags/internal/platform/logger"
	"streamtags/internal/platform/net/http/bind"
	"streamtags/internal/services/enrichment/domain"
)

// conflictRetries is how many times a write lost to a concurrent update is re-read and retried
const conflictRetries = 1

type mergeInput struct {
	ID   string   `json:"id" validate:"required"`
	Tags []string `json:"tags" validate:"dive,tagname"`
}

// Merge unions newTags into the stored tags of record id.
// Empty input is Skipped without touching the store; a union equal to the
// stored set is Unchanged; otherwise the write is conditional on updated_at
func (s *Service) Merge(ctx context.Context, id string, newTags []string) (domain.Outcome, error) {
	if len(newTags) == 0 {
		return domain.OutcomeSkipped, nil
	}
	if err := bind.Struct(mergeInput{ID: id, Tags: newTags}); err != nil {
		return domain.OutcomeError, err
	}

	for attempt := 0; ; attempt++ {
		rec, err := s.store.FindUnique(ctx, id)
		if err != nil {
			return domain.OutcomeError, err
		}
		union, changed := Union(rec.Tags, newTags)
		if !changed {
			return domain.OutcomeUnchanged, nil
		}
		err = s.store.UpdateTags(ctx, id, union, s.now().UTC(), rec.UpdatedAt)
		if err == nil {
			return domain.OutcomeUpdated, nil
		}
		if !perr.IsCode(err, perr.ErrorCodeConflict) || attempt >= conflictRetries {
			return domain.OutcomeError, err
		}
		logger.C(ctx).Debug().Str("record_id", id).Msg("tags changed underneath; retrying merge")
	}
}

// Union appends the members of add missing from existing, keeping existing
// order first and dropping repeats. Equality is case-sensitive. changed is
// false when the result equals existing
func Union(existing, add []string) (out []string, changed bool) {
	seen := make(map[string]struct{}, len(existing)+len(add))
	out = make([]string, 0, len(existing)+len(add))
	for _, t := range existing {
		if _, ok := seen[t]; ok {
			changed = true
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, t := range add {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		changed = true
	}
	return out, changed
}
