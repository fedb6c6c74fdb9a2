package service

import (
	"context"
	"errors"
	"strings"

	"streamtags/internal/adapters/platforms"
	"streamtags/internal/core/classify"
	"streamtags/internal/platform/logger"
	"streamtags/internal/platform/net/http/bind"
	"streamtags/internal/services/enrichment/domain"
)

// RunFullEnrichment pages through the store, fetches platform signals,
// infers tags and merges them. A store read failure aborts the run and is
// returned with the partial summary; per-record failures are counted.
// Cancellation is observed between records and the partial summary is
// returned with ctx.Err()
func (s *Service) RunFullEnrichment(ctx context.Context, o domain.RunOptions) (domain.RunSummary, error) {
	o = s.runDefaults(o)
	if err := bind.Struct(o); err != nil {
		return domain.RunSummary{}, err
	}
	if o.RunID == "" {
		o.RunID = s.newID()
	}
	ctx = logger.WithRun(ctx, o.RunID)
	log := logger.C(ctx)

	if !o.DryRun {
		release, err := s.acquireWriter()
		if err != nil {
			return domain.RunSummary{}, err
		}
		defer release()
	}

	sum := domain.RunSummary{RunID: o.RunID, DryRun: o.DryRun, Platform: o.Platform, StartedAt: s.now().UTC()}
	log.Info().
		Bool("dry_run", o.DryRun).
		Str("platform", o.Platform).
		Int("batch_size", o.BatchSize).
		Bool("only_unenriched", o.OnlyUnenriched).
		Msg("enrichment run starting")

	err := s.run(ctx, o, &sum)
	sum.FinishedAt = s.now().UTC()

	result := ResultOK
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		result = ResultCancelled
	default:
		result = ResultFailed
	}
	s.metrics.RecordRun(sum.Mode(), result)
	if s.audit != nil {
		if aerr := s.audit.RecordRun(context.WithoutCancel(ctx), sum, result); aerr != nil {
			log.Warn().Err(aerr).Msg("audit run summary")
		}
	}

	ev := log.Info()
	if err != nil {
		ev = log.Error().Err(err)
	}
	ev.Str("result", result).
		Int("total", sum.Total).
		Int("processed", sum.Processed).
		Int("updated", sum.Updated).
		Int("skipped", sum.Skipped).
		Int("errors", sum.Errors).
		Dur("took", sum.FinishedAt.Sub(sum.StartedAt)).
		Msg("enrichment run finished")
	return sum, err
}

func (s *Service) runDefaults(o domain.RunOptions) domain.RunOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = s.cfg.BatchSize
	}
	if o.ProgressEvery <= 0 {
		o.ProgressEvery = s.cfg.ProgressEvery
	}
	o.Platform = strings.ToLower(strings.TrimSpace(o.Platform))
	return o
}

// run is the paging loop; only store reads and cancellation end it early
func (s *Service) run(ctx context.Context, o domain.RunOptions, sum *domain.RunSummary) error {
	f := domain.Filter{Platform: o.Platform, Unenriched: o.OnlyUnenriched}
	total, err := s.store.Count(ctx, f)
	if err != nil {
		return err
	}
	if o.Limit > 0 && o.Limit < total {
		total = o.Limit
	}
	sum.Total = total

	prog := &progress{every: o.ProgressEvery, fn: o.OnProgress, total: total}
	defer prog.done(sum)

	skip := 0
	for sum.Processed < total {
		if err := ctx.Err(); err != nil {
			return err
		}
		take := min(o.BatchSize, total-sum.Processed)
		page, err := s.store.FindMany(ctx, f, domain.Page{Skip: skip, Take: take})
		if err != nil {
			return err
		}
		if len(page) == 0 {
			break
		}

		written, err := s.processPage(ctx, o, page, sum, prog)
		if err != nil {
			return err
		}
		// written rows drop out of the unenriched filter, so the window shifts by fewer rows
		if o.OnlyUnenriched && !o.DryRun {
			skip += len(page) - written
		} else {
			skip += len(page)
		}
		if len(page) < take {
			break
		}
	}
	return nil
}

// processPage groups the page by platform in fixed order and handles each
// record once. It returns how many records were written
func (s *Service) processPage(ctx context.Context, o domain.RunOptions, page []domain.Record, sum *domain.RunSummary, prog *progress) (int, error) {
	groups := make(map[platforms.Platform][]domain.Record, len(platforms.Order))
	var other []domain.Record
	for _, r := range page {
		p, err := platforms.Parse(r.Platform)
		if err != nil {
			other = append(other, r)
			continue
		}
		groups[p] = append(groups[p], r)
	}

	var (
		written int
		audit   []domain.InferenceResult
	)
	handle := func(rec domain.Record, sig platforms.Signals, fetchErr error) {
		res := s.process(ctx, o, rec, sig, fetchErr)
		sum.Processed++
		switch {
		case res.Outcome == domain.OutcomeUpdated:
			sum.Updated++
			written++
		case res.Outcome == domain.OutcomeError:
			sum.Errors++
		case res.Outcome.Skipped():
			sum.Skipped++
		}
		s.metrics.RecordOutcome(strings.ToLower(rec.Platform), string(res.Outcome))
		if len(res.InferredTags) > 0 && (o.DryRun || o.CollectResults) {
			sum.Results = append(sum.Results, res)
		}
		if len(res.InferredTags) > 0 || res.Outcome == domain.OutcomeError {
			audit = append(audit, res)
		}
		prog.tick(sum)
	}

	var err error
	for _, p := range platforms.Order {
		if err = s.processGroup(ctx, p, groups[p], handle); err != nil {
			break
		}
	}
	if err == nil {
		for _, rec := range other {
			if err = ctx.Err(); err != nil {
				break
			}
			handle(rec, platforms.Signals{}, nil)
		}
	}

	if s.audit != nil && len(audit) > 0 {
		if aerr := s.audit.RecordResults(context.WithoutCancel(ctx), o.RunID, s.now().UTC(), audit); aerr != nil {
			logger.C(ctx).Warn().Err(aerr).Int("results", len(audit)).Msg("audit results")
		}
	}
	return written, err
}

// processGroup fetches signals for one platform group and hands every
// record to handle. Only ctx errors are returned
func (s *Service) processGroup(
	ctx context.Context,
	p platforms.Platform,
	recs []domain.Record,
	handle func(domain.Record, platforms.Signals, error),
) error {
	if len(recs) == 0 {
		return nil
	}
	if bf, ok := s.fetchers.Batch(p); ok {
		n := max(bf.MaxBatch(), 1)
		for start := 0; start < len(recs); start += n {
			if err := ctx.Err(); err != nil {
				return err
			}
			chunk := recs[start:min(start+n, len(recs))]
			names := make([]string, len(chunk))
			for i, r := range chunk {
				names[i] = r.Username
			}
			got, err := bf.FetchTagsBatch(ctx, names)
			if err != nil {
				logger.C(ctx).Warn().Err(err).Str("platform", p.String()).Int("records", len(chunk)).Msg("batch fetch failed")
			}
			for _, r := range chunk {
				if err != nil {
					handle(r, platforms.Signals{}, err)
					continue
				}
				handle(r, platforms.Signals{Live: got[strings.ToLower(strings.TrimSpace(r.Username))]}, nil)
			}
		}
		return nil
	}

	f, hasFetcher := s.fetchers.Get(p)
	for _, r := range recs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !hasFetcher {
			handle(r, platforms.Signals{}, nil)
			continue
		}
		sig, err := platforms.Fetch(ctx, f, r.Username)
		handle(r, sig, err)
	}
	return nil
}

// process builds the proposal for one record and merges it unless dry
func (s *Service) process(ctx context.Context, o domain.RunOptions, rec domain.Record, sig platforms.Signals, fetchErr error) domain.InferenceResult {
	res := domain.InferenceResult{RecordID: rec.ID, Platform: rec.Platform, Username: rec.Username}
	if fetchErr != nil {
		return s.failed(ctx, res, fetchErr, "fetch tags")
	}

	inf := s.proposal(rec, sig)
	res.InferredTags = inf.Tags
	res.Confidence = string(inf.Confidence)
	res.Source = string(inf.Source)
	res.Category = s.cls.InferCategory(rec.CurrentGame, append(rec.Tags[:len(rec.Tags):len(rec.Tags)], inf.Tags...))

	switch {
	case len(inf.Tags) == 0:
		res.Outcome = domain.OutcomeSkipped
	case o.DryRun:
		res.Outcome = domain.OutcomeProposed
	default:
		out, err := s.Merge(ctx, rec.ID, inf.Tags)
		if err != nil {
			return s.failed(ctx, res, err, "merge tags")
		}
		res.Outcome = out
	}
	return res
}

// proposal combines platform tags with classifier output over the live
// signals (game plus fetched strings) and the historical ones (stored top
// games plus fetched history). Tags already on the record are never proposed
func (s *Service) proposal(rec domain.Record, sig platforms.Signals) classify.Inference {
	live := make([]string, 0, len(sig.Live)+1)
	if rec.CurrentGame != "" {
		live = append(live, rec.CurrentGame)
	}
	live = append(live, sig.Live...)
	top := append(rec.TopGames[:len(rec.TopGames):len(rec.TopGames)], sig.History...)

	inf := s.cls.Infer(classify.Signals{CurrentGame: live, TopGames: top, Existing: rec.Tags})
	if !s.cfg.IncludePlatformTags || len(sig.Live) == 0 {
		return inf
	}
	var cand []string
	for _, t := range classify.CanonicalTags(sig.Live) {
		if validTag(t) {
			cand = append(cand, t)
		}
	}
	cand = append(cand, inf.Candidates...)
	inf.Tags = classify.Missing(rec.Tags, cand)
	return inf
}

func (s *Service) failed(ctx context.Context, res domain.InferenceResult, err error, op string) domain.InferenceResult {
	res.Outcome = domain.OutcomeError
	res.Error = err.Error()
	logger.C(ctx).Warn().Err(err).
		Str("platform", res.Platform).
		Str("username", res.Username).
		Str("record_id", res.RecordID).
		Msg(op)
	return res
}

func validTag(t string) bool { return bind.Get().Validator.Var(t, "tagname") == nil }

// progress reports every n processed records and once at the end
type progress struct {
	every, total, last int
	fn                 func(domain.Progress)
}

func (p *progress) snapshot(sum *domain.RunSummary) domain.Progress {
	return domain.Progress{Processed: sum.Processed, Total: p.total, Updated: sum.Updated, Errors: sum.Errors}
}

func (p *progress) tick(sum *domain.RunSummary) {
	if p.fn == nil || sum.Processed%p.every != 0 {
		return
	}
	p.last = sum.Processed
	p.fn(p.snapshot(sum))
}

func (p *progress) done(sum *domain.RunSummary) {
	if p.fn == nil || (p.last == sum.Processed && sum.Processed > 0) {
		return
	}
	p.fn(p.snapshot(sum))
}
