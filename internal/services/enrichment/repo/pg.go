package repo

import (
	"context"
	"fmt"
	"time"

	"streamtags/internal/modkit/repokit"
	perr "streamtags/internal/platform/errors"
	"streamtags/internal/platform/store"
	"streamtags/internal/services/enrichment/domain"
)

// pg reads and writes table streamers with tags and top_games as text[]
type pg struct{ q repokit.Queryer }

var pgSelect = fmt.Sprintf(selectCols,
	"COALESCE(tags, '{}')", "COALESCE(current_game, '')", "COALESCE(top_games, '{}')",
	"last_enrichment_update", "updated_at")

func scanPG(r store.Row) (domain.Record, error) {
	var rec domain.Record
	err := r.Scan(&rec.ID, &rec.Platform, &rec.Username, &rec.Tags, &rec.CurrentGame, &rec.TopGames,
		&rec.LastEnrichmentUpdate, &rec.UpdatedAt)
	return rec, err
}

// Count implements Storage
func (s *pg) Count(ctx context.Context, f domain.Filter) (int, error) {
	w, args := pgDialect.where(f)
	n, err := store.Scalar[int64](ctx, s.q, "SELECT count(*) FROM streamers"+w, args...)
	if err != nil {
		return 0, perr.FromPostgres(err, "count streamers")
	}
	return int(n), nil
}

// FindMany implements Storage
func (s *pg) FindMany(ctx context.Context, f domain.Filter, p domain.Page) ([]domain.Record, error) {
	w, args := pgDialect.where(f)
	args = append(args, p.Take, p.Skip)
	sql := fmt.Sprintf("SELECT %s FROM streamers%s ORDER BY id LIMIT $%d OFFSET $%d",
		pgSelect, w, len(args)-1, len(args))
	out, err := store.Many(ctx, s.q, scanPG, sql, args...)
	if err != nil {
		return nil, perr.FromPostgres(err, "find streamers")
	}
	return out, nil
}

// FindUnique implements Storage
func (s *pg) FindUnique(ctx context.Context, id string) (domain.Record, error) {
	rec, err := store.One(ctx, s.q, scanPG, "SELECT "+pgSelect+" FROM streamers WHERE id = $1", id)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.Record{}, perr.NotFoundf("streamer %s not found", id)
		}
		return domain.Record{}, perr.FromPostgresf(err, "find streamer %s", id)
	}
	return rec, nil
}

// UpdateTags implements Storage
func (s *pg) UpdateTags(ctx context.Context, id string, tags []string, at time.Time, expectedUpdatedAt *time.Time) error {
	err := store.ExecOne(ctx, s.q, `
		UPDATE streamers
		   SET tags = $2, last_enrichment_update = $3, updated_at = $3
		 WHERE id = $1
		   AND updated_at IS NOT DISTINCT FROM $4`,
		id, tags, at.UTC(), expectedUpdatedAt)
	if err != nil && !perr.IsCode(err, perr.ErrorCodeConflict) {
		return perr.FromPostgresf(err, "update streamer %s tags", id)
	}
	return err
}
