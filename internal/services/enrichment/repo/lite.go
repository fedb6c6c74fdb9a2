package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"streamtags/internal/modkit/repokit"
	perr "streamtags/internal/platform/errors"
	"streamtags/internal/platform/store"
	"streamtags/internal/services/enrichment/domain"
)

// LiteSchema creates the streamers table for the embedded store.
// tags and top_games hold JSON arrays; timestamps are RFC 3339 UTC text
const LiteSchema = `
CREATE TABLE IF NOT EXISTS streamers (
	id                     TEXT PRIMARY KEY,
	platform               TEXT NOT NULL,
	username               TEXT NOT NULL,
	tags                   TEXT NOT NULL DEFAULT '[]',
	current_game           TEXT,
	top_games              TEXT NOT NULL DEFAULT '[]',
	last_enrichment_update TEXT,
	updated_at             TEXT,
	UNIQUE (platform, username)
)`

// EnsureLiteSchema applies LiteSchema
func EnsureLiteSchema(ctx context.Context, q repokit.Queryer) error {
	_, err := q.Exec(ctx, LiteSchema)
	return err
}

// lite is the SQLite implementation of Storage
type lite struct{ q repokit.Queryer }

var liteSelect = fmt.Sprintf(selectCols,
	"COALESCE(NULLIF(tags, ''), '[]')", "COALESCE(current_game, '')", "COALESCE(NULLIF(top_games, ''), '[]')",
	"COALESCE(last_enrichment_update, '')", "COALESCE(updated_at, '')")

func scanLite(r store.Row) (domain.Record, error) {
	var rec domain.Record
	var tags, top, last, upd string
	if err := r.Scan(&rec.ID, &rec.Platform, &rec.Username, &tags, &rec.CurrentGame, &top, &last, &upd); err != nil {
		return rec, err
	}
	var err error
	if rec.Tags, err = decodeList(tags); err != nil {
		return rec, perr.Wrapf(err, perr.ErrorCodeDB, "streamer %s tags", rec.ID)
	}
	if rec.TopGames, err = decodeList(top); err != nil {
		return rec, perr.Wrapf(err, perr.ErrorCodeDB, "streamer %s top_games", rec.ID)
	}
	if rec.LastEnrichmentUpdate, err = decodeTime(last); err != nil {
		return rec, perr.Wrapf(err, perr.ErrorCodeDB, "streamer %s last_enrichment_update", rec.ID)
	}
	if rec.UpdatedAt, err = decodeTime(upd); err != nil {
		return rec, perr.Wrapf(err, perr.ErrorCodeDB, "streamer %s updated_at", rec.ID)
	}
	return rec, nil
}

// Count implements Storage
func (s *lite) Count(ctx context.Context, f domain.Filter) (int, error) {
	w, args := liteDialect.where(f)
	n, err := store.Scalar[int64](ctx, s.q, "SELECT count(*) FROM streamers"+w, args...)
	if err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeDB, "count streamers")
	}
	return int(n), nil
}

// FindMany implements Storage
func (s *lite) FindMany(ctx context.Context, f domain.Filter, p domain.Page) ([]domain.Record, error) {
	w, args := liteDialect.where(f)
	args = append(args, p.Take, p.Skip)
	out, err := store.Many(ctx, s.q, scanLite,
		"SELECT "+liteSelect+" FROM streamers"+w+" ORDER BY id LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "find streamers")
	}
	return out, nil
}

// FindUnique implements Storage
func (s *lite) FindUnique(ctx context.Context, id string) (domain.Record, error) {
	rec, err := store.One(ctx, s.q, scanLite, "SELECT "+liteSelect+" FROM streamers WHERE id = ?", id)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.Record{}, perr.NotFoundf("streamer %s not found", id)
		}
		return domain.Record{}, perr.Wrapf(err, perr.ErrorCodeDB, "find streamer %s", id)
	}
	return rec, nil
}

// UpdateTags implements Storage
func (s *lite) UpdateTags(ctx context.Context, id string, tags []string, at time.Time, expectedUpdatedAt *time.Time) error {
	b, err := json.Marshal(nonNil(tags))
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode tags")
	}
	var expected any
	if expectedUpdatedAt != nil {
		expected = encodeTime(*expectedUpdatedAt)
	}
	stamp := encodeTime(at)
	// rows written elsewhere may carry CURRENT_TIMESTAMP or offset layouts,
	// so fall back to comparing instants when the text differs
	err = store.ExecOne(ctx, s.q, `
		UPDATE streamers
		   SET tags = ?, last_enrichment_update = ?, updated_at = ?
		 WHERE id = ?
		   AND (updated_at IS ? OR julianday(updated_at) = julianday(?))`,
		string(b), stamp, stamp, id, expected, expected)
	if err != nil && !perr.IsCode(err, perr.ErrorCodeConflict) {
		return perr.Wrapf(err, perr.ErrorCodeDB, "update streamer %s tags", id)
	}
	return err
}

func decodeList(s string) ([]string, error) {
	out := []string{}
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}

func encodeTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func decodeTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized timestamp %q", s)
}
