// Package repo provides the streamer record store (Postgres or SQLite) and
// the ClickHouse run audit sink for the enrichment service
package repo

import (
	"fmt"
	"strings"

	"streamtags/internal/modkit/repokit"
	"streamtags/internal/services/enrichment/domain"
)

// Storage is the record store contract
type Storage = domain.StorePort

type (
	pgBinder   struct{}
	liteBinder struct{}
)

// NewPG constructs a repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return pgBinder{} }

// NewLite constructs a repo binder for SQLite
func NewLite() repokit.Binder[Storage] { return liteBinder{} }

// Bind implements repokit.Binder
func (pgBinder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Bind implements repokit.Binder
func (liteBinder) Bind(q repokit.Queryer) Storage { return &lite{q: q} }

const selectCols = `id, platform, username, %s, %s, %s, %s, %s`

// dialect bits that differ between the two stores
type dialect struct {
	ph         func(n int) string
	tagsEmpty  string
	tagsFilled string
}

var (
	pgDialect = dialect{
		ph:         func(n int) string { return fmt.Sprintf("$%d", n) },
		tagsEmpty:  "cardinality(COALESCE(tags, '{}')) = 0",
		tagsFilled: "cardinality(COALESCE(tags, '{}')) > 0",
	}
	liteDialect = dialect{
		ph:         func(int) string { return "?" },
		tagsEmpty:  "json_array_length(COALESCE(NULLIF(tags, ''), '[]')) = 0",
		tagsFilled: "json_array_length(COALESCE(NULLIF(tags, ''), '[]')) > 0",
	}
)

// where renders the filter; args start at placeholder 1
func (d dialect) where(f domain.Filter) (string, []any) {
	var conds []string
	var args []any
	if p := strings.TrimSpace(f.Platform); p != "" {
		args = append(args, strings.ToLower(p))
		conds = append(conds, "lower(platform) = "+d.ph(len(args)))
	}
	if f.TagsEmpty != nil {
		if *f.TagsEmpty {
			conds = append(conds, d.tagsEmpty)
		} else {
			conds = append(conds, d.tagsFilled)
		}
	}
	if f.Unenriched {
		conds = append(conds, "last_enrichment_update IS NULL")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
