// Package classify maps free-text content signals (game names, platform
// tags) onto the tag vocabulary and coarse category labels described by a
// taxonomy.Table. A Classifier is immutable after New and safe for
// concurrent use
package classify

import (
	"fmt"
	"strings"
	"sync"

	"streamtags/internal/core/normalize"
	"streamtags/internal/core/taxonomy"
)

type phrase struct {
	cat int // index into table.Categories
	n   int // folded byte length
}

// Classifier runs the shared pattern table
type Classifier struct {
	table   *taxonomy.Table
	word    bool
	ac      *automaton
	phrases []phrase
	tagCat  map[string]int // canonical tag -> category index
}

// New compiles t. The table is validated again so hand-built tables get the same checks as loaded ones
func New(t *taxonomy.Table) (*Classifier, error) {
	if t == nil {
		return nil, fmt.Errorf("classify: nil table")
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	c := &Classifier{
		table:  t,
		word:   t.MatchMode != taxonomy.MatchSubstring,
		ac:     newAutomaton(),
		tagCat: make(map[string]int, len(t.Categories)),
	}
	for ci, cat := range t.Categories {
		if cat.Tag != "" {
			c.tagCat[CanonicalTag(cat.Tag)] = ci
		}
		for _, p := range cat.Phrases() {
			f := normalize.Fold(p)
			if f == "" {
				continue
			}
			c.ac.add([]byte(f), len(c.phrases))
			c.phrases = append(c.phrases, phrase{cat: ci, n: len(f)})
		}
	}
	c.ac.build()
	return c, nil
}

var defaultClassifier = sync.OnceValue(func() *Classifier {
	c, err := New(taxonomy.MustDefault())
	if err != nil {
		panic(err)
	}
	return c
})

// Default returns a shared Classifier over the embedded table
func Default() *Classifier { return defaultClassifier() }

// Table returns the table the classifier was built from
func (c *Classifier) Table() *taxonomy.Table { return c.table }

// TargetTag is the tag the binary detector reports (IGAMING by default)
func (c *Classifier) TargetTag() string { return c.table.TargetTag }

// Classify folds text and returns the tag of the first tag-bearing category
// (table order) with a phrase in it, or nil
func (c *Classifier) Classify(text string) []string {
	ci := c.first(normalize.Fold(text), c.tagged)
	if ci < 0 {
		return nil
	}
	return []string{c.table.Categories[ci].Tag}
}

// Matches reports whether text matches the category carrying the target tag
func (c *Classifier) Matches(text string) bool {
	tags := c.Classify(text)
	return len(tags) == 1 && tags[0] == c.table.TargetTag
}

// InferCategory returns exactly one label. Categories are tried in table
// order against the game text and every tag; a tag equal to a category's tag
// also selects it. A non-empty game with no match is the game label,
// anything else the fallback label
func (c *Classifier) InferCategory(currentGame string, tags []string) string {
	best := c.first(normalize.Fold(currentGame), nil)
	for _, tag := range tags {
		if best == 0 {
			break
		}
		ci, ok := c.tagCat[CanonicalTag(tag)]
		if !ok {
			ci = c.first(normalize.Fold(tag), nil)
		}
		if ci >= 0 && (best < 0 || ci < best) {
			best = ci
		}
	}
	switch {
	case best >= 0:
		return c.table.Categories[best].Label
	case strings.TrimSpace(currentGame) != "":
		return c.table.GameLabel
	default:
		return c.table.FallbackLabel
	}
}

func (c *Classifier) tagged(ci int) bool { return c.table.Categories[ci].Tag != "" }

// first returns the lowest category index with a phrase in folded, limited
// to categories accepted by keep (nil keeps all); -1 when none
func (c *Classifier) first(folded string, keep func(int) bool) int {
	if folded == "" {
		return -1
	}
	best := -1
	c.ac.scan(folded, func(end, id int) bool {
		p := c.phrases[id]
		if best >= 0 && p.cat >= best {
			return true
		}
		if keep != nil && !keep(p.cat) {
			return true
		}
		if c.word && !boundaryOK(folded, end-p.n, end) {
			return true
		}
		best = p.cat
		return best != 0
	})
	return best
}

// CanonicalTag maps a raw platform string into the unified tag vocabulary:
// control characters dropped, whitespace collapsed, upper-cased
func CanonicalTag(raw string) string {
	return strings.ToUpper(normalize.Clean(raw))
}

// CanonicalTags applies CanonicalTag and drops empties and repeats, keeping first-seen order
func CanonicalTags(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		t := CanonicalTag(r)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
