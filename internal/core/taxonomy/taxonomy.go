// Package taxonomy holds the shared pattern table used by both the binary
// iGaming detector and the category inferrer. The table is data: the default
// ships embedded and a JSON or YAML file can replace it at startup
package taxonomy

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed patterns.json
var embedded []byte

// MatchMode selects how keywords are located in text
type MatchMode string

const (
	// MatchWord requires non-word characters or string edges around a keyword
	MatchWord MatchMode = "word"
	// MatchSubstring accepts any containment
	MatchSubstring MatchMode = "substring"
)

// Category is one coarse content label with the phrases that indicate it.
// Tag is optional; categories with a tag are emitted by the binary detector
type Category struct {
	Label    string   `json:"label" yaml:"label"`
	Tag      string   `json:"tag,omitempty" yaml:"tag,omitempty"`
	Keywords []string `json:"keywords" yaml:"keywords"`
	Titles   []string `json:"titles,omitempty" yaml:"titles,omitempty"`
}

// Phrases returns keywords followed by titles
func (c Category) Phrases() []string {
	out := make([]string, 0, len(c.Keywords)+len(c.Titles))
	out = append(out, c.Keywords...)
	return append(out, c.Titles...)
}

// Table is the ordered pattern table. Category order is priority order
type Table struct {
	Version       int        `json:"version" yaml:"version"`
	MatchMode     MatchMode  `json:"match_mode" yaml:"match_mode"`
	TargetTag     string     `json:"target_tag" yaml:"target_tag"`
	Categories    []Category `json:"categories" yaml:"categories"`
	GameLabel     string     `json:"game_label" yaml:"game_label"`
	FallbackLabel string     `json:"fallback_label" yaml:"fallback_label"`
}

// Default returns the embedded table
func Default() (*Table, error) {
	return Parse(embedded, "json")
}

// MustDefault is Default for package init and tests; the embedded table is
// covered by tests so a failure here is a build defect
func MustDefault() *Table {
	t, err := Default()
	if err != nil {
		panic(err)
	}
	return t
}

// LoadFile reads a table from a .json, .yaml or .yml file
func LoadFile(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: read %s: %w", path, err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return Parse(b, "json")
	case ".yaml", ".yml":
		return Parse(b, "yaml")
	default:
		return nil, fmt.Errorf("taxonomy: unsupported file type %q", ext)
	}
}

// Parse decodes a table in the given format ("json" or "yaml"), fills
// defaults and validates it
func Parse(b []byte, format string) (*Table, error) {
	var t Table
	var err error
	switch format {
	case "json":
		err = json.Unmarshal(b, &t)
	case "yaml":
		err = yaml.Unmarshal(b, &t)
	default:
		return nil, fmt.Errorf("taxonomy: unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("taxonomy: parse %s: %w", format, err)
	}
	t.fill()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Table) fill() {
	if t.MatchMode == "" {
		t.MatchMode = MatchWord
	}
	if t.GameLabel == "" {
		t.GameLabel = "Gaming"
	}
	if t.FallbackLabel == "" {
		t.FallbackLabel = "Variety"
	}
	t.TargetTag = strings.TrimSpace(t.TargetTag)
}

// Validate rejects tables the classifier cannot use
func (t *Table) Validate() error {
	if len(t.Categories) == 0 {
		return fmt.Errorf("taxonomy: no categories")
	}
	switch t.MatchMode {
	case MatchWord, MatchSubstring:
	default:
		return fmt.Errorf("taxonomy: unknown match_mode %q", t.MatchMode)
	}
	seen := make(map[string]struct{}, len(t.Categories))
	targetFound := t.TargetTag == ""
	for i, c := range t.Categories {
		label := strings.TrimSpace(c.Label)
		if label == "" {
			return fmt.Errorf("taxonomy: category %d has no label", i)
		}
		if _, dup := seen[label]; dup {
			return fmt.Errorf("taxonomy: duplicate label %q", label)
		}
		seen[label] = struct{}{}
		if len(c.Keywords)+len(c.Titles) == 0 {
			return fmt.Errorf("taxonomy: category %q has no keywords", label)
		}
		if c.Tag != "" && c.Tag == t.TargetTag {
			targetFound = true
		}
	}
	if !targetFound {
		return fmt.Errorf("taxonomy: target_tag %q not carried by any category", t.TargetTag)
	}
	if t.FallbackLabel == t.GameLabel {
		return fmt.Errorf("taxonomy: fallback_label must differ from game_label")
	}
	if _, dup := seen[t.FallbackLabel]; dup {
		return fmt.Errorf("taxonomy: fallback_label %q collides with a category", t.FallbackLabel)
	}
	return nil
}

// Labels returns every label the category inferrer can produce, in priority order
func (t *Table) Labels() []string {
	out := make([]string, 0, len(t.Categories)+2)
	seen := make(map[string]struct{}, len(t.Categories)+2)
	add := func(l string) {
		if _, ok := seen[l]; ok {
			return
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	for _, c := range t.Categories {
		add(c.Label)
	}
	add(t.GameLabel)
	add(t.FallbackLabel)
	return out
}
