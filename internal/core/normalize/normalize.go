// Package normalize folds free text (game names, platform tags) into a
// comparable form for keyword matching
// Pipeline order
// 1 drop control characters and invalid UTF-8
// 2 NFKD decomposition so accents split from their base letters
// 3 Case folding
// 4 Remove combining marks and format characters (ZWJ, ZWNJ, BOM)
// 5 Width fold fullwidth to ASCII
// 6 NFC recomposition of whatever survived
// 7 Collapse whitespace to single spaces and trim
//
// Digits are kept as is; game titles like "Crazy Time 2" depend on them
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// pool of fresh transformer chains; a chain is stateful and not safe to share
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			runes.Remove(runes.Predicate(isControl)),
			norm.NFKD,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Mn)),
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
			norm.NFC,
		)
	},
}

// Fold returns the normalized form of s. It is pure and idempotent
func Fold(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		// transformers above never fail on valid UTF-8; fall back to a plain lower
		out = strings.ToLower(s)
	}
	return collapseSpaces(out)
}

// Clean trims s, drops control characters and collapses whitespace runs
// without changing case or letters. Used on raw platform strings before they
// become tags
func Clean(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")
	s = strings.Map(func(r rune) rune {
		if isControl(r) {
			return -1
		}
		return r
	}, s)
	return collapseSpaces(s)
}

// isControl matches C0/C1 controls and DEL; whitespace controls are left for collapseSpaces
func isControl(r rune) bool {
	switch r {
	case '\n', '\r', '\t':
		return false
	}
	return unicode.IsControl(r)
}

// collapseSpaces converts whitespace runs to a single ASCII space and trims the edges
func collapseSpaces(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inWS := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inWS = true
			continue
		}
		if inWS && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inWS = false
		b.WriteRune(r)
	}
	return b.String()
}
