package classify

import (
	"unicode"
	"unicode/utf8"
)

// isWord reports whether r belongs to a word for boundary checks: letters,
// numbers and connector punctuation. Hyphens, apostrophes and the rest of
// punctuation separate words
func isWord(r rune) bool {
	if r == utf8.RuneError || r == 0 {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.In(r, unicode.Mn, unicode.Pc)
}

// boundaryOK reports whether s[start:end] is delimited by non-word runes or string edges
func boundaryOK(s string, start, end int) bool {
	var prev, next rune
	if start > 0 {
		prev, _ = utf8.DecodeLastRuneInString(s[:start])
	}
	if end < len(s) {
		next, _ = utf8.DecodeRuneInString(s[end:])
	}
	return !isWord(prev) && !isWord(next)
}
