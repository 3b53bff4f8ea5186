// Package text provides query normalization, CJK-aware tokenization, and
// the pluggable string-similarity capability the scoring pipeline runs on.
package text

import (
	"regexp"
	"strings"
)

// nonWord matches every character outside CJK ideographs, Unicode letters
// and digits, underscore, and whitespace. \w would be ASCII-only under RE2
// and strip accented Latin, kana and Cyrillic letters.
var nonWord = regexp.MustCompile(`[^\p{Han}\p{L}\p{N}_\s]+`)

// NormalizeQuery strips punctuation and control characters from raw query
// text: anything outside {CJK ideographs, letters, digits, underscore,
// whitespace} becomes a space, whitespace runs collapse to one space, and
// the result is trimmed. Whitespace-only input normalizes to "", which
// signals "no text search" to the ranking engine.
func NormalizeQuery(raw string) string {
	cleaned := nonWord.ReplaceAllString(raw, " ")
	return strings.Join(strings.Fields(cleaned), " ")
}
