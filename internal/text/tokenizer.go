package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-ego/gse"
	"go.uber.org/zap"
)

// Tokenizer splits normalized text into lowercase tokens. Chinese runs
// are segmented with a dictionary (gse search-mode cut); Latin script is
// split on whitespace. Tokens of a single rune and stop-words are dropped.
// A Tokenizer is immutable after construction and safe for concurrent use.
type Tokenizer struct {
	seg    *gse.Segmenter
	logger *zap.Logger
}

// NewTokenizer builds a Tokenizer. If the segmentation dictionary cannot
// be loaded the tokenizer degrades to whitespace plus character-bigram
// segmentation instead of failing: a reduced-quality result is preferable
// to no result.
func NewTokenizer(logger *zap.Logger) *Tokenizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	var seg gse.Segmenter
	if err := seg.LoadDict(); err != nil {
		logger.Warn("segmentation dictionary unavailable, using bigram fallback", zap.Error(err))
		return &Tokenizer{logger: logger}
	}
	return &Tokenizer{seg: &seg, logger: logger}
}

// Tokenize returns the ordered token sequence for s. It is a pure
// function: no shared state is touched and the full set is materialized
// for multi-pass scoring.
func (t *Tokenizer) Tokenize(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var raw []string
	if t.seg != nil {
		raw = t.seg.CutSearch(s, true)
	} else {
		raw = bigramCut(s)
	}

	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if utf8.RuneCountInString(tok) <= 1 {
			continue
		}
		if isStopword(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// bigramCut is the degraded segmentation path: whitespace fields, with CJK
// runs expanded into overlapping rune bigrams so they survive the
// single-rune filter.
func bigramCut(s string) []string {
	var out []string
	for _, field := range strings.Fields(s) {
		runes := []rune(field)
		cjkStart := -1
		flush := func(end int) {
			if cjkStart < 0 {
				return
			}
			run := runes[cjkStart:end]
			if len(run) == 1 {
				out = append(out, string(run))
			}
			for i := 0; i+1 < len(run); i++ {
				out = append(out, string(run[i:i+2]))
			}
			cjkStart = -1
		}
		wordStart := -1
		for i, r := range runes {
			if unicode.Is(unicode.Han, r) {
				if wordStart >= 0 {
					out = append(out, string(runes[wordStart:i]))
					wordStart = -1
				}
				if cjkStart < 0 {
					cjkStart = i
				}
				continue
			}
			flush(i)
			if wordStart < 0 {
				wordStart = i
			}
		}
		flush(len(runes))
		if wordStart >= 0 {
			out = append(out, string(runes[wordStart:]))
		}
	}
	return out
}
