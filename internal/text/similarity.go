package text

import (
	"math"
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"github.com/xrash/smetrics"
)

// StringSimilarity scores how alike two strings are on a 0-100 scale.
// The scoring pipeline is written against this capability so it is not
// coupled to one algorithm's numeric scale; tests pin expected scores to
// the chosen implementation.
type StringSimilarity interface {
	// Ratio compares the full strings.
	Ratio(a, b string) int
	// PartialRatio compares the shorter string against its best-matching
	// window of the longer one.
	PartialRatio(a, b string) int
	// TokenSetRatio compares the strings as unordered token sets.
	TokenSetRatio(a, b string) int
}

// LevenshteinSimilarity is the default implementation, an edit-distance
// fuzzy matcher with fuzzywuzzy semantics. The engine's numeric
// thresholds (fuzzy 70, suggest 60) are calibrated to this scale.
type LevenshteinSimilarity struct{}

// Ratio returns the edit-distance ratio of a and b.
func (LevenshteinSimilarity) Ratio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	return fuzzy.Ratio(a, b)
}

// PartialRatio returns the best-window edit-distance ratio of a and b.
func (LevenshteinSimilarity) PartialRatio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	return fuzzy.PartialRatio(a, b)
}

// TokenSetRatio returns the token-set ratio of a and b.
func (LevenshteinSimilarity) TokenSetRatio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	return fuzzy.TokenSetRatio(a, b)
}

// JaroWinklerSimilarity is an alternate implementation built on the
// Jaro-Winkler metric. Its scale is more generous than edit distance for
// short strings sharing a prefix; deployments switching to it should
// re-tune thresholds.
type JaroWinklerSimilarity struct{}

// standard Jaro-Winkler parameters
const (
	jwBoostThreshold = 0.7
	jwPrefixSize     = 4
)

// Ratio returns the Jaro-Winkler distance of a and b scaled to 0-100.
func (JaroWinklerSimilarity) Ratio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	return int(math.Round(smetrics.JaroWinkler(a, b, jwBoostThreshold, jwPrefixSize) * 100))
}

// PartialRatio slides the shorter string across the longer one and keeps
// the best window score.
func (j JaroWinklerSimilarity) PartialRatio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	best := 0
	for i := 0; i+len(short) <= len(long); i++ {
		window := string(long[i : i+len(short)])
		if s := j.Ratio(string(short), window); s > best {
			best = s
		}
	}
	return best
}

// TokenSetRatio compares sorted deduplicated token joins.
func (j JaroWinklerSimilarity) TokenSetRatio(a, b string) int {
	return j.Ratio(sortedTokenJoin(a), sortedTokenJoin(b))
}

func sortedTokenJoin(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	seen := make(map[string]struct{}, len(fields))
	uniq := fields[:0]
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		uniq = append(uniq, f)
	}
	sort.Strings(uniq)
	return strings.Join(uniq, " ")
}
