package text

// stopwords is the fixed stop-word set dropped during tokenization.
// Covers the high-frequency Chinese function words and English articles,
// conjunctions and prepositions that carry no retrieval signal.
var stopwords = map[string]struct{}{
	// Chinese
	"的": {}, "了": {}, "和": {}, "与": {}, "或": {}, "在": {},
	"是": {}, "有": {}, "个": {}, "及": {}, "等": {}, "为": {},
	// English
	"the": {}, "a": {}, "an": {}, "of": {}, "and": {}, "or": {},
	"for": {}, "to": {}, "in": {}, "on": {}, "at": {}, "with": {},
	"is": {}, "are": {}, "be": {},
}

func isStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}
