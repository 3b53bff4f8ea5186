package search

// Field identifies a searchable product field.
type Field string

// Searchable fields.
const (
	FieldName          Field = "name"
	FieldBarcode       Field = "barcode"
	FieldKeywords      Field = "keywords"
	FieldDescription   Field = "description"
	FieldCategory      Field = "category"
	FieldSpecification Field = "specification"
)

// FieldWeight pairs a searchable field with its relevance weight. The
// weight is the score a case-insensitive exact match on that field earns.
type FieldWeight struct {
	Field  Field
	Weight int
}

// DefaultWeights returns the fixed field weight table. Name dominates, so
// an exact name hit always scores 100.
func DefaultWeights() []FieldWeight {
	return []FieldWeight{
		{FieldName, 100},
		{FieldBarcode, 90},
		{FieldKeywords, 80},
		{FieldDescription, 60},
		{FieldCategory, 50},
		{FieldSpecification, 40},
	}
}

// Scoring defaults.
const (
	DefaultFuzzyThreshold     = 70
	DefaultSimilarityMinScore = 30
	DefaultSuggestMinScore    = 60
	DefaultSimilarLimit       = 10
	DefaultSuggestLimit       = 10
)

// Config holds the engine's scoring parameters. The zero value is usable:
// New fills every unset field with its default, so tests can override a
// single knob without restating the rest.
type Config struct {
	// FuzzyThreshold is the minimum partial-ratio for a fuzzy field match.
	FuzzyThreshold int
	// SimilarityMinScore is the cutoff below which related-item results
	// are discarded.
	SimilarityMinScore int
	// SuggestMinScore is the minimum fuzzy score for a completion candidate.
	SuggestMinScore int
	DefaultPageSize int
	MaxPageSize     int
	// Weights overrides the searchable field weight table.
	Weights []FieldWeight
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.FuzzyThreshold <= 0 {
		c.FuzzyThreshold = DefaultFuzzyThreshold
	}
	if c.SimilarityMinScore <= 0 {
		c.SimilarityMinScore = DefaultSimilarityMinScore
	}
	if c.SuggestMinScore <= 0 {
		c.SuggestMinScore = DefaultSuggestMinScore
	}
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = 20
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = 100
	}
	if len(c.Weights) == 0 {
		c.Weights = DefaultWeights()
	}
	return c
}
