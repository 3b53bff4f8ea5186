package sortmode

// Mode is the result ordering strategy.
type Mode string

// Sort mode constants.
const (
	// Relevance orders by descending relevance score, stable on ties.
	Relevance Mode = "relevance"
	PriceAsc  Mode = "price_asc"
	PriceDesc Mode = "price_desc"
	StockAsc  Mode = "stock_asc"
	StockDesc Mode = "stock_desc"
	Name      Mode = "name"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	switch m {
	case Relevance, PriceAsc, PriceDesc, StockAsc, StockDesc, Name:
		return true
	}
	return false
}
