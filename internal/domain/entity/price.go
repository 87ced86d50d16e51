package entity

// PriceQuote is the USD price of one asset and its 24h percent change.
type PriceQuote struct {
	USD       float64 `json:"usd"`
	Change24h float64 `json:"usd_24h_change"`
}

// PriceTable maps price keys to quotes. Values are copied on construction and
// the table exposes no mutators.
type PriceTable struct {
	quotes   map[string]PriceQuote
	fallback bool
}

// NewPriceTable copies quotes into a new table. fallback marks tables built
// from the static placeholder prices.
func NewPriceTable(quotes map[string]PriceQuote, fallback bool) PriceTable {
	copied := make(map[string]PriceQuote, len(quotes))
	for k, v := range quotes {
		copied[k] = v
	}
	return PriceTable{quotes: copied, fallback: fallback}
}

// Lookup returns the quote for key.
func (t PriceTable) Lookup(key string) (PriceQuote, bool) {
	q, ok := t.quotes[key]
	return q, ok
}

// IsFallback reports whether the table came from the static placeholder prices.
func (t PriceTable) IsFallback() bool {
	return t.fallback
}

func (t PriceTable) Len() int {
	return len(t.quotes)
}
