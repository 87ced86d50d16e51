package entity

// TokenMetadata is the display information for a known SPL mint.
// PriceKey is the oracle identifier, distinct from the mint address.
type TokenMetadata struct {
	Mint     string `json:"mint" yaml:"mint"`
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	PriceKey string `json:"priceKey" yaml:"priceKey"`
}
