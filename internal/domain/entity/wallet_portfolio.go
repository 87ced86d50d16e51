package entity

import "time"

// AssetValuation is one held asset after decimal adjustment and pricing.
type AssetValuation struct {
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Mint      string  `json:"mint,omitempty"`
	IsNative  bool    `json:"isNative"`
	Amount    float64 `json:"amount"`
	PriceUSD  float64 `json:"priceUSD"`
	ValueUSD  float64 `json:"valueUSD"`
	Change24h float64 `json:"priceChange24h"`
}

// TransactionSummary is a recent signature carried into the snapshot untouched.
// Truncation and time formatting happen in the presentation step.
type TransactionSummary struct {
	Signature string     `json:"signature"`
	BlockTime *time.Time `json:"blockTime,omitempty"`
	Status    string     `json:"status"`
}

// WalletSnapshot is the aggregated valuation of one address. TopAssets is
// sorted by ValueUSD descending; totals cover every included asset, not just
// the top ones.
type WalletSnapshot struct {
	Address            string               `json:"address"`
	TotalValueUSD      float64              `json:"totalValueUSD"`
	TotalGainsUSD      float64              `json:"totalGainsUSD"`
	PercentageChange   float64              `json:"percentageChange"`
	TopAssets          []AssetValuation     `json:"topAssets"`
	RecentTransactions []TransactionSummary `json:"recentTransactions"`
	IncludedAssets     int                  `json:"includedAssets"`
	PricesFromFallback bool                 `json:"pricesFromFallback"`
	SourceEndpoint     string               `json:"sourceEndpoint"`
}
