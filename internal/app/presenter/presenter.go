// Package presenter turns a WalletSnapshot into its display form: rounded
// strings, shortened signatures and local timestamps.
package presenter

import (
	"time"

	"trenchcard/internal/domain/entity"
	"trenchcard/internal/pkg/utils"
)

// TimestampLayout is the transaction time format, e.g. "3/14/2024, 9:05:07 PM".
const TimestampLayout = "1/2/2006, 3:04:05 PM"

const signaturePrefixLen = 12

type AssetView struct {
	Name           string  `json:"name"`
	Symbol         string  `json:"symbol"`
	Amount         string  `json:"amount"`
	Value          string  `json:"value"`
	PriceChange24h float64 `json:"priceChange24h"`
}

type TransactionView struct {
	Signature string `json:"signature"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
}

// WalletSnapshotView is the JSON body of the wallet endpoint and the input of
// the card template.
type WalletSnapshotView struct {
	Address            string            `json:"address"`
	TotalBalance       string            `json:"totalBalance"`
	TotalGains         string            `json:"totalGains"`
	PercentageChange   string            `json:"percentageChange"`
	TopAssets          []AssetView       `json:"topAssets"`
	RecentTransactions []TransactionView `json:"recentTransactions"`
	PricesFromFallback bool              `json:"pricesFromFallback"`

	// raw numbers kept for styling decisions
	gains      float64
	percentage float64
}

// GainsNegative reports whether the 24h gains are below zero.
func (v WalletSnapshotView) GainsNegative() bool { return v.gains < 0 }

// PercentageNegative reports whether the 24h change is below zero.
func (v WalletSnapshotView) PercentageNegative() bool { return v.percentage < 0 }

// Present formats s. A nil loc means UTC.
func Present(s entity.WalletSnapshot, loc *time.Location) WalletSnapshotView {
	if loc == nil {
		loc = time.UTC
	}

	assets := make([]AssetView, 0, len(s.TopAssets))
	for _, a := range s.TopAssets {
		assets = append(assets, AssetView{
			Name:           a.Name,
			Symbol:         a.Symbol,
			Amount:         utils.Fixed(a.Amount, 4),
			Value:          utils.Fixed(a.ValueUSD, 2),
			PriceChange24h: a.Change24h,
		})
	}

	txs := make([]TransactionView, 0, len(s.RecentTransactions))
	for _, tx := range s.RecentTransactions {
		txs = append(txs, TransactionView{
			Signature: ShortSignature(tx.Signature),
			Timestamp: FormatTimestamp(tx.BlockTime, loc),
			Status:    tx.Status,
		})
	}

	return WalletSnapshotView{
		Address:            s.Address,
		TotalBalance:       utils.Fixed(s.TotalValueUSD, 2),
		TotalGains:         utils.Fixed(s.TotalGainsUSD, 2),
		PercentageChange:   utils.Fixed(s.PercentageChange, 2),
		TopAssets:          assets,
		RecentTransactions: txs,
		PricesFromFallback: s.PricesFromFallback,
		gains:              s.TotalGainsUSD,
		percentage:         s.PercentageChange,
	}
}

// ShortSignature keeps the first 12 characters followed by "...".
func ShortSignature(sig string) string {
	r := []rune(sig)
	if len(r) <= signaturePrefixLen {
		return sig + "..."
	}
	return string(r[:signaturePrefixLen]) + "..."
}

// FormatTimestamp renders t in loc, or "unknown" when t is nil.
func FormatTimestamp(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "unknown"
	}
	return t.In(loc).Format(TimestampLayout)
}
