package port

import (
	"context"

	"trenchcard/internal/domain/entity"
)

// TokenRegistry resolves mints to display metadata.
type TokenRegistry interface {
	// Lookup returns the metadata for mint, or false when the mint is unknown.
	Lookup(mint string) (entity.TokenMetadata, bool)
	// PriceKeys lists the price keys of every registered token.
	PriceKeys() []string
}

// PriceOracle performs a single price request. It reports HTTP 429 as an
// error matching httpclient.ErrRateLimited.
type PriceOracle interface {
	SimplePrice(ctx context.Context, ids []string) (map[string]entity.PriceQuote, error)
}

// PriceSource returns a price table for the given keys. It never fails: when
// the oracle cannot be reached it answers with the static fallback table.
type PriceSource interface {
	FetchPrices(ctx context.Context, keys []string) entity.PriceTable
}
