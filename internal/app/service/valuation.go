package service

import (
	"sort"

	"trenchcard/internal/app/port"
	"trenchcard/internal/domain/entity"
	"trenchcard/internal/pkg/utils"
)

// ValuationLimits caps the ranked lists of a snapshot.
type ValuationLimits struct {
	TopAssets          int
	RecentTransactions int
}

// Valuator turns raw chain data and a price table into a WalletSnapshot.
// It performs no I/O.
type Valuator struct {
	registry port.TokenRegistry
	network  entity.NetworkDefinition
	limits   ValuationLimits
	logger   port.Logger
}

// NewValuator creates a Valuator. Non-positive limits default to 5.
func NewValuator(registry port.TokenRegistry, network entity.NetworkDefinition, limits ValuationLimits, logger port.Logger) *Valuator {
	if limits.TopAssets <= 0 {
		limits.TopAssets = 5
	}
	if limits.RecentTransactions <= 0 {
		limits.RecentTransactions = 5
	}
	return &Valuator{
		registry: registry,
		network:  network,
		limits:   limits,
		logger:   logger.Named("Valuator"),
	}
}

// Valuate builds the snapshot for address. The native asset is the first
// candidate; zero amounts, unknown mints and unpriced tokens are dropped.
func (v *Valuator) Valuate(address entity.Address, raw entity.RawChainSnapshot, prices entity.PriceTable) entity.WalletSnapshot {
	assets := make([]entity.AssetValuation, 0, 1+len(raw.TokenAccounts))

	if raw.NativeBalance > 0 {
		amount, _ := utils.ScaleUint(raw.NativeBalance, v.network.Decimals).Float64()
		quote, _ := prices.Lookup(v.network.NativePriceKey)
		assets = append(assets, entity.AssetValuation{
			Name:      v.network.NativeName,
			Symbol:    v.network.NativeSymbol,
			IsNative:  true,
			Amount:    amount,
			PriceUSD:  quote.USD,
			ValueUSD:  amount * quote.USD,
			Change24h: quote.Change24h,
		})
	}

	var dropped int
	for _, acc := range raw.TokenAccounts {
		if acc.Amount == "0" || acc.Amount == "" {
			continue
		}
		meta, ok := v.registry.Lookup(acc.Mint)
		if !ok {
			dropped++
			continue
		}
		scaled, err := utils.ScaleRawAmount(acc.Amount, acc.Decimals)
		if err != nil {
			v.logger.Warn("Skipping token account with unreadable amount",
				"account", acc.Account,
				"mint", acc.Mint,
				"error", err)
			continue
		}
		if scaled.IsZero() {
			continue
		}
		quote, ok := prices.Lookup(meta.PriceKey)
		if !ok {
			dropped++
			continue
		}
		amount, _ := scaled.Float64()
		assets = append(assets, entity.AssetValuation{
			Name:      meta.Name,
			Symbol:    meta.Symbol,
			Mint:      meta.Mint,
			Amount:    amount,
			PriceUSD:  quote.USD,
			ValueUSD:  amount * quote.USD,
			Change24h: quote.Change24h,
		})
	}
	if dropped > 0 {
		v.logger.Debug("Dropped unknown or unpriced tokens", "address", address.String(), "count", dropped)
	}

	var totalValue, totalGains float64
	for _, a := range assets {
		totalValue += a.ValueUSD
		totalGains += a.ValueUSD * a.Change24h / 100
	}

	sort.SliceStable(assets, func(i, j int) bool {
		return assets[i].ValueUSD > assets[j].ValueUSD
	})
	top := append([]entity.AssetValuation{}, utils.Take(assets, v.limits.TopAssets)...)

	sigs := utils.Take(raw.Signatures, v.limits.RecentTransactions)
	txs := make([]entity.TransactionSummary, 0, len(sigs))
	for _, s := range sigs {
		txs = append(txs, entity.TransactionSummary{
			Signature: s.Signature,
			BlockTime: s.BlockTime,
			Status:    s.ConfirmationStatus,
		})
	}

	return entity.WalletSnapshot{
		Address:            address.String(),
		TotalValueUSD:      totalValue,
		TotalGainsUSD:      totalGains,
		PercentageChange:   PercentageChange(totalValue, totalGains),
		TopAssets:          top,
		RecentTransactions: txs,
		IncludedAssets:     len(assets),
		PricesFromFallback: prices.IsFallback(),
		SourceEndpoint:     raw.Endpoint,
	}
}

// PercentageChange is the return over the value 24h ago. It is 0 when that
// value is zero.
func PercentageChange(totalValue, totalGains float64) float64 {
	base := totalValue - totalGains
	if base == 0 {
		return 0
	}
	return totalGains / base * 100
}
