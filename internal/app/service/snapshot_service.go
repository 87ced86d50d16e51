package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"trenchcard/internal/app/port"
	"trenchcard/internal/domain/entity"
	"trenchcard/internal/pkg/metrics"
	"trenchcard/internal/pkg/utils"
)

// SnapshotServiceImpl implements port.SnapshotService.
type SnapshotServiceImpl struct {
	chain     port.ChainDataClient
	prices    port.PriceSource
	registry  port.TokenRegistry
	valuator  *Valuator
	network   entity.NetworkDefinition
	priceKeys []string
	logger    port.Logger
}

// NewSnapshotService creates a new SnapshotServiceImpl. extraPriceKeys are
// requested from the oracle alongside the native and registry keys.
func NewSnapshotService(
	chain port.ChainDataClient,
	prices port.PriceSource,
	registry port.TokenRegistry,
	network entity.NetworkDefinition,
	limits ValuationLimits,
	extraPriceKeys []string,
	logger port.Logger,
) *SnapshotServiceImpl {
	return &SnapshotServiceImpl{
		chain:     chain,
		prices:    prices,
		registry:  registry,
		valuator:  NewValuator(registry, network, limits, logger),
		network:   network,
		priceKeys: utils.UniqueStrings([]string{network.NativePriceKey}, registry.PriceKeys(), extraPriceKeys),
		logger:    logger.Named("SnapshotService"),
	}
}

// BuildSnapshot implements port.SnapshotService. The address is validated
// before any network call. Chain data and prices are fetched concurrently;
// only the chain fetch can fail, and its failure cancels the price fetch.
func (s *SnapshotServiceImpl) BuildSnapshot(ctx context.Context, rawAddress string) (entity.WalletSnapshot, error) {
	start := time.Now()

	address, err := entity.ParseAddress(rawAddress)
	if err != nil {
		metrics.ObserveSince(metrics.SnapshotDuration.WithLabelValues(metrics.ResultInvalidAddress), start)
		s.logger.Debug("Rejected invalid address", "input", rawAddress, "error", err)
		return entity.WalletSnapshot{}, err
	}

	var (
		raw    entity.RawChainSnapshot
		prices entity.PriceTable
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		raw, err = s.chain.FetchChainData(gctx, address)
		return err
	})
	g.Go(func() error {
		prices = s.prices.FetchPrices(gctx, s.priceKeys)
		return nil
	})
	if err := g.Wait(); err != nil {
		metrics.ObserveSince(metrics.SnapshotDuration.WithLabelValues(metrics.ResultChainUnavailable), start)
		s.logger.Error("Failed to build snapshot",
			"address", address.String(),
			"elapsed", time.Since(start),
			"error", err)
		return entity.WalletSnapshot{}, err
	}

	snapshot := s.valuator.Valuate(address, raw, prices)
	metrics.ObserveSince(metrics.SnapshotDuration.WithLabelValues(metrics.OutcomeOK), start)
	s.logger.Info("Snapshot built",
		"address", address.String(),
		"totalValueUSD", snapshot.TotalValueUSD,
		"assets", snapshot.IncludedAssets,
		"prices", prices.Len(),
		"fallbackPrices", snapshot.PricesFromFallback,
		"elapsed", time.Since(start))
	return snapshot, nil
}
