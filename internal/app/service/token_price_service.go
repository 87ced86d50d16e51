package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"trenchcard/internal/app/port"
	"trenchcard/internal/domain/entity"
	"trenchcard/internal/infrastructure/httpclient"
	"trenchcard/internal/pkg/metrics"
)

// FallbackPrices are the placeholder quotes served when the oracle cannot be
// reached. They are not market data.
var FallbackPrices = map[string]entity.PriceQuote{
	"solana":   {USD: 150, Change24h: 2.5},
	"usd-coin": {USD: 1, Change24h: 0},
	"raydium":  {USD: 0.5, Change24h: 1.2},
	"serum":    {USD: 0.3, Change24h: 1.5},
}

// TokenPriceServiceOptions tunes retries and caching.
type TokenPriceServiceOptions struct {
	MaxAttempts    int
	RetryBaseDelay time.Duration
	CacheTTL       time.Duration
}

// TokenPriceService implements port.PriceSource on top of a port.PriceOracle.
type TokenPriceService struct {
	oracle port.PriceOracle
	opts   TokenPriceServiceOptions
	cache  *gocache.Cache
	logger port.Logger
}

// NewTokenPriceService creates a new TokenPriceService. A zero CacheTTL
// disables caching.
func NewTokenPriceService(oracle port.PriceOracle, opts TokenPriceServiceOptions, logger port.Logger) *TokenPriceService {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	s := &TokenPriceService{
		oracle: oracle,
		opts:   opts,
		logger: logger.Named("TokenPriceService"),
	}
	if opts.CacheTTL > 0 {
		s.cache = gocache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	s.logger.Info("TokenPriceService initialized",
		"maxAttempts", opts.MaxAttempts,
		"retryBaseDelay", opts.RetryBaseDelay,
		"cacheTTL", opts.CacheTTL)
	return s
}

// FetchPrices implements port.PriceSource. The oracle is asked up to
// MaxAttempts times; attempt n failing waits RetryBaseDelay*n before the next
// one. When every attempt fails the static fallback table is returned.
func (s *TokenPriceService) FetchPrices(ctx context.Context, keys []string) entity.PriceTable {
	cacheKey := priceCacheKey(keys)
	if s.cache != nil {
		if cached, ok := s.cache.Get(cacheKey); ok {
			metrics.PriceCacheHits.Inc()
			s.logger.Debug("Serving prices from cache", "keys", len(keys))
			return cached.(entity.PriceTable)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		quotes, err := s.oracle.SimplePrice(ctx, keys)
		if err == nil {
			metrics.PriceFetchAttempts.WithLabelValues(metrics.OutcomeOK).Inc()
			table := entity.NewPriceTable(quotes, false)
			if s.cache != nil {
				s.cache.SetDefault(cacheKey, table)
			}
			return table
		}

		lastErr = err
		outcome := metrics.OutcomeError
		if errors.Is(err, httpclient.ErrRateLimited) {
			outcome = metrics.OutcomeRateLimited
		}
		metrics.PriceFetchAttempts.WithLabelValues(outcome).Inc()
		s.logger.Warn("Price fetch attempt failed",
			"attempt", attempt,
			"maxAttempts", s.opts.MaxAttempts,
			"outcome", outcome,
			"error", err)

		if attempt == s.opts.MaxAttempts {
			break
		}
		if !s.wait(ctx, s.opts.RetryBaseDelay*time.Duration(attempt)) {
			lastErr = ctx.Err()
			break
		}
	}

	metrics.PriceFallbacks.Inc()
	s.logger.Warn("Using fallback prices", "error", lastErr)
	return entity.NewPriceTable(FallbackPrices, true)
}

func (s *TokenPriceService) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// priceCacheKey is independent of key order and duplicates.
func priceCacheKey(keys []string) string {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	out := sorted[:0]
	for i, k := range sorted {
		if i > 0 && k == sorted[i-1] {
			continue
		}
		out = append(out, k)
	}
	return strings.Join(out, ",")
}
