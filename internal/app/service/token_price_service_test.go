package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"trenchcard/internal/domain/entity"
	"trenchcard/internal/infrastructure/httpclient"
	"trenchcard/internal/pkg/logger"
	"trenchcard/internal/pkg/metrics"
)

// scriptedOracle answers SimplePrice from a list of results, one per call.
type scriptedOracle struct {
	mu      sync.Mutex
	results []oracleResult
	calls   []time.Time
}

type oracleResult struct {
	quotes map[string]entity.PriceQuote
	err    error
}

func (o *scriptedOracle) SimplePrice(ctx context.Context, ids []string) (map[string]entity.PriceQuote, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	i := len(o.calls)
	o.calls = append(o.calls, time.Now())
	if i >= len(o.results) {
		return nil, errors.New("no scripted result")
	}
	return o.results[i].quotes, o.results[i].err
}

func (o *scriptedOracle) callCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.calls)
}

var liveQuotes = map[string]entity.PriceQuote{
	"solana": {USD: 171.2, Change24h: -3.1},
}

func TestTokenPriceServiceFetchPrices(t *testing.T) {
	tests := []struct {
		name         string
		results      []oracleResult
		wantFallback bool
		wantCalls    int
	}{
		{
			name:      "first attempt succeeds",
			results:   []oracleResult{{quotes: liveQuotes}},
			wantCalls: 1,
		},
		{
			name: "succeeds after rate limit",
			results: []oracleResult{
				{err: httpclient.ErrRateLimited},
				{quotes: liveQuotes},
			},
			wantCalls: 2,
		},
		{
			name: "rate limited three times",
			results: []oracleResult{
				{err: httpclient.ErrRateLimited},
				{err: httpclient.ErrRateLimited},
				{err: httpclient.ErrRateLimited},
			},
			wantFallback: true,
			wantCalls:    3,
		},
		{
			name: "mixed failures",
			results: []oracleResult{
				{err: &httpclient.StatusError{StatusCode: 500}},
				{err: errors.New("connection reset")},
				{err: &httpclient.StatusError{StatusCode: 503}},
			},
			wantFallback: true,
			wantCalls:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := &scriptedOracle{results: tt.results}
			s := NewTokenPriceService(oracle, TokenPriceServiceOptions{MaxAttempts: 3, RetryBaseDelay: time.Millisecond}, logger.NewNop())

			table := s.FetchPrices(context.Background(), []string{"solana", "usd-coin"})

			if got := oracle.callCount(); got != tt.wantCalls {
				t.Errorf("oracle calls = %d, want %d", got, tt.wantCalls)
			}
			if table.IsFallback() != tt.wantFallback {
				t.Errorf("IsFallback() = %v, want %v", table.IsFallback(), tt.wantFallback)
			}
			q, ok := table.Lookup("solana")
			if !ok {
				t.Fatal("solana missing from table")
			}
			wantUSD := 171.2
			if tt.wantFallback {
				wantUSD = 150
			}
			if q.USD != wantUSD {
				t.Errorf("solana USD = %v, want %v", q.USD, wantUSD)
			}
		})
	}
}

func TestTokenPriceServiceBackoffGrows(t *testing.T) {
	oracle := &scriptedOracle{results: []oracleResult{
		{err: httpclient.ErrRateLimited},
		{err: httpclient.ErrRateLimited},
		{err: httpclient.ErrRateLimited},
	}}
	base := 20 * time.Millisecond
	s := NewTokenPriceService(oracle, TokenPriceServiceOptions{MaxAttempts: 3, RetryBaseDelay: base}, logger.NewNop())

	start := time.Now()
	s.FetchPrices(context.Background(), []string{"solana"})
	elapsed := time.Since(start)

	if len(oracle.calls) != 3 {
		t.Fatalf("calls = %d, want 3", len(oracle.calls))
	}
	if gap := oracle.calls[1].Sub(oracle.calls[0]); gap < base {
		t.Errorf("first wait = %v, want >= %v", gap, base)
	}
	if gap := oracle.calls[2].Sub(oracle.calls[1]); gap < 2*base {
		t.Errorf("second wait = %v, want >= %v", gap, 2*base)
	}
	// no wait after the final attempt
	if elapsed > 3*base+time.Second {
		t.Errorf("FetchPrices took %v", elapsed)
	}
}

func TestTokenPriceServiceCancelledDuringWait(t *testing.T) {
	oracle := &scriptedOracle{results: []oracleResult{{err: httpclient.ErrRateLimited}, {quotes: liveQuotes}}}
	s := NewTokenPriceService(oracle, TokenPriceServiceOptions{MaxAttempts: 3, RetryBaseDelay: time.Hour}, logger.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	table := s.FetchPrices(ctx, []string{"solana"})

	if !table.IsFallback() {
		t.Error("expected fallback table after cancellation")
	}
	if oracle.callCount() != 1 {
		t.Errorf("oracle calls = %d, want 1", oracle.callCount())
	}
}

func TestTokenPriceServiceSkipsOracleWhenContextDone(t *testing.T) {
	oracle := &scriptedOracle{results: []oracleResult{{quotes: liveQuotes}}}
	s := NewTokenPriceService(oracle, TokenPriceServiceOptions{MaxAttempts: 3, RetryBaseDelay: time.Millisecond}, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	table := s.FetchPrices(ctx, []string{"solana"})

	if !table.IsFallback() {
		t.Error("expected fallback table for a cancelled context")
	}
	if oracle.callCount() != 0 {
		t.Errorf("oracle calls = %d, want 0", oracle.callCount())
	}
}

func TestTokenPriceServiceCache(t *testing.T) {
	oracle := &scriptedOracle{results: []oracleResult{
		{quotes: liveQuotes},
		{quotes: map[string]entity.PriceQuote{"solana": {USD: 1}}},
	}}
	s := NewTokenPriceService(oracle, TokenPriceServiceOptions{MaxAttempts: 1, CacheTTL: time.Minute}, logger.NewNop())

	first := s.FetchPrices(context.Background(), []string{"usd-coin", "solana"})
	second := s.FetchPrices(context.Background(), []string{"solana", "usd-coin", "solana"})

	if oracle.callCount() != 1 {
		t.Fatalf("oracle calls = %d, want 1 (second served from cache)", oracle.callCount())
	}
	q1, _ := first.Lookup("solana")
	q2, _ := second.Lookup("solana")
	if q1 != q2 {
		t.Errorf("cached quote = %+v, want %+v", q2, q1)
	}
}

func TestTokenPriceServiceDoesNotCacheFallback(t *testing.T) {
	oracle := &scriptedOracle{results: []oracleResult{
		{err: httpclient.ErrRateLimited},
		{quotes: liveQuotes},
	}}
	s := NewTokenPriceService(oracle, TokenPriceServiceOptions{MaxAttempts: 1, CacheTTL: time.Minute}, logger.NewNop())

	if !s.FetchPrices(context.Background(), []string{"solana"}).IsFallback() {
		t.Fatal("first fetch should fall back")
	}
	if s.FetchPrices(context.Background(), []string{"solana"}).IsFallback() {
		t.Error("second fetch served the fallback table from cache")
	}
}

func TestPriceCacheKey(t *testing.T) {
	if a, b := priceCacheKey([]string{"b", "a", "b"}), priceCacheKey([]string{"a", "b"}); a != b {
		t.Errorf("priceCacheKey mismatch: %q vs %q", a, b)
	}
}

func TestTokenPriceServiceMetrics(t *testing.T) {
	rateLimited := metrics.PriceFetchAttempts.WithLabelValues(metrics.OutcomeRateLimited)
	beforeLimited := testutil.ToFloat64(rateLimited)
	beforeFallbacks := testutil.ToFloat64(metrics.PriceFallbacks)
	beforeHits := testutil.ToFloat64(metrics.PriceCacheHits)

	oracle := &scriptedOracle{results: []oracleResult{
		{err: httpclient.ErrRateLimited},
		{err: httpclient.ErrRateLimited},
		{quotes: liveQuotes},
	}}
	s := NewTokenPriceService(oracle, TokenPriceServiceOptions{MaxAttempts: 2, CacheTTL: time.Minute}, logger.NewNop())
	s.FetchPrices(context.Background(), []string{"solana"})
	s.FetchPrices(context.Background(), []string{"solana"})
	s.FetchPrices(context.Background(), []string{"solana"})

	if got := testutil.ToFloat64(rateLimited) - beforeLimited; got != 2 {
		t.Errorf("rate limited attempts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.PriceFallbacks) - beforeFallbacks; got != 1 {
		t.Errorf("fallbacks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.PriceCacheHits) - beforeHits; got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
}
