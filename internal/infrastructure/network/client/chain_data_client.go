package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"trenchcard/internal/app/port"
	"trenchcard/internal/domain/entity"
	"trenchcard/internal/pkg/fallback"
	"trenchcard/internal/pkg/metrics"
)

// FallbackChainClient implements port.ChainDataClient. Endpoints are tried
// strictly one after another; the three reads against a single endpoint run
// concurrently and must all succeed for that endpoint to count.
type FallbackChainClient struct {
	endpoints      []port.ChainEndpoint
	backoff        time.Duration
	signatureLimit int
	logger         port.Logger
}

// NewFallbackChainClient creates a client over endpoints in priority order.
func NewFallbackChainClient(endpoints []port.ChainEndpoint, backoff time.Duration, signatureLimit int, logger port.Logger) *FallbackChainClient {
	if signatureLimit <= 0 {
		signatureLimit = 10
	}
	return &FallbackChainClient{
		endpoints:      endpoints,
		backoff:        backoff,
		signatureLimit: signatureLimit,
		logger:         logger.Named("ChainDataClient"),
	}
}

// FetchChainData implements port.ChainDataClient.
func (c *FallbackChainClient) FetchChainData(ctx context.Context, address entity.Address) (entity.RawChainSnapshot, error) {
	sources := make([]fallback.Source[entity.RawChainSnapshot], len(c.endpoints))
	for i, ep := range c.endpoints {
		sources[i] = func(ctx context.Context, _ int) (entity.RawChainSnapshot, error) {
			return c.fetchFrom(ctx, ep, address)
		}
	}

	attempts := make([]entity.EndpointFailure, 0, len(c.endpoints))
	res, err := fallback.FirstSuccess(ctx, sources, fallback.Options{
		Backoff: c.backoff,
		OnFailure: func(i int, err error) {
			ep := endpointLabel(c.endpoints[i].URL())
			attempts = append(attempts, entity.EndpointFailure{Endpoint: ep, Err: err})
			metrics.ChainEndpointAttempts.WithLabelValues(ep, metrics.OutcomeError).Inc()
			c.logger.Warn("Chain endpoint failed, moving to next endpoint",
				"endpoint", ep,
				"position", i,
				"remaining", len(c.endpoints)-i-1,
				"error", err)
		},
	})
	if err != nil {
		var exhausted *fallback.ExhaustedError
		if errors.As(err, &exhausted) && len(exhausted.Errors) > len(attempts) && len(attempts) < len(c.endpoints) {
			// the walk stopped during a backoff, before the next endpoint ran
			attempts = append(attempts, entity.EndpointFailure{
				Endpoint: endpointLabel(c.endpoints[len(attempts)].URL()),
				Err:      exhausted.Last(),
			})
		}
		metrics.ChainFetchFailures.Inc()
		c.logger.Error("All chain endpoints failed",
			"address", address.String(),
			"endpoints", len(c.endpoints),
			"error", err)
		return entity.RawChainSnapshot{}, &entity.ChainUnavailableError{Attempts: attempts}
	}

	metrics.ChainEndpointAttempts.WithLabelValues(endpointLabel(res.Value.Endpoint), metrics.OutcomeOK).Inc()
	if res.Source > 0 {
		c.logger.Info("Chain data served by fallback endpoint",
			"endpoint", endpointLabel(res.Value.Endpoint),
			"position", res.Source)
	}
	return res.Value, nil
}

func (c *FallbackChainClient) fetchFrom(ctx context.Context, ep port.ChainEndpoint, address entity.Address) (entity.RawChainSnapshot, error) {
	var (
		balance    uint64
		accounts   []entity.TokenAccountBalance
		signatures []entity.SignatureInfo
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := ep.GetNativeBalance(gctx, address)
		if err != nil {
			return err
		}
		balance = b
		return nil
	})
	g.Go(func() error {
		a, err := ep.GetTokenAccounts(gctx, address)
		if err != nil {
			return err
		}
		accounts = a
		return nil
	})
	g.Go(func() error {
		s, err := ep.GetRecentSignatures(gctx, address, c.signatureLimit)
		if err != nil {
			return err
		}
		signatures = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return entity.RawChainSnapshot{}, fmt.Errorf("endpoint %s: %w", endpointLabel(ep.URL()), err)
	}

	return entity.RawChainSnapshot{
		Endpoint:      ep.URL(),
		NativeBalance: balance,
		TokenAccounts: accounts,
		Signatures:    signatures,
	}, nil
}

// endpointLabel reduces an endpoint URL to its host so that API keys in the
// path never reach logs or metric labels.
func endpointLabel(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "invalid-endpoint"
	}
	return u.Host
}
