package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"

	"trenchcard/internal/app/port"
	"trenchcard/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrRateLimited is returned when the oracle answers HTTP 429.
var ErrRateLimited = errors.New("price oracle rate limited")

// StatusError is returned for any other non-200 answer.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("price oracle request failed with status %d: %s", e.StatusCode, e.Body)
}

const (
	apiKeyHeader          = "x-cg-demo-api-key"
	defaultRequestTimeout = 5 * time.Second
)

// simplePriceEntry mirrors one value of the /simple/price response. USD is a
// pointer so that ids without a usd field can be told apart from a zero price.
type simplePriceEntry struct {
	USD       *float64 `json:"usd"`
	Change24h float64  `json:"usd_24h_change"`
}

// CoinGeckoClient implements port.PriceOracle against the CoinGecko
// /simple/price endpoint.
type CoinGeckoClient struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  port.Logger
}

// NewCoinGeckoClient creates a client. An empty apiKey sends no key header and
// a non-positive timeout means 5s per call.
func NewCoinGeckoClient(baseURL, apiKey string, timeout time.Duration, logger port.Logger) *CoinGeckoClient {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &CoinGeckoClient{
		client:  &fasthttp.Client{Name: "trenchcard"},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		logger:  logger.Named("CoinGeckoClient"),
	}
}

// SimplePrice performs one request for ids. It does not retry.
func (c *CoinGeckoClient) SimplePrice(ctx context.Context, ids []string) (map[string]entity.PriceQuote, error) {
	if len(ids) == 0 {
		return map[string]entity.PriceQuote{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", "usd")
	query.Set("include_24hr_change", "true")
	requestURL := c.baseURL + "/simple/price?" + query.Encode()

	c.logger.Debug("Requesting prices from CoinGecko", "idCount", len(ids))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := c.client.DoDeadline(req, resp, c.requestDeadline(ctx, time.Now())); err != nil {
		return nil, fmt.Errorf("failed to execute price request: %w", err)
	}

	rawBody := resp.Body()
	switch status := resp.StatusCode(); {
	case status == fasthttp.StatusTooManyRequests:
		c.logger.Warn("CoinGecko rate limit hit")
		return nil, ErrRateLimited
	case status != fasthttp.StatusOK:
		body := string(rawBody)
		if len(body) > 256 {
			body = body[:256]
		}
		c.logger.Error("CoinGecko request failed",
			"statusCode", status,
			"responseBody", body)
		return nil, &StatusError{StatusCode: status, Body: body}
	}

	var decoded map[string]simplePriceEntry
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		c.logger.Error("Failed to unmarshal CoinGecko response", "responseBody", string(rawBody), "error", err)
		return nil, fmt.Errorf("failed to unmarshal price response: %w", err)
	}

	quotes := make(map[string]entity.PriceQuote, len(decoded))
	for id, entry := range decoded {
		if entry.USD == nil {
			continue
		}
		quotes[id] = entity.PriceQuote{USD: *entry.USD, Change24h: entry.Change24h}
	}
	c.logger.Debug("Received prices from CoinGecko",
		"requested", len(ids),
		"priced", len(quotes))
	return quotes, nil
}

// requestDeadline is now+timeout, or the context deadline when that comes
// first.
func (c *CoinGeckoClient) requestDeadline(ctx context.Context, now time.Time) time.Time {
	deadline, ok := ctx.Deadline()
	perCall := now.Add(c.timeout)
	if ok && deadline.Before(perCall) {
		return deadline
	}
	return perCall
}
