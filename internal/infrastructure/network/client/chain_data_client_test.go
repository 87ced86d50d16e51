package client

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"trenchcard/internal/app/port"
	"trenchcard/internal/domain/entity"
	"trenchcard/internal/pkg/logger"
)

func fixtureEndpoint(url string, balance uint64) *fakeEndpoint {
	return &fakeEndpoint{
		url:     url,
		balance: balance,
		accounts: []entity.TokenAccountBalance{
			{Account: testAcct1, Mint: usdcMint, Amount: "1000000", Decimals: 6},
		},
		sigs: []entity.SignatureInfo{{Signature: testSig0, Slot: 1}},
	}
}

func TestFallbackChainClientFetchChainData(t *testing.T) {
	tests := []struct {
		name      string
		failOn    []string
		wantFrom  int
		wantCalls []int
	}{
		{name: "primary succeeds", failOn: []string{"", "", ""}, wantFrom: 0, wantCalls: []int{3, 0, 0}},
		{name: "primary balance fails", failOn: []string{"balance", "", ""}, wantFrom: 1, wantCalls: []int{3, 3, 0}},
		{name: "two endpoints fail", failOn: []string{"tokens", "signatures", ""}, wantFrom: 2, wantCalls: []int{3, 3, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakes := []*fakeEndpoint{
				fixtureEndpoint("https://rpc-a.example", 1),
				fixtureEndpoint("https://rpc-b.example", 2),
				fixtureEndpoint("https://rpc-c.example", 3),
			}
			endpoints := make([]port.ChainEndpoint, len(fakes))
			for i, f := range fakes {
				f.failOn = tt.failOn[i]
				endpoints[i] = f
			}
			c := NewFallbackChainClient(endpoints, time.Millisecond, 10, logger.NewNop())
			addr := mustAddress(t, testWallet)

			got, err := c.FetchChainData(context.Background(), addr)
			if err != nil {
				t.Fatalf("FetchChainData() error = %v", err)
			}

			direct := fixtureEndpoint(fakes[tt.wantFrom].url, uint64(tt.wantFrom+1))
			want, err := NewFallbackChainClient([]port.ChainEndpoint{direct}, 0, 10, logger.NewNop()).FetchChainData(context.Background(), addr)
			if err != nil {
				t.Fatalf("direct FetchChainData() error = %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("FetchChainData() = %+v, want %+v", got, want)
			}
			for i, f := range fakes {
				if len(f.calls) != tt.wantCalls[i] {
					t.Errorf("endpoint %d got %d calls, want %d", i, len(f.calls), tt.wantCalls[i])
				}
			}
		})
	}
}

func TestFallbackChainClientAllEndpointsFail(t *testing.T) {
	endpoints := []port.ChainEndpoint{
		&fakeEndpoint{url: "https://rpc-a.example/secret-key", failOn: "balance"},
		&fakeEndpoint{url: "https://rpc-b.example", failOn: "signatures"},
	}
	c := NewFallbackChainClient(endpoints, time.Millisecond, 10, logger.NewNop())

	_, err := c.FetchChainData(context.Background(), mustAddress(t, testWallet))
	if !errors.Is(err, entity.ErrChainUnavailable) {
		t.Fatalf("error = %v, want ErrChainUnavailable", err)
	}
	var unavailable *entity.ChainUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("error %T is not *ChainUnavailableError", err)
	}
	if len(unavailable.Attempts) != 2 {
		t.Fatalf("Attempts = %d, want 2", len(unavailable.Attempts))
	}
	if unavailable.Attempts[0].Endpoint != "rpc-a.example" {
		t.Errorf("Attempts[0].Endpoint = %q, want host only", unavailable.Attempts[0].Endpoint)
	}
	if !errors.Is(unavailable.Last(), errFake) || !strings.Contains(unavailable.Last().Error(), "rpc-b.example") {
		t.Errorf("Last() = %v, want failure from rpc-b.example", unavailable.Last())
	}
	if strings.Contains(err.Error(), "secret-key") {
		t.Errorf("error leaks endpoint path: %v", err)
	}
}

func TestFallbackChainClientNoEndpoints(t *testing.T) {
	c := NewFallbackChainClient(nil, 0, 10, logger.NewNop())
	_, err := c.FetchChainData(context.Background(), mustAddress(t, testWallet))
	if !errors.Is(err, entity.ErrChainUnavailable) {
		t.Fatalf("error = %v, want ErrChainUnavailable", err)
	}
}

func TestFallbackChainClientReadsRunConcurrently(t *testing.T) {
	ep := fixtureEndpoint("https://rpc-a.example", 7)
	ep.barrier = newBarrier(3)
	c := NewFallbackChainClient([]port.ChainEndpoint{ep}, 0, 10, logger.NewNop())

	got, err := c.FetchChainData(context.Background(), mustAddress(t, testWallet))
	if err != nil {
		t.Fatalf("FetchChainData() error = %v", err)
	}
	if got.NativeBalance != 7 {
		t.Errorf("NativeBalance = %d, want 7", got.NativeBalance)
	}
}

func TestFallbackChainClientEndpointsAreSequential(t *testing.T) {
	log := &callLog{}
	first := fixtureEndpoint("https://rpc-a.example", 1)
	first.failOn = "tokens"
	first.log = log
	second := fixtureEndpoint("https://rpc-b.example", 2)
	second.log = log
	c := NewFallbackChainClient([]port.ChainEndpoint{first, second}, 5*time.Millisecond, 10, logger.NewNop())

	if _, err := c.FetchChainData(context.Background(), mustAddress(t, testWallet)); err != nil {
		t.Fatalf("FetchChainData() error = %v", err)
	}
	if len(log.entries) != 6 {
		t.Fatalf("got %d calls, want 6: %v", len(log.entries), log.entries)
	}
	for i, e := range log.entries {
		wantPrefix := "https://rpc-a.example "
		if i >= 3 {
			wantPrefix = "https://rpc-b.example "
		}
		if !strings.HasPrefix(e, wantPrefix) {
			t.Errorf("call %d = %q, want prefix %q", i, e, wantPrefix)
		}
	}
}

func TestFallbackChainClientCancelledDuringBackoff(t *testing.T) {
	first := &fakeEndpoint{url: "https://rpc-a.example", failOn: "balance"}
	second := fixtureEndpoint("https://rpc-b.example", 2)
	c := NewFallbackChainClient([]port.ChainEndpoint{first, second}, time.Hour, 10, logger.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.FetchChainData(ctx, mustAddress(t, testWallet))

	var unavailable *entity.ChainUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("error = %v, want *ChainUnavailableError", err)
	}
	if len(second.calls) != 0 {
		t.Errorf("second endpoint was called %d times after cancellation", len(second.calls))
	}
	if !errors.Is(unavailable.Last(), context.DeadlineExceeded) {
		t.Errorf("Last() = %v, want deadline exceeded", unavailable.Last())
	}
}

func TestEndpointLabel(t *testing.T) {
	tests := map[string]string{
		"https://api.mainnet-beta.solana.com":           "api.mainnet-beta.solana.com",
		"https://mainnet.helius-rpc.com/?api-key=abcd": "mainnet.helius-rpc.com",
		"not a url":                                     "invalid-endpoint",
	}
	for in, want := range tests {
		if got := endpointLabel(in); got != want {
			t.Errorf("endpointLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
