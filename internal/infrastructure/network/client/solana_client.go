package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"trenchcard/internal/app/port"
	"trenchcard/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EndpointOptions configures the transport of a single RPC endpoint.
type EndpointOptions struct {
	Timeout             time.Duration
	RateLimit           float64 // requests per second, <= 0 disables pacing
	BurstLimit          int
	MaxIdleConnsPerHost int
	TokenProgramID      string
}

// SolanaEndpoint implements port.ChainEndpoint over Solana JSON-RPC.
type SolanaEndpoint struct {
	url          string
	rpcClient    *rpc.Client
	limiter      *rate.Limiter
	tokenProgram solana.PublicKey
	logger       port.Logger
}

// parsedTokenAccount is the jsonParsed layout of an SPL token account.
type parsedTokenAccount struct {
	Program string `json:"program"`
	Parsed  struct {
		Type string `json:"type"`
		Info struct {
			Mint        string `json:"mint"`
			Owner       string `json:"owner"`
			TokenAmount struct {
				Amount   string `json:"amount"`
				Decimals uint8  `json:"decimals"`
			} `json:"tokenAmount"`
		} `json:"info"`
	} `json:"parsed"`
}

// NewSolanaEndpoint creates a client bound to one RPC URL. Nothing is dialed
// until the first call.
func NewSolanaEndpoint(url string, opts EndpointOptions, logger port.Logger) (*SolanaEndpoint, error) {
	programID, err := solana.PublicKeyFromBase58(opts.TokenProgramID)
	if err != nil {
		return nil, fmt.Errorf("invalid token program id %q: %w", opts.TokenProgramID, err)
	}

	httpClient := &http.Client{
		Timeout: opts.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	rpcClient := rpc.NewWithCustomRPCClient(jsonrpc.NewClientWithOpts(url, &jsonrpc.RPCClientOpts{
		HTTPClient: httpClient,
	}))

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.BurstLimit
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &SolanaEndpoint{
		url:          url,
		rpcClient:    rpcClient,
		limiter:      limiter,
		tokenProgram: programID,
		logger:       logger.Named("SolanaEndpoint"),
	}, nil
}

// NewSolanaEndpoints builds one endpoint per URL, keeping the order.
func NewSolanaEndpoints(urls []string, opts EndpointOptions, logger port.Logger) ([]port.ChainEndpoint, error) {
	endpoints := make([]port.ChainEndpoint, 0, len(urls))
	for _, u := range urls {
		ep, err := NewSolanaEndpoint(u, opts, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create endpoint %s: %w", u, err)
		}
		endpoints = append(endpoints, ep)
	}
	return endpoints, nil
}

func (e *SolanaEndpoint) URL() string {
	return e.url
}

// GetNativeBalance implements port.ChainEndpoint.
func (e *SolanaEndpoint) GetNativeBalance(ctx context.Context, address entity.Address) (uint64, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	out, err := e.rpcClient.GetBalance(ctx, address.PublicKey(), rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("getBalance: %w", err)
	}
	if out == nil {
		return 0, fmt.Errorf("getBalance: empty result")
	}
	return out.Value, nil
}

// GetTokenAccounts implements port.ChainEndpoint. Accounts whose data is not
// in jsonParsed form are skipped.
func (e *SolanaEndpoint) GetTokenAccounts(ctx context.Context, address entity.Address) ([]entity.TokenAccountBalance, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	programID := e.tokenProgram
	out, err := e.rpcClient.GetTokenAccountsByOwner(ctx, address.PublicKey(),
		&rpc.GetTokenAccountsConfig{ProgramId: &programID},
		&rpc.GetTokenAccountsOpts{
			Commitment: rpc.CommitmentConfirmed,
			Encoding:   solana.EncodingJSONParsed,
		})
	if err != nil {
		return nil, fmt.Errorf("getTokenAccountsByOwner: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("getTokenAccountsByOwner: empty result")
	}

	accounts := make([]entity.TokenAccountBalance, 0, len(out.Value))
	for _, acct := range out.Value {
		if acct == nil || acct.Account.Data == nil {
			continue
		}
		raw := acct.Account.Data.GetRawJSON()
		if len(raw) == 0 {
			e.logger.Debug("Token account data is not jsonParsed, skipping",
				"endpoint", endpointLabel(e.url), "account", acct.Pubkey.String())
			continue
		}
		var parsed parsedTokenAccount
		if err := json.Unmarshal(raw, &parsed); err != nil {
			e.logger.Debug("Failed to decode token account data, skipping",
				"endpoint", endpointLabel(e.url), "account", acct.Pubkey.String(), "error", err)
			continue
		}
		info := parsed.Parsed.Info
		if info.Mint == "" {
			continue
		}
		accounts = append(accounts, entity.TokenAccountBalance{
			Account:  acct.Pubkey.String(),
			Mint:     info.Mint,
			Amount:   info.TokenAmount.Amount,
			Decimals: info.TokenAmount.Decimals,
		})
	}
	return accounts, nil
}

// GetRecentSignatures implements port.ChainEndpoint.
func (e *SolanaEndpoint) GetRecentSignatures(ctx context.Context, address entity.Address, limit int) ([]entity.SignatureInfo, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	out, err := e.rpcClient.GetSignaturesForAddressWithOpts(ctx, address.PublicKey(), &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("getSignaturesForAddress: %w", err)
	}

	sigs := make([]entity.SignatureInfo, 0, len(out))
	for _, s := range out {
		if s == nil {
			continue
		}
		info := entity.SignatureInfo{
			Signature:          s.Signature.String(),
			Slot:               s.Slot,
			ConfirmationStatus: string(s.ConfirmationStatus),
			Failed:             s.Err != nil,
		}
		if s.BlockTime != nil {
			bt := time.Unix(int64(*s.BlockTime), 0).UTC()
			info.BlockTime = &bt
		}
		sigs = append(sigs, info)
	}
	return sigs, nil
}
