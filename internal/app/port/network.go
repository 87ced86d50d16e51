package port

import (
	"context"

	"trenchcard/internal/domain/entity"
)

// ChainEndpoint reads wallet data from one RPC endpoint. Implementations make
// no retries of their own; fallback across endpoints is done by ChainDataClient.
type ChainEndpoint interface {
	// URL identifies the endpoint in logs and errors.
	URL() string

	// GetNativeBalance returns the native balance in lamports.
	GetNativeBalance(ctx context.Context, address entity.Address) (uint64, error)

	// GetTokenAccounts lists token accounts owned by address under the token program.
	GetTokenAccounts(ctx context.Context, address entity.Address) ([]entity.TokenAccountBalance, error)

	// GetRecentSignatures returns up to limit signatures, newest first.
	GetRecentSignatures(ctx context.Context, address entity.Address, limit int) ([]entity.SignatureInfo, error)
}

// ChainDataClient returns the snapshot of the first endpoint on which every
// read succeeded, or an *entity.ChainUnavailableError.
type ChainDataClient interface {
	FetchChainData(ctx context.Context, address entity.Address) (entity.RawChainSnapshot, error)
}
