package port

import (
	"context"

	"trenchcard/internal/domain/entity"
)

// SnapshotService builds wallet snapshots.
type SnapshotService interface {
	// BuildSnapshot validates rawAddress and aggregates chain and price data.
	// It fails with entity.ErrInvalidAddress or entity.ErrChainUnavailable.
	BuildSnapshot(ctx context.Context, rawAddress string) (entity.WalletSnapshot, error)
}
