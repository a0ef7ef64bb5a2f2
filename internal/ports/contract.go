package ports

import (
	"context"
	"math/big"

	"github.com/bnema/billboard-cli/internal/domain"
)

// BillboardContract is the raw on-chain surface of the billboard.
type BillboardContract interface {
	Address() domain.Address
	TokenURI(ctx context.Context, tokenID *big.Int) (string, error)
	CurrentPrice(ctx context.Context) (*big.Int, error)
	UpdateEvents(ctx context.Context) ([]domain.UpdateRecord, error)
	EncodeUpdate(first, second, third string) ([]byte, error)
	WaitMined(ctx context.Context, txHash string) (domain.Receipt, error)
}

type UpdateHandler func(domain.UpdateNotice)

// UpdateWatcher reports BillboardUpdated events as they land.
type UpdateWatcher interface {
	Watch(ctx context.Context, handler UpdateHandler) (Unsubscribe, error)
}
