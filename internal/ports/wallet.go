package ports

import (
	"context"

	"github.com/bnema/billboard-cli/internal/domain"
)

// Unsubscribe detaches a listener. Calling it more than once is harmless.
type Unsubscribe func()

type SessionEventHandler func(domain.SessionEvent)

// TransactionSender signs and broadcasts a transaction, returning its hash.
type TransactionSender interface {
	SendTransaction(ctx context.Context, req domain.TxRequest) (string, error)
}

// InjectedProvider is a locally reachable wallet that signs on request.
type InjectedProvider interface {
	TransactionSender
	Accounts(ctx context.Context) ([]string, error)
	RequestAccounts(ctx context.Context) ([]string, error)
	ChainID(ctx context.Context) (uint64, error)
	Subscribe(ctx context.Context, handler SessionEventHandler) (Unsubscribe, error)
}

// RemoteSessionProtocol pairs with a wallet running elsewhere and relays
// signing requests to it.
type RemoteSessionProtocol interface {
	Pair(ctx context.Context) (domain.Pairing, error)
	AwaitApproval(ctx context.Context, pairing domain.Pairing) (domain.RemoteSession, error)
	Subscribe(ctx context.Context, session domain.RemoteSession, handler SessionEventHandler) (Unsubscribe, error)
	SendTransaction(ctx context.Context, session domain.RemoteSession, req domain.TxRequest) (string, error)
	Kill(ctx context.Context, session domain.RemoteSession) error
}
