package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/billboard-cli/internal/domain"
	"github.com/bnema/billboard-cli/internal/ports"
)

// Signer is a write handle bound to the active channel.
type Signer struct {
	From    domain.Address
	Channel domain.ChannelType
	Sender  ports.TransactionSender
}

// ProviderResolver picks the channel that signs writes. Reads never need a
// wallet and go through the read endpoint chosen by ResolveReadEndpoint.
type ProviderResolver struct {
	sessions *SessionManager
	injected ports.InjectedProvider
	remote   ports.RemoteSessionProtocol
}

func NewProviderResolver(sessions *SessionManager, injected ports.InjectedProvider, remote ports.RemoteSessionProtocol) *ProviderResolver {
	return &ProviderResolver{sessions: sessions, injected: injected, remote: remote}
}

func (r *ProviderResolver) Signer() (Signer, error) {
	current := r.sessions.Current()
	if current.Account.Empty() {
		return Signer{}, domain.ErrNoSigner
	}

	switch current.Channel {
	case domain.ChannelInjected:
		if r.injected == nil {
			return Signer{}, domain.ErrNoProviderAvailable
		}
		return Signer{From: current.Account, Channel: current.Channel, Sender: r.injected}, nil
	case domain.ChannelRemoteSession:
		session, ok := r.sessions.RemoteSession()
		if !ok || r.remote == nil {
			return Signer{}, fmt.Errorf("%w: remote session not connected", domain.ErrNoSigner)
		}
		return Signer{
			From:    current.Account,
			Channel: current.Channel,
			Sender:  remoteSender{protocol: r.remote, session: session},
		}, nil
	default:
		return Signer{}, domain.ErrNoSigner
	}
}

type remoteSender struct {
	protocol ports.RemoteSessionProtocol
	session  domain.RemoteSession
}

func (s remoteSender) SendTransaction(ctx context.Context, req domain.TxRequest) (string, error) {
	return s.protocol.SendTransaction(ctx, s.session, req)
}

// ResolveReadEndpoint prefers an explicit node RPC and falls back to the
// injected wallet's endpoint, which proxies reads too.
func ResolveReadEndpoint(rpcURL, injectedURL string) (string, error) {
	if endpoint := strings.TrimSpace(rpcURL); endpoint != "" {
		return endpoint, nil
	}
	if endpoint := strings.TrimSpace(injectedURL); endpoint != "" {
		return endpoint, nil
	}
	return "", errors.New("no read endpoint configured: set rpc_url or injected_url")
}
