package injected

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"slices"
	"time"

	"github.com/bnema/billboard-cli/internal/domain"
	"github.com/bnema/billboard-cli/internal/ports"
	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

const defaultPollInterval = 2 * time.Second

// Caller is the JSON-RPC surface of the local wallet endpoint.
type Caller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

var _ Caller = (*rpc.Client)(nil)

type Config struct {
	PollInterval time.Duration
	Logger       *log.Logger
}

// Provider talks to a wallet that exposes its accounts over JSON-RPC on the
// local machine, such as a desktop signer. It plays the role a browser
// extension plays for a web page.
type Provider struct {
	client       Caller
	pollInterval time.Duration
	logger       *log.Logger
}

var _ ports.InjectedProvider = (*Provider)(nil)

func Dial(ctx context.Context, endpoint string) (*rpc.Client, error) {
	client, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial injected wallet %s: %w", endpoint, err)
	}
	return client, nil
}

func NewProvider(client Caller, cfg Config) *Provider {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}

	return &Provider{
		client:       client,
		pollInterval: cfg.PollInterval,
		logger:       cfg.Logger.WithPrefix("injected"),
	}
}

// Accounts returns the accounts already authorized for this client without
// prompting the user.
func (p *Provider) Accounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := p.client.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, fmt.Errorf("eth_accounts: %w", err)
	}
	return accounts, nil
}

func (p *Provider) RequestAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := p.client.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, fmt.Errorf("eth_requestAccounts: %w", err)
	}
	return accounts, nil
}

func (p *Provider) ChainID(ctx context.Context) (uint64, error) {
	var chainID hexutil.Uint64
	if err := p.client.CallContext(ctx, &chainID, "eth_chainId"); err != nil {
		return 0, fmt.Errorf("eth_chainId: %w", err)
	}
	return uint64(chainID), nil
}

type sendTxArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to"`
	Value *hexutil.Big    `json:"value,omitempty"`
	Data  hexutil.Bytes   `json:"data,omitempty"`
}

func (p *Provider) SendTransaction(ctx context.Context, req domain.TxRequest) (string, error) {
	args, err := toSendTxArgs(req)
	if err != nil {
		return "", err
	}

	var hash common.Hash
	if err := p.client.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return "", fmt.Errorf("eth_sendTransaction: %w", err)
	}
	return hash.Hex(), nil
}

// Subscribe polls the wallet for account and chain changes. The first poll
// sets the baseline and emits nothing.
func (p *Provider) Subscribe(ctx context.Context, handler ports.SessionEventHandler) (ports.Unsubscribe, error) {
	if handler == nil {
		return nil, errors.New("session event handler is required")
	}

	accounts, err := p.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	chainID, err := p.ChainID(ctx)
	if err != nil {
		return nil, err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	go p.poll(watchCtx, accounts, chainID, handler)

	return func() { cancel() }, nil
}

func (p *Provider) poll(ctx context.Context, accounts []string, chainID uint64, handler ports.SessionEventHandler) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		nextAccounts, err := p.Accounts(ctx)
		if err != nil {
			p.logger.Debug("poll accounts", "err", err)
			continue
		}
		nextChainID, err := p.ChainID(ctx)
		if err != nil {
			p.logger.Debug("poll chain id", "err", err)
			continue
		}
		if slices.Equal(accounts, nextAccounts) && chainID == nextChainID {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		event := domain.SessionEvent{Kind: domain.SessionEventUpdate, Accounts: nextAccounts, ChainID: nextChainID}
		if len(nextAccounts) == 0 {
			event = domain.SessionEvent{Kind: domain.SessionEventDisconnect}
		}
		p.logger.Debug("wallet changed", "kind", event.Kind, "accounts", len(nextAccounts), "chain_id", nextChainID)

		accounts, chainID = nextAccounts, nextChainID
		handler(event)
	}
}

func toSendTxArgs(req domain.TxRequest) (sendTxArgs, error) {
	if !common.IsHexAddress(string(req.From)) {
		return sendTxArgs{}, fmt.Errorf("invalid sender address %q", req.From)
	}
	if !common.IsHexAddress(string(req.To)) {
		return sendTxArgs{}, fmt.Errorf("invalid recipient address %q", req.To)
	}

	to := common.HexToAddress(string(req.To))
	args := sendTxArgs{
		From: common.HexToAddress(string(req.From)),
		To:   &to,
		Data: req.Data,
	}
	if req.Value != nil {
		args.Value = (*hexutil.Big)(new(big.Int).Set(req.Value))
	}
	return args, nil
}
