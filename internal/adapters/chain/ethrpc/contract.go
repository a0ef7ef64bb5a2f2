package ethrpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sort"
	"time"

	"github.com/bnema/billboard-cli/internal/domain"
	"github.com/bnema/billboard-cli/internal/ports"
	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

const (
	defaultPollInterval = 4 * time.Second
	defaultDropTimeout  = 5 * time.Minute
)

// Backend is the subset of ethclient.Client the contract needs.
type Backend interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)
	SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)
	BlockNumber(ctx context.Context) (uint64, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
}

var _ Backend = (*ethclient.Client)(nil)

type Config struct {
	Address      string
	DeployBlock  uint64
	PollInterval time.Duration
	DropTimeout  time.Duration
	Logger       *log.Logger
}

type Contract struct {
	backend      Backend
	abi          abi.ABI
	address      common.Address
	deployBlock  uint64
	pollInterval time.Duration
	dropTimeout  time.Duration
	logger       *log.Logger
}

var (
	_ ports.BillboardContract = (*Contract)(nil)
	_ ports.UpdateWatcher     = (*Contract)(nil)
)

// Dial connects to a node endpoint. Websocket endpoints get push
// subscriptions; HTTP endpoints fall back to polling.
func Dial(ctx context.Context, endpoint string) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	return client, nil
}

func NewContract(backend Backend, cfg Config) (*Contract, error) {
	if backend == nil {
		return nil, errors.New("chain backend is required")
	}
	if !common.IsHexAddress(cfg.Address) {
		return nil, fmt.Errorf("invalid contract address %q", cfg.Address)
	}

	parsed, err := parseBillboardABI()
	if err != nil {
		return nil, fmt.Errorf("parse billboard abi: %w", err)
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.DropTimeout <= 0 {
		cfg.DropTimeout = defaultDropTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}

	return &Contract{
		backend:      backend,
		abi:          parsed,
		address:      common.HexToAddress(cfg.Address),
		deployBlock:  cfg.DeployBlock,
		pollInterval: cfg.PollInterval,
		dropTimeout:  cfg.DropTimeout,
		logger:       cfg.Logger.WithPrefix("chain"),
	}, nil
}

func (c *Contract) Address() domain.Address {
	return domain.Address(c.address.Hex())
}

func (c *Contract) TokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	values, err := c.call(ctx, methodTokenURI, tokenID)
	if err != nil {
		return "", err
	}

	uri, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("%w: %s returned %T", domain.ErrDecode, methodTokenURI, values[0])
	}
	return uri, nil
}

func (c *Contract) CurrentPrice(ctx context.Context) (*big.Int, error) {
	values, err := c.call(ctx, methodCurrentPrice)
	if err != nil {
		return nil, err
	}

	price, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: %s returned %T", domain.ErrDecode, methodCurrentPrice, values[0])
	}
	return price, nil
}

// UpdateEvents returns every BillboardUpdated log since the deployment
// block, in chain order. Logs from reorged blocks are skipped.
func (c *Contract) UpdateEvents(ctx context.Context) ([]domain.UpdateRecord, error) {
	logs, err := c.backend.FilterLogs(ctx, c.updateQuery(new(big.Int).SetUint64(c.deployBlock), nil))
	if err != nil {
		return nil, fmt.Errorf("filter %s logs: %w", eventUpdated, err)
	}

	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].BlockNumber != logs[j].BlockNumber {
			return logs[i].BlockNumber < logs[j].BlockNumber
		}
		return logs[i].Index < logs[j].Index
	})

	records := make([]domain.UpdateRecord, 0, len(logs))
	for _, entry := range logs {
		if entry.Removed {
			continue
		}
		record, err := c.decodeUpdate(entry)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

func (c *Contract) EncodeUpdate(first, second, third string) ([]byte, error) {
	data, err := c.abi.Pack(methodUpdate, first, second, third)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", methodUpdate, err)
	}
	return data, nil
}

// WaitMined polls for the receipt of txHash. A transaction the node no
// longer knows about for longer than the drop timeout is reported as
// dropped.
func (c *Contract) WaitMined(ctx context.Context, txHash string) (domain.Receipt, error) {
	hash := common.HexToHash(txHash)
	lastSeen := time.Now()

	for {
		receipt, err := c.backend.TransactionReceipt(ctx, hash)
		switch {
		case err == nil && receipt != nil:
			return toReceipt(receipt), nil
		case err != nil && !errors.Is(err, ethereum.NotFound):
			if ctxErr := ctx.Err(); ctxErr != nil {
				return domain.Receipt{}, ctxErr
			}
			c.logger.Debug("receipt lookup failed", "hash", txHash, "err", err)
		}

		_, pending, err := c.backend.TransactionByHash(ctx, hash)
		switch {
		case err == nil:
			lastSeen = time.Now()
			c.logger.Debug("transaction not mined yet", "hash", txHash, "pending", pending)
		case errors.Is(err, ethereum.NotFound):
			if time.Since(lastSeen) > c.dropTimeout {
				return domain.Receipt{}, fmt.Errorf("%w: %s unknown for %s", domain.ErrTransactionDropped, txHash, c.dropTimeout)
			}
		default:
			c.logger.Debug("transaction lookup failed", "hash", txHash, "err", err)
		}

		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return domain.Receipt{}, ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Contract) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	out, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &c.address, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	values, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("%w: unpack %s: %v", domain.ErrDecode, method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s returned no values", domain.ErrDecode, method)
	}
	return values, nil
}

func (c *Contract) updateQuery(from, to *big.Int) ethereum.FilterQuery {
	return ethereum.FilterQuery{
		FromBlock: from,
		ToBlock:   to,
		Addresses: []common.Address{c.address},
		Topics:    [][]common.Hash{{c.abi.Events[eventUpdated].ID}},
	}
}

func (c *Contract) decodeUpdate(entry types.Log) (domain.UpdateRecord, error) {
	var event billboardUpdated
	if err := c.abi.UnpackIntoInterface(&event, eventUpdated, entry.Data); err != nil {
		return domain.UpdateRecord{}, fmt.Errorf("%w: unpack %s in tx %s: %v", domain.ErrDecode, eventUpdated, entry.TxHash.Hex(), err)
	}

	return domain.NewUpdateRecord(
		event.Price,
		entry.TxHash.Hex(),
		entry.BlockNumber,
		entry.Index,
		event.First,
		event.Second,
		event.Third,
	), nil
}

func toReceipt(receipt *types.Receipt) domain.Receipt {
	status := domain.ReceiptSuccess
	if receipt.Status != types.ReceiptStatusSuccessful {
		status = domain.ReceiptReverted
	}

	var block uint64
	if receipt.BlockNumber != nil {
		block = receipt.BlockNumber.Uint64()
	}

	return domain.Receipt{
		TxHash:      receipt.TxHash.Hex(),
		BlockNumber: block,
		Status:      status,
	}
}
