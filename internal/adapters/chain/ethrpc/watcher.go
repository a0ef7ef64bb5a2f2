package ethrpc

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/bnema/billboard-cli/internal/domain"
	"github.com/bnema/billboard-cli/internal/ports"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

// Watch reports every new BillboardUpdated log to handler. It subscribes
// when the endpoint supports notifications and polls otherwise. The
// returned Unsubscribe only cancels; it is safe to call from handler.
func (c *Contract) Watch(ctx context.Context, handler ports.UpdateHandler) (ports.Unsubscribe, error) {
	if handler == nil {
		return nil, errors.New("update handler is required")
	}

	watchCtx, cancel := context.WithCancel(ctx)
	head, err := c.backend.BlockNumber(watchCtx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("read head block: %w", err)
	}

	logs := make(chan types.Log, 16)
	sub, err := c.backend.SubscribeFilterLogs(watchCtx, c.updateQuery(nil, nil), logs)
	switch {
	case err == nil:
		c.logger.Debug("watching billboard updates", "mode", "subscribe", "head", head)
		go c.consume(watchCtx, sub, logs, newLogCursor(head+1), handler)
	case errors.Is(err, rpc.ErrNotificationsUnsupported):
		c.logger.Debug("watching billboard updates", "mode", "poll", "head", head, "interval", c.pollInterval)
		go c.poll(watchCtx, newLogCursor(head+1), handler)
	default:
		cancel()
		return nil, fmt.Errorf("subscribe to %s: %w", eventUpdated, err)
	}

	return func() { cancel() }, nil
}

// logCursor tracks the newest block already reported and the logs seen in
// it, so a poll fallback does not repeat what the subscription delivered.
type logCursor struct {
	block uint64
	seen  map[logKey]struct{}
}

type logKey struct {
	tx    common.Hash
	index uint
}

func newLogCursor(block uint64) *logCursor {
	return &logCursor{block: block, seen: map[logKey]struct{}{}}
}

// report records entry and reports whether it is new.
func (c *logCursor) report(entry types.Log) bool {
	switch {
	case entry.BlockNumber < c.block:
		return false
	case entry.BlockNumber > c.block:
		c.block = entry.BlockNumber
		c.seen = map[logKey]struct{}{}
	}

	key := logKey{tx: entry.TxHash, index: entry.Index}
	if _, ok := c.seen[key]; ok {
		return false
	}
	c.seen[key] = struct{}{}
	return true
}

// skipTo marks every block below block as fully reported.
func (c *logCursor) skipTo(block uint64) {
	if block <= c.block {
		return
	}
	c.block = block
	c.seen = map[logKey]struct{}{}
}

func (c *Contract) consume(ctx context.Context, sub ethereum.Subscription, logs <-chan types.Log, cursor *logCursor, handler ports.UpdateHandler) {
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-sub.Err():
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("update subscription ended, polling instead", "err", err)
			go c.poll(ctx, cursor, handler)
			return
		case entry := <-logs:
			if entry.Removed || !cursor.report(entry) {
				continue
			}
			handler(domain.UpdateNotice{BlockNumber: entry.BlockNumber, TxHash: entry.TxHash.Hex()})
		}
	}
}

func (c *Contract) poll(ctx context.Context, cursor *logCursor, handler ports.UpdateHandler) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		head, err := c.backend.BlockNumber(ctx)
		if err != nil {
			c.logger.Debug("poll head block", "err", err)
			continue
		}
		from := cursor.block
		if head < from {
			continue
		}

		logs, err := c.backend.FilterLogs(ctx, c.updateQuery(new(big.Int).SetUint64(from), new(big.Int).SetUint64(head)))
		if err != nil {
			c.logger.Debug("poll update logs", "from", from, "to", head, "err", err)
			continue
		}

		for _, entry := range logs {
			if entry.Removed || ctx.Err() != nil || !cursor.report(entry) {
				continue
			}
			handler(domain.UpdateNotice{BlockNumber: entry.BlockNumber, TxHash: entry.TxHash.Hex()})
		}
		cursor.skipTo(head + 1)
	}
}
