package application

import (
	"context"
	"fmt"
	"io"
	"math/big"

	"github.com/bnema/billboard-cli/internal/domain"
	"github.com/bnema/billboard-cli/internal/ports"
	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/bnema/billboard-cli/internal/application"

type ContractGateway struct {
	contract ports.BillboardContract
	tracer   trace.Tracer
	logger   *log.Logger
}

func NewContractGateway(contract ports.BillboardContract, logger *log.Logger) *ContractGateway {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &ContractGateway{
		contract: contract,
		tracer:   otel.Tracer(tracerName),
		logger:   logger.WithPrefix("gateway"),
	}
}

func (g *ContractGateway) FetchArtifact(ctx context.Context, tokenID *big.Int) (artifact domain.Artifact, err error) {
	ctx, span := g.tracer.Start(ctx, "billboard.FetchArtifact", trace.WithAttributes(
		attribute.String("billboard.token_id", tokenID.String()),
	))
	defer func() { endSpan(span, err) }()

	uri, err := g.contract.TokenURI(ctx, tokenID)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("%w: token uri: %w", domain.ErrChainRead, err)
	}

	artifact, err = domain.DecodeTokenURI(uri)
	if err != nil {
		g.logger.Warn("undecodable billboard", "token_id", tokenID, "err", err)
		return domain.Artifact{}, err
	}

	price, err := g.contract.CurrentPrice(ctx)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("%w: current price: %w", domain.ErrChainRead, err)
	}
	artifact.Price = price
	span.SetAttributes(attribute.String("billboard.price_wei", price.String()))

	return artifact, nil
}

func (g *ContractGateway) FetchUpdateHistory(ctx context.Context) (records []domain.UpdateRecord, err error) {
	ctx, span := g.tracer.Start(ctx, "billboard.FetchUpdateHistory")
	defer func() { endSpan(span, err) }()

	records, err = g.contract.UpdateEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: update events: %w", domain.ErrChainRead, err)
	}
	span.SetAttributes(attribute.Int("billboard.records", len(records)))

	return records, nil
}

// SubmitUpdate sends updateBillboard with form.Price attached. The form is
// expected to be validated already.
func (g *ContractGateway) SubmitUpdate(ctx context.Context, signer Signer, form domain.UpdateForm) (*TransactionHandle, error) {
	if signer.Sender == nil || signer.From.Empty() {
		return nil, domain.ErrNoSigner
	}

	data, err := g.contract.EncodeUpdate(form.Lines[0], form.Lines[1], form.Lines[2])
	if err != nil {
		return nil, fmt.Errorf("encode update call: %w", err)
	}

	hash, err := signer.Sender.SendTransaction(ctx, domain.TxRequest{
		From:  signer.From,
		To:    g.contract.Address(),
		Value: new(big.Int).Set(form.Price),
		Data:  data,
	})
	if err != nil {
		return nil, fmt.Errorf("send update transaction: %w", err)
	}
	g.logger.Info("update transaction sent", "hash", hash, "channel", signer.Channel, "value_wei", form.Price)

	return &TransactionHandle{Hash: hash, contract: g.contract}, nil
}

type TransactionHandle struct {
	Hash     string
	contract ports.BillboardContract
}

// Wait blocks until the transaction is mined. A reverted receipt yields
// ErrTransactionReverted.
func (h *TransactionHandle) Wait(ctx context.Context) (domain.Receipt, error) {
	receipt, err := h.contract.WaitMined(ctx, h.Hash)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("wait for %s: %w", h.Hash, err)
	}
	if receipt.Status == domain.ReceiptReverted {
		return receipt, fmt.Errorf("%w: %s in block %d", domain.ErrTransactionReverted, h.Hash, receipt.BlockNumber)
	}
	return receipt, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
