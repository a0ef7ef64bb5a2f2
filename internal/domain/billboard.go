package domain

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

const (
	MaxLineBytes = 50
	LineCount    = 3
)

const explorerTxURL = "https://etherscan.io/tx/"

type Artifact struct {
	TokenURI    string
	Name        string
	Description string
	MediaType   string
	Image       string
	Lines       []string
	Price       *big.Int
	TxHash      string
}

func (a Artifact) Clone() Artifact {
	clone := a
	if a.Price != nil {
		clone.Price = new(big.Int).Set(a.Price)
	}
	if a.Lines != nil {
		clone.Lines = append([]string(nil), a.Lines...)
	}
	return clone
}

type UpdateRecord struct {
	Price       *big.Int
	TxHash      string
	BlockNumber uint64
	LogIndex    uint
	Lines       [LineCount]string
	Text        string
}

func NewUpdateRecord(price *big.Int, txHash string, blockNumber uint64, logIndex uint, first, second, third string) UpdateRecord {
	return UpdateRecord{
		Price:       price,
		TxHash:      txHash,
		BlockNumber: blockNumber,
		LogIndex:    logIndex,
		Lines:       [LineCount]string{first, second, third},
		Text:        strings.Join([]string{first, second, third}, " "),
	}
}

func (r UpdateRecord) Clone() UpdateRecord {
	clone := r
	if r.Price != nil {
		clone.Price = new(big.Int).Set(r.Price)
	}
	return clone
}

func ExplorerTxURL(hash string) string {
	if hash == "" {
		return ""
	}
	return explorerTxURL + hash
}

// RankHistory orders records by price, highest first. Only higher bids are
// accepted on-chain, so the first record is the current billboard and the
// rest are its predecessors. Records with equal prices keep chain order.
func RankHistory(records []UpdateRecord) (*UpdateRecord, []UpdateRecord) {
	if len(records) == 0 {
		return nil, nil
	}

	ranked := make([]UpdateRecord, len(records))
	for i, record := range records {
		ranked[i] = record.Clone()
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return comparePrice(ranked[i].Price, ranked[j].Price) > 0
	})

	current := ranked[0]
	return &current, ranked[1:]
}

func comparePrice(a, b *big.Int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Cmp(b)
	}
}

type UpdateForm struct {
	Lines [LineCount]string
	Price *big.Int
}

// Validate checks the form against the last fetched price.
func (f UpdateForm) Validate(current *big.Int) error {
	for i, line := range f.Lines {
		if len(line) > MaxLineBytes {
			return fmt.Errorf("%w: line %d is %d bytes (max %d)", ErrValidation, i+1, len(line), MaxLineBytes)
		}
	}

	if f.Price == nil || f.Price.Sign() <= 0 {
		return fmt.Errorf("%w: price is required", ErrValidation)
	}
	if current == nil {
		return fmt.Errorf("%w: current price unknown", ErrValidation)
	}
	if f.Price.Cmp(current) <= 0 {
		return fmt.Errorf("%w: price %s wei must exceed current price %s wei", ErrValidation, f.Price, current)
	}

	return nil
}

type TxRequest struct {
	From  Address
	To    Address
	Value *big.Int
	Data  []byte
}

type ReceiptStatus string

const (
	ReceiptSuccess  ReceiptStatus = "success"
	ReceiptReverted ReceiptStatus = "reverted"
)

type Receipt struct {
	TxHash      string
	BlockNumber uint64
	Status      ReceiptStatus
}

// UpdateNotice signals that the billboard changed on-chain.
type UpdateNotice struct {
	BlockNumber uint64
	TxHash      string
}
