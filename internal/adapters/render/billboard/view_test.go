package billboard

import (
	"errors"
	"math/big"
	"testing"

	"github.com/bnema/billboard-cli/internal/application"
	"github.com/bnema/billboard-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ether(t *testing.T, raw string) *big.Int {
	t.Helper()

	wei, err := domain.ParseEther(raw)
	require.NoError(t, err)
	return wei
}

func testHistory(t *testing.T) []domain.UpdateRecord {
	t.Helper()

	return []domain.UpdateRecord{
		domain.NewUpdateRecord(ether(t, "0.005"), "0xaaa", 100, 0, "first", "board", ""),
		domain.NewUpdateRecord(ether(t, "0.01"), "0xbbb", 101, 0, "hello", "from", "chain"),
		domain.NewUpdateRecord(ether(t, "0.003"), "0xccc", 102, 0, "lowest", "", ""),
	}
}

func TestRenderBillboardWithConnectedWallet(t *testing.T) {
	price := ether(t, "0.01")

	output, err := Render(application.Snapshot{
		Phase:   application.PhaseReady,
		Account: "0x1111111111111111111111111111111111111111",
		ChainID: 4,
		Channel: domain.ChannelInjected,
		Artifact: &domain.Artifact{
			Name:   "Billboard #1",
			Lines:  []string{"hello", "from", "chain"},
			Price:  price,
			TxHash: "0xbbb",
		},
		ProposedPrice: domain.NextMinimumBid(price),
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "Billboard #1")
	assert.Contains(t, output, "up to date")
	assert.Contains(t, output, "hello")
	assert.Contains(t, output, "chain")
	assert.Contains(t, output, "price: 0.01 Ξ")
	assert.Contains(t, output, "next bid: ≥ 0.010000000000000001 Ξ")
	assert.Contains(t, output, "https://etherscan.io/tx/0xbbb")
	assert.Contains(t, output, "0x1111…1111")
	assert.Contains(t, output, "(injected wallet)")
	assert.Contains(t, output, "chain 4")
	assert.NotContains(t, output, "not connected")
	assert.NotContains(t, output, "Previous billboards")
}

func TestRenderBillboardUnavailable(t *testing.T) {
	output, err := Render(application.Snapshot{
		Phase:     application.PhaseReady,
		Channel:   domain.ChannelNone,
		LastError: domain.ErrDecode,
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "The Billboard")
	assert.Contains(t, output, "Billboard unavailable.")
	assert.Contains(t, output, "not connected")
	assert.Contains(t, output, "error: "+domain.ErrDecode.Error())
	assert.NotContains(t, output, "price:")
}

func TestRenderStaleAndPending(t *testing.T) {
	output, err := Render(application.Snapshot{
		Phase:         application.PhaseStale,
		Channel:       domain.ChannelRemoteSession,
		Account:       "0x2222222222222222222222222222222222222222",
		Artifact:      &domain.Artifact{Lines: []string{"old"}, Price: big.NewInt(1)},
		Pending:       true,
		PendingTxHash: "0xpending",
		LastError:     errors.Join(domain.ErrChainRead, errors.New("timeout")),
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "[stale]")
	assert.Contains(t, output, "(remote session)")
	assert.Contains(t, output, "pending update: https://etherscan.io/tx/0xpending")
	assert.Contains(t, output, "timeout")
}

func TestRenderPreviousBillboardsRankedByPrice(t *testing.T) {
	history := testHistory(t)

	output, err := Render(application.Snapshot{
		Phase:    application.PhaseReady,
		Channel:  domain.ChannelNone,
		Artifact: &domain.Artifact{Lines: []string{"hello", "from", "chain"}, Price: ether(t, "0.01")},
		History:  history,
	}, RenderOptions{ShowHistory: true})

	require.NoError(t, err)
	assert.Contains(t, output, "Previous billboards")
	assert.Contains(t, output, " 1. 0.005 Ξ  first board")
	assert.Contains(t, output, " 2. 0.003 Ξ  lowest")
	assert.NotContains(t, output, "more")
}

func TestRenderSingleRecordHidesPreviousBillboards(t *testing.T) {
	output, err := Render(application.Snapshot{
		Phase:    application.PhaseReady,
		Channel:  domain.ChannelNone,
		Artifact: &domain.Artifact{Lines: []string{"only"}, Price: big.NewInt(5)},
		History:  testHistory(t)[:1],
	}, RenderOptions{ShowHistory: true})

	require.NoError(t, err)
	assert.NotContains(t, output, "Previous billboards")
}

func TestRenderHistoryOnlyHonorsLimit(t *testing.T) {
	output, err := Render(application.Snapshot{
		Phase:   application.PhaseReady,
		Channel: domain.ChannelNone,
		History: testHistory(t),
	}, RenderOptions{HistoryOnly: true, Limit: 1})

	require.NoError(t, err)
	assert.Contains(t, output, "Billboard history")
	assert.Contains(t, output, "updates: 3")
	assert.Contains(t, output, "current: 0.01 Ξ  hello from chain")
	assert.Contains(t, output, " 1. 0.005 Ξ  first board")
	assert.NotContains(t, output, "lowest")
	assert.Contains(t, output, "... 1 more")
}

func TestRenderHistoryOnlyEmpty(t *testing.T) {
	output, err := Render(application.Snapshot{Phase: application.PhaseReady}, RenderOptions{HistoryOnly: true})

	require.NoError(t, err)
	assert.Contains(t, output, "No billboard updates yet.")
}
