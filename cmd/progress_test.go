package cmd

import (
	"errors"
	"testing"

	"github.com/bnema/billboard-cli/internal/application"
	"github.com/bnema/billboard-cli/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func updateProgress(t *testing.T, m progressModel, msg tea.Msg) (progressModel, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)
	updated, ok := next.(progressModel)
	require.True(t, ok)
	return updated, cmd
}

func TestProgressFollowsPendingTransaction(t *testing.T) {
	t.Parallel()

	m := newProgressModel("Bidding 0.01 Ξ, confirm in your wallet...", nil)
	assert.Contains(t, m.View(), "confirm in your wallet")

	m, _ = updateProgress(t, m, snapshotMsg{snapshot: application.Snapshot{Phase: application.PhaseSubmitting}})
	assert.Contains(t, m.View(), "confirm in your wallet")
	assert.Empty(t, m.txHash)

	hash := "0x" + "ab"
	m, _ = updateProgress(t, m, snapshotMsg{snapshot: application.Snapshot{
		Phase:         application.PhaseSubmitting,
		Pending:       true,
		PendingTxHash: hash,
	}})
	view := m.View()
	assert.Contains(t, view, "mined")
	assert.Contains(t, view, domain.ExplorerTxURL(hash))
	assert.Equal(t, hash, m.txHash)

	// Mining clears the pending hash in the store; the view keeps the link.
	m, _ = updateProgress(t, m, snapshotMsg{snapshot: application.Snapshot{Phase: application.PhaseReady}})
	assert.Equal(t, hash, m.txHash)
	assert.Contains(t, m.View(), domain.ExplorerTxURL(hash))
}

func TestProgressShowsFailure(t *testing.T) {
	t.Parallel()

	m := newProgressModel("Bidding", nil)
	m, _ = updateProgress(t, m, snapshotMsg{snapshot: application.Snapshot{Phase: application.PhaseFailed}})
	assert.Contains(t, m.View(), "Update failed")
}

func TestProgressShowsPairingTopic(t *testing.T) {
	t.Parallel()

	m := newProgressModel("Opening a bridge session...", nil)
	m, _ = updateProgress(t, m, pairingMsg{pairing: domain.Pairing{Topic: "topic-1", URI: "wc:topic-1@2"}})

	view := m.View()
	assert.Contains(t, view, "Waiting for wallet approval")
	assert.Contains(t, view, "topic-1")
}

func TestProgressDoneQuitsWithError(t *testing.T) {
	t.Parallel()

	failure := errors.New("user rejected")
	m := newProgressModel("Bidding", nil)
	m, cmd := updateProgress(t, m, progressDoneMsg{err: failure})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.done)
	assert.ErrorIs(t, m.err, failure)
	assert.Empty(t, m.View())
}
