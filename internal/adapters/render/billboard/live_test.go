package billboard

import (
	"math/big"
	"testing"

	"github.com/bnema/billboard-cli/internal/application"
	"github.com/bnema/billboard-cli/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func liveSnapshot(version uint64, line string) application.Snapshot {
	return application.Snapshot{
		Phase:    application.PhaseReady,
		Channel:  domain.ChannelNone,
		Artifact: &domain.Artifact{Lines: []string{line}, Price: big.NewInt(10)},
		Version:  version,
	}
}

func TestLiveModelShowsNewerSnapshots(t *testing.T) {
	m := newLiveModel(liveSnapshot(1, "before"), RenderOptions{})
	assert.Contains(t, m.View(), "before")

	next, cmd := m.Update(snapshotMsg{snapshot: liveSnapshot(3, "after")})
	assert.Nil(t, cmd)
	assert.Contains(t, next.View(), "after")

	stale, _ := next.Update(snapshotMsg{snapshot: liveSnapshot(2, "late")})
	assert.Contains(t, stale.View(), "after")
	assert.NotContains(t, stale.View(), "late")
}

func TestLiveModelQuitsOnKey(t *testing.T) {
	m := newLiveModel(liveSnapshot(1, "board"), RenderOptions{})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, next.View())
}
