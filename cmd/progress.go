package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/billboard-cli/internal/application"
	"github.com/bnema/billboard-cli/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	progressSpinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	progressDetailStyle  = lipgloss.NewStyle().Faint(true)
)

type progressDoneMsg struct {
	err error
}

// snapshotMsg carries a store update into the progress view.
type snapshotMsg struct {
	snapshot application.Snapshot
}

type pairingMsg struct {
	pairing domain.Pairing
}

// progressModel keeps a spinner on screen during a wallet round trip. Its
// line follows the store: bidding until the wallet signs, then mining with
// the explorer link of the pending transaction.
type progressModel struct {
	spinner spinner.Model
	step    string
	detail  string
	txHash  string
	work    tea.Cmd
	err     error
	done    bool
}

func newProgressModel(step string, work tea.Cmd) progressModel {
	return progressModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(progressSpinnerStyle)),
		step:    step,
		work:    work,
	}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.work)
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case snapshotMsg:
		return m.follow(msg.snapshot), nil
	case pairingMsg:
		m.step = "Waiting for wallet approval..."
		m.detail = "pairing " + msg.pairing.Topic
		return m, nil
	case progressDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m progressModel) follow(s application.Snapshot) progressModel {
	switch {
	case s.Phase == application.PhaseFailed:
		m.step = "Update failed"
	case s.PendingTxHash != "" && s.PendingTxHash != m.txHash:
		m.txHash = s.PendingTxHash
		m.step = "Waiting for the update to be mined..."
		m.detail = domain.ExplorerTxURL(s.PendingTxHash)
	}
	return m
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}

	line := fmt.Sprintf("%s %s", m.spinner.View(), m.step)
	if m.detail != "" {
		line += "\n  " + progressDetailStyle.Render(m.detail)
	}
	return line
}

// runWithProgress shows step next to a spinner on output until work
// returns. work pushes snapshotMsg and pairingMsg updates through send and
// must stop sending before it returns.
func runWithProgress(ctx context.Context, output io.Writer, step string, work func(ctx context.Context, send func(tea.Msg)) error) (progressModel, error) {
	var p *tea.Program
	send := func(msg tea.Msg) { p.Send(msg) }
	workCmd := func() tea.Msg {
		return progressDoneMsg{err: work(ctx, send)}
	}

	p = tea.NewProgram(
		newProgressModel(step, workCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return progressModel{}, err
	}

	result, ok := finalModel.(progressModel)
	if !ok {
		return progressModel{}, fmt.Errorf("unexpected final progress model type %T", finalModel)
	}

	return result, result.err
}

// followStore forwards store updates to send until the returned func runs.
func followStore(store *application.StateStore, send func(tea.Msg)) func() {
	return store.Subscribe(func(s application.Snapshot) {
		send(snapshotMsg{snapshot: s})
	})
}
