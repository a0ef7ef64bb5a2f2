package billboard

import (
	"context"
	"errors"
	"io"

	"github.com/bnema/billboard-cli/internal/application"
	tea "github.com/charmbracelet/bubbletea"
)

type snapshotMsg struct {
	snapshot application.Snapshot
}

// liveModel redraws the billboard every time the store publishes a new
// snapshot. Older versions arriving late are dropped.
type liveModel struct {
	snapshot application.Snapshot
	opts     RenderOptions
	styles   styles
	quitting bool
}

func newLiveModel(initial application.Snapshot, opts RenderOptions) liveModel {
	return liveModel{
		snapshot: initial,
		opts:     opts,
		styles:   newStyles(),
	}
}

func (m liveModel) Init() tea.Cmd {
	return nil
}

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		if msg.snapshot.Version >= m.snapshot.Version {
			m.snapshot = msg.snapshot
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m liveModel) View() string {
	if m.quitting {
		return ""
	}
	return renderView(m.snapshot, m.opts, m.styles) + "\n" + m.styles.empty.Render("watching for updates, q to quit")
}

// Watch keeps the billboard on screen until ctx ends or the user quits.
// subscribe registers a snapshot listener and returns its detach func.
func Watch(ctx context.Context, output io.Writer, initial application.Snapshot, subscribe func(func(application.Snapshot)) func(), opts RenderOptions) error {
	p := tea.NewProgram(
		newLiveModel(initial, opts),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	unsubscribe := subscribe(func(snapshot application.Snapshot) {
		p.Send(snapshotMsg{snapshot: snapshot})
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
