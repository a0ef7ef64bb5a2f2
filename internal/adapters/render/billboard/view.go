package billboard

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/bnema/billboard-cli/internal/application"
	"github.com/bnema/billboard-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const etherSymbol = "Ξ"

type RenderOptions struct {
	// HistoryOnly renders the ranked update list without the board.
	HistoryOnly bool
	// ShowHistory appends previous billboards below the board.
	ShowHistory bool
	// Limit caps the number of previous billboards; zero shows all.
	Limit int
}

func renderView(snapshot application.Snapshot, opts RenderOptions, s styles) string {
	if opts.HistoryOnly {
		return renderHistory(snapshot, opts, s)
	}

	lines := []string{
		s.title.Render(boardTitle(snapshot.Artifact)),
		s.header.Render(phaseLabel(snapshot.Phase)),
		s.section.Render(renderBoard(snapshot.Artifact, s)),
	}
	lines = append(lines, detailLines(snapshot, s)...)

	if opts.ShowHistory && len(snapshot.History) > 1 {
		lines = append(lines, s.section.Render(renderPrevious(snapshot, opts.Limit, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderBoard(artifact *domain.Artifact, s styles) string {
	if artifact == nil {
		return s.empty.Render("Billboard unavailable.")
	}

	text := make([]string, 0, len(artifact.Lines))
	for _, line := range artifact.Lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			text = append(text, s.line.Render(trimmed))
		}
	}
	if len(text) == 0 {
		text = append(text, s.empty.Render("(blank)"))
	}

	return s.board.Render(lipgloss.JoinVertical(lipgloss.Center, text...))
}

func detailLines(snapshot application.Snapshot, s styles) []string {
	lines := make([]string, 0, 6)

	if price := snapshot.CurrentPrice(); price != nil {
		lines = append(lines, s.detail.Render("price: ")+s.price.Render(formatPrice(price)))
	}
	if snapshot.ProposedPrice != nil {
		lines = append(lines, s.detail.Render("next bid: ≥ "+formatPrice(snapshot.ProposedPrice)))
	}
	if snapshot.Artifact != nil && snapshot.Artifact.TxHash != "" {
		lines = append(lines, s.detail.Render("tx: ")+s.link.Render(domain.ExplorerTxURL(snapshot.Artifact.TxHash)))
	}

	lines = append(lines, walletLine(snapshot, s))

	if snapshot.Pending {
		pending := "pending update"
		if snapshot.PendingTxHash != "" {
			pending += ": " + domain.ExplorerTxURL(snapshot.PendingTxHash)
		}
		lines = append(lines, s.warning.Render(pending))
	}
	if snapshot.LastError != nil {
		lines = append(lines, s.warning.Render("error: "+snapshot.LastError.Error()))
	}

	return lines
}

func walletLine(snapshot application.Snapshot, s styles) string {
	if !snapshot.Connected() {
		return s.detail.Render("wallet: ") + s.empty.Render("not connected")
	}

	line := s.detail.Render("wallet: ") + s.account.Render(snapshot.Account.Short()) +
		s.detail.Render(fmt.Sprintf(" (%s)", snapshot.Channel.Label()))
	if snapshot.ChainID != 0 {
		line += s.detail.Render(fmt.Sprintf(" chain %d", snapshot.ChainID))
	}
	return line
}

func renderHistory(snapshot application.Snapshot, opts RenderOptions, s styles) string {
	current, _ := snapshot.Ranked()
	if current == nil {
		return s.empty.Render("No billboard updates yet.")
	}

	lines := []string{
		s.title.Render("Billboard history"),
		s.header.Render(fmt.Sprintf("updates: %d", len(snapshot.History))),
		s.section.Render(s.detail.Render("current: ") + recordLine(*current, s)),
	}
	if len(snapshot.History) > 1 {
		lines = append(lines, s.section.Render(renderPrevious(snapshot, opts.Limit, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderPrevious(snapshot application.Snapshot, limit int, s styles) string {
	_, previous := snapshot.Ranked()

	shown := previous
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	lines := []string{s.title.Render("Previous billboards")}
	for i, record := range shown {
		lines = append(lines, s.rank.Render(fmt.Sprintf("%2d. ", i+1))+recordLine(record, s))
	}
	if hidden := len(previous) - len(shown); hidden > 0 {
		lines = append(lines, s.empty.Render(fmt.Sprintf("... %d more", hidden)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func recordLine(record domain.UpdateRecord, s styles) string {
	text := strings.TrimSpace(record.Text)
	if text == "" {
		text = "(blank)"
	}

	line := s.price.Render(formatPrice(record.Price)) + "  " + s.previous.Render(text)
	if record.TxHash != "" {
		line += "  " + s.link.Render(domain.ExplorerTxURL(record.TxHash))
	}
	return line
}

func boardTitle(artifact *domain.Artifact) string {
	if artifact != nil && strings.TrimSpace(artifact.Name) != "" {
		return strings.TrimSpace(artifact.Name)
	}
	return "The Billboard"
}

func phaseLabel(phase application.Phase) string {
	switch phase {
	case application.PhaseStale:
		return "refreshing [stale]"
	case application.PhaseSubmitting:
		return "submitting update"
	case application.PhaseInitializing:
		return "loading"
	case application.PhaseFailed:
		return "update failed"
	default:
		return "up to date"
	}
}

func formatPrice(wei *big.Int) string {
	return domain.FormatEther(wei) + " " + etherSymbol
}
