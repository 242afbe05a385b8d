package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sniffscope/internal/session"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 1)

	packetsStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("4")).
			Padding(0, 1)

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("2")).
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("6")).
			Bold(true)

	deviceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
)

func (m Model) View() string {
	snap := m.ctrl.Snapshot()
	if !snap.Confirmed {
		return m.viewSelection(snap)
	}
	return m.viewCapture(snap)
}

func (m Model) viewSelection(snap session.Snapshot) string {
	var b strings.Builder
	for i, dev := range snap.Devices {
		line := fmt.Sprintf("%d: %s", i+1, dev.Name)
		if i == snap.Selected {
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString(deviceStyle.Render(line))
		}
		b.WriteByte('\n')
	}

	panel := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("6")).
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Select Network Interface"),
			b.String(),
			footerStyle.Render("↑↓: Navigate | Enter: Select | q: Quit"),
		))

	if m.status != "" {
		panel = lipgloss.JoinVertical(lipgloss.Left, panel, errorStyle.Render(m.status))
	}
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
	}
	return panel
}

func (m Model) viewCapture(snap session.Snapshot) string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	// Borders and padding consume four columns.
	inner := width - 4

	header := headerStyle.Width(inner).Render("Packet Sniffer — Network Monitor")

	// Header, stats and footer take nine rows; the rest shows packets.
	listHeight := m.height - 9
	if listHeight < 3 {
		listHeight = 3
	}
	lines := make([]string, 0, listHeight)
	for i, p := range snap.Packets {
		if i >= listHeight {
			break
		}
		lines = append(lines, truncate(p.Text, inner))
	}
	packets := packetsStyle.Width(inner).Height(listHeight).
		Render(strings.Join(lines, "\n"))

	stats := statsStyle.Width(inner).Render(fmt.Sprintf(
		"Total Packets: %d | Packets/sec: %.2f | Running Time: %ds",
		snap.Total, snap.Rate, int(snap.Elapsed.Seconds())))

	footerText := "Press 's' to start capturing | 'q' or Ctrl+C to quit"
	if snap.Capturing {
		footerText = "Press 's' to stop capturing | 'q' or Ctrl+C to quit"
	}
	footer := footerStyle.Width(width).Align(lipgloss.Center).Render(footerText)

	return lipgloss.JoinVertical(lipgloss.Left, header, packets, stats, footer)
}

// truncate cuts on rune boundaries so multi-byte characters survive.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
