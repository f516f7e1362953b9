package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// tabGap is the space between tab labels.
const tabGap = 1

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.dialog != nil {
		return m.dialog.view(m.styles, m.width, m.height)
	}

	layout := ComputeLayout(m.width, m.height, m.logPanelOpen)

	var content string
	if m.showHelp {
		content = m.help.FullHelpView(helpKeys{app: m.keys, table: m.activeTab().KeyMap()}.FullHelp())
	} else {
		content = m.activeTab().View()
	}
	content = lipgloss.NewStyle().
		Width(layout.Content.Width).
		Height(layout.Content.Height).
		MaxHeight(layout.Content.Height).
		Render(content)

	parts := []string{
		m.renderHeader(layout.Header.Width),
		m.renderTabs(layout.Tabs.Width),
		content,
	}
	if m.logPanelOpen {
		parts = append(parts, m.renderLogPanel(layout))
	}
	parts = append(parts, m.renderStatusBar(layout.StatusBar.Width))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader(width int) string {
	title := m.styles.TitleStyle().Render("salesdesk")
	if m.env.cfg.Backend.URL != "" {
		title += " " + m.styles.SubtitleStyle().Render(m.env.cfg.Backend.URL)
	}

	var feed string
	switch {
	case !m.feedKnown:
		feed = m.styles.HelpStyle().Render("○ connecting")
	case m.feedConnected:
		feed = m.styles.LiveStyle().Render("● live")
	default:
		feed = m.styles.OfflineStyle().Render("○ offline")
	}
	if m.busy() {
		feed = m.spinner.View() + " " + feed
	}

	gap := max(width-lipgloss.Width(title)-lipgloss.Width(feed), 1)
	return ansi.Truncate(title+strings.Repeat(" ", gap)+feed, width, "")
}

func (m Model) renderTab(i int) string {
	t := m.tabs[i]
	label := fmt.Sprintf("%d %s", i+1, t.Title())
	if n := t.Total(); n > 0 {
		label += fmt.Sprintf(" (%d)", n)
	}
	if i == m.active {
		return m.styles.ActiveTabStyle().Render(label)
	}
	return m.styles.TabStyle().Render(label)
}

func (m Model) renderTabs(width int) string {
	labels := make([]string, len(m.tabs))
	for i := range m.tabs {
		labels[i] = m.renderTab(i)
	}
	return ansi.Truncate(strings.Join(labels, strings.Repeat(" ", tabGap)), width, "…")
}

func (m Model) renderStatusBar(width int) string {
	var icon string
	var style lipgloss.Style
	switch m.statusLevel {
	case StatusLoading:
		icon = m.spinner.View()
		style = m.styles.InfoStatusStyle()
	case StatusSuccess:
		icon = m.styles.SuccessStyle().Render("✓")
		style = m.styles.SuccessStyle()
	case StatusError:
		icon = m.styles.ErrorStyle().Render("✗")
		style = m.styles.ErrorStyle()
	default:
		style = m.styles.InfoStatusStyle()
	}

	var status string
	switch {
	case icon != "":
		status = icon + " " + style.Render(m.statusMessage)
	case m.statusMessage != "":
		status = style.Render(m.statusMessage)
	}
	if m.statusLevel == StatusError && m.err != nil {
		status += m.styles.HelpStyle().Render(" (esc to clear)")
	}

	help := m.help.ShortHelpView(helpKeys{app: m.keys, table: m.activeTab().KeyMap()}.ShortHelp())
	room := width - lipgloss.Width(status) - 2
	if room < 10 {
		return ansi.Truncate(status, width, "…")
	}
	help = ansi.Truncate(help, room, "…")
	gap := max(width-lipgloss.Width(status)-lipgloss.Width(help), 1)
	return status + strings.Repeat(" ", gap) + help
}
