// pattern: Imperative Shell

package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"salesdesk/internal/backend"
	"salesdesk/internal/events"
)

// clipboardMsg reports the outcome of a copy.
type clipboardMsg struct {
	text string
	err  error
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, m.broadcast(msg)

	case spinner.TickMsg:
		var cmds []tea.Cmd
		if msg.ID == m.spinner.ID() && m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		cmds = append(cmds, m.broadcast(msg))
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case events.DataChangedMsg:
		_, t := m.tabByName(msg.Collection)
		if t == nil {
			return m, nil
		}
		m.logger.Debug("collection changed", "collection", msg.Collection, "ids", len(msg.IDs))
		return m, tea.Batch(t.Refresh(), m.spinner.Tick)

	case events.FeedStatusMsg:
		if msg.Connected != m.feedConnected || !m.feedKnown {
			m.logger.Info("change feed", "connected", msg.Connected)
		}
		m.feedKnown = true
		m.feedConnected = msg.Connected
		if !msg.Connected && msg.Err != nil {
			m.logger.Debug("change feed error", "error", msg.Err)
		}
		return m, nil

	case events.ConfigReloadedMsg:
		return m.applyConfig(msg)

	case loadFailedMsg:
		m.logger.Error("load failed", "collection", msg.collection, "error", msg.err)
		m.setError(fmt.Sprintf("%s: %s", msg.collection, backend.StatusText(msg.err)), msg.err)
		return m, nil

	case statusChangedMsg:
		if msg.err != nil {
			m.logger.Error("status change failed", "reservation", msg.id, "error", msg.err)
			m.setError(fmt.Sprintf("%s: %s", msg.id, backend.StatusText(msg.err)), msg.err)
			return m, nil
		}
		m.logger.Info("reservation status changed", "reservation", msg.id, "status", string(msg.status))
		cmd := m.setStatus(StatusSuccess, fmt.Sprintf("%s marked %s", msg.id, msg.status))
		return m, tea.Batch(cmd, m.reservations.Refresh())

	case openHistoryMsg:
		return m, m.openHistory(msg)

	case historyLoadedMsg:
		if m.dialog == nil || m.dialog.payment.ID != msg.paymentID {
			return m, nil
		}
		m.dialog.loading = false
		m.dialog.events = msg.events
		m.dialog.err = msg.err
		m.dialog.setContent(m.styles)
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.setError("copy failed", msg.err)
			return m, nil
		}
		return m, m.setStatus(StatusInfo, "copied "+msg.text)

	case logEntriesMsg:
		for _, e := range msg.entries {
			m.addLogEntry(e)
		}
		if m.logPanelOpen {
			m.updateLogViewportContent()
		}
		return m, consumeLogEntries(m.entries)

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.clearStatus()
		}
		return m, nil
	}

	return m, m.broadcast(msg)
}

// broadcast hands a message to every tab. Tabs ignore messages addressed
// to other collections.
func (m Model) broadcast(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.tabs))
	for _, t := range m.tabs {
		cmds = append(cmds, t.Update(msg))
	}
	return tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit shortcuts first (ctrl+d always, ctrl+c double-press)
	if key.Matches(msg, m.keys.Quit) {
		m.logger.Debug("quit via ctrl+d")
		return m, tea.Quit
	}
	if msg.Type == tea.KeyCtrlC {
		now := time.Now()
		if !m.lastCtrlCTime.IsZero() && now.Sub(m.lastCtrlCTime) <= doubleCtrlCWindow {
			m.logger.Debug("quit via double ctrl+c")
			return m, tea.Quit
		}
		m.lastCtrlCTime = now
		return m, m.setStatus(StatusInfo, "ctrl+c ctrl+c to quit")
	}

	if m.dialog != nil {
		closed, cmd := m.dialog.update(msg)
		if closed {
			m.dialog = nil
		}
		return m, cmd
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || msg.Type == tea.KeyEscape {
			m.showHelp = false
		}
		return m, nil
	}

	active := m.activeTab()
	if active.Capturing() {
		return m, active.Update(msg)
	}

	if msg.Type == tea.KeyEscape && m.statusLevel == StatusError {
		m.clearStatus()
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.NextTab):
		return m, m.switchTab((m.active + 1) % len(m.tabs))
	case key.Matches(msg, m.keys.PrevTab):
		return m, m.switchTab((m.active + len(m.tabs) - 1) % len(m.tabs))
	case key.Matches(msg, m.keys.Jump):
		i := int(msg.String()[0] - '1')
		if i < len(m.tabs) {
			return m, m.switchTab(i)
		}
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.logger.Debug("manual refresh", "collection", active.Name())
		return m, tea.Batch(active.Refresh(), m.spinner.Tick)
	case key.Matches(msg, m.keys.Logs):
		m.logPanelOpen = !m.logPanelOpen
		m.resize()
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		k, ok := active.CursorKey()
		if !ok {
			return m, nil
		}
		return m, m.copyText(k)
	case key.Matches(msg, m.keys.History):
		if active != tab(m.payments) {
			return m, nil
		}
		k, ok := m.payments.CursorKey()
		if !ok {
			return m, nil
		}
		p, ok := m.payments.Row(k)
		if !ok {
			return m, nil
		}
		return m, m.openHistory(openHistoryMsg{payment: p})
	}

	return m, active.Update(msg)
}

func (m *Model) switchTab(i int) tea.Cmd {
	if i == m.active {
		return nil
	}
	m.tabs[m.active].Blur()
	m.active = i
	m.tabs[i].Focus()
	m.logger.Debug("tab switched", "tab", m.tabs[i].Name())
	return nil
}

func (m *Model) openHistory(msg openHistoryMsg) tea.Cmd {
	m.dialog = newHistoryDialog(msg.payment)
	m.dialog.resize(m.width, m.height, m.cfg.Table.DialogBreakpoint)
	m.dialog.setContent(m.styles)
	return tea.Batch(loadHistory(m.env.source, msg.payment.ID, m.env.timeout), m.spinner.Tick)
}

func (m Model) copyText(text string) tea.Cmd {
	write := m.clipboard
	return func() tea.Msg {
		return clipboardMsg{text: text, err: write(text)}
	}
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.dialog != nil || m.showHelp {
		return m, nil
	}
	layout := ComputeLayout(m.width, m.height, m.logPanelOpen)
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && msg.Y == layout.Tabs.Y {
		if i := m.tabAt(msg.X); i >= 0 {
			return m, m.switchTab(i)
		}
		return m, nil
	}
	if m.logPanelOpen && m.logReady && msg.Y >= layout.Logs.Y && msg.Y < layout.Logs.Y+layout.Logs.Height {
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return m, cmd
	}
	return m, m.activeTab().Update(msg)
}

// tabAt returns the tab whose label covers column x on the tab bar.
func (m Model) tabAt(x int) int {
	pos := 0
	for i := range m.tabs {
		w := lipgloss.Width(m.renderTab(i))
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + tabGap
	}
	return -1
}

func (m Model) applyConfig(msg events.ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.logger.Warn("config reload rejected", "error", msg.Err)
		m.setError("config: "+msg.Err.Error(), msg.Err)
		return m, nil
	}
	cfg := msg.Config
	m.cfg = cfg
	m.styles = NewStyles(cfg.Theme)
	m.env.cfg = cfg
	m.env.styles = m.styles
	m.env.md.SetStyle(m.styles.MarkdownStyle())
	m.spinner.Style = m.styles.AccentStyle()

	cmds := []tea.Cmd{m.setStatus(StatusSuccess, "config reloaded")}
	for _, t := range m.tabs {
		t.SetStyles(m.styles.Table())
		cmds = append(cmds, t.SetBreakpoint(cfg.Table.Breakpoint))
	}
	if m.setLevel != nil {
		if err := m.setLevel(cfg.LogLevel); err != nil {
			m.logger.Warn("log level not applied", "level", cfg.LogLevel, "error", err)
		}
	}
	m.resize()
	if m.dialog != nil {
		m.dialog.setContent(m.styles)
	}
	if m.logPanelOpen {
		m.updateLogViewportContent()
	}
	m.logger.Info("config reloaded", "theme", cfg.Theme, "breakpoint", cfg.Table.Breakpoint)
	return m, tea.Batch(cmds...)
}
