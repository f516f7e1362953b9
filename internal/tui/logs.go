package tui

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"salesdesk/internal/logging"
)

// maxLogEntries bounds the log panel's ring buffer.
const maxLogEntries = 1000

// logBatchSize caps how many queued entries one logEntriesMsg carries.
const logBatchSize = 100

// logEntriesMsg delivers log entries from the logging channel.
type logEntriesMsg struct {
	entries []logging.LogEntry
}

// consumeLogEntries waits for the next entry, then drains whatever else is
// already queued. It returns nil once the channel is closed, which ends
// the loop.
func consumeLogEntries(ch <-chan logging.LogEntry) tea.Cmd {
	return func() tea.Msg {
		first, ok := <-ch
		if !ok {
			return nil
		}
		entries := []logging.LogEntry{first}
		for len(entries) < logBatchSize {
			select {
			case e, ok := <-ch:
				if !ok {
					return logEntriesMsg{entries: entries}
				}
				entries = append(entries, e)
			default:
				return logEntriesMsg{entries: entries}
			}
		}
		return logEntriesMsg{entries: entries}
	}
}

func (m *Model) addLogEntry(e logging.LogEntry) {
	m.logEntries = append(m.logEntries, e)
	if over := len(m.logEntries) - maxLogEntries; over > 0 {
		m.logEntries = m.logEntries[over:]
	}
}

// visibleLogEntries returns the entries at or above the configured level.
func (m Model) visibleLogEntries() []logging.LogEntry {
	out := make([]logging.LogEntry, 0, len(m.logEntries))
	for _, e := range m.logEntries {
		if e.AtLeast(m.cfg.LogLevel) {
			out = append(out, e)
		}
	}
	return out
}

func (m *Model) updateLogViewportContent() {
	if !m.logReady {
		return
	}
	atBottom := m.logViewport.AtBottom()
	m.logViewport.SetContent(m.renderLogLines(m.logViewport.Width))
	if atBottom {
		m.logViewport.GotoBottom()
	}
}

func (m Model) renderLogLines(width int) string {
	entries := m.visibleLogEntries()
	if len(entries) == 0 {
		return m.styles.HelpStyle().Render("No log entries")
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = ansi.Truncate(m.renderLogEntry(e), width, "…")
	}
	return strings.Join(lines, "\n")
}

// renderLogEntry formats a single log entry for display.
func (m Model) renderLogEntry(e logging.LogEntry) string {
	ts := m.styles.LogTimestampStyle().Render(e.Time.Format("15:04:05"))

	var level string
	switch e.Level {
	case logging.LevelDebug:
		level = m.styles.LogDebugStyle().Render("DEBUG")
	case logging.LevelWarn:
		level = m.styles.LogWarnStyle().Render("WARN ")
	case logging.LevelError:
		level = m.styles.LogErrorStyle().Render("ERROR")
	default:
		level = m.styles.LogInfoStyle().Render(fmt.Sprintf("%-5s", e.Level))
	}
	scope := m.styles.LogScopeStyle().Render("[" + e.Scope + "]")

	line := fmt.Sprintf("%s %s %s %s", ts, level, scope, e.Message)
	if len(e.Fields) == 0 {
		return line
	}
	keys := slices.Sorted(maps.Keys(e.Fields))
	fields := make([]string, len(keys))
	for i, k := range keys {
		fields[i] = fmt.Sprintf("%s=%v", k, e.Fields[k])
	}
	return line + " " + m.styles.HelpStyle().Render(strings.Join(fields, " "))
}

func (m Model) renderLogPanel(layout Layout) string {
	sep := m.styles.SeparatorStyle().Render(strings.Repeat("─", max(layout.Separator.Width, 0)))
	if !m.logReady {
		return sep + "\n" + m.renderLogLines(layout.Logs.Width)
	}
	return sep + "\n" + m.logViewport.View()
}
