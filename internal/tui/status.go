package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// StatusLevel is the severity of the status bar message.
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusSuccess
	StatusError
	StatusLoading
)

func (l StatusLevel) String() string {
	switch l {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusLoading:
		return "loading"
	default:
		return "info"
	}
}

// statusTTL is how long success and info messages stay visible.
const statusTTL = 4 * time.Second

// clearStatusMsg clears the status bar if it still shows message seq.
type clearStatusMsg struct{ seq int }

func (m *Model) setStatus(level StatusLevel, message string) tea.Cmd {
	m.statusLevel = level
	m.statusMessage = message
	m.statusSeq++
	if level == StatusError || level == StatusLoading {
		return nil
	}
	seq := m.statusSeq
	return tea.Tick(statusTTL, func(time.Time) tea.Msg { return clearStatusMsg{seq: seq} })
}

func (m *Model) setError(message string, err error) {
	m.statusLevel = StatusError
	m.statusMessage = message
	m.err = err
	m.statusSeq++
}

func (m *Model) clearStatus() {
	m.statusLevel = StatusInfo
	m.statusMessage = ""
	m.err = nil
	m.statusSeq++
}
