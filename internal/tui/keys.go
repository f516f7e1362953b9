package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"

	"salesdesk/internal/datatable"
)

// doubleCtrlCWindow is the maximum time between two ctrl+c presses to trigger quit.
const doubleCtrlCWindow = 500 * time.Millisecond

// keyMap holds the application bindings. They never reuse a table key.
type keyMap struct {
	NextTab key.Binding
	PrevTab key.Binding
	Jump    key.Binding
	Refresh key.Binding
	Logs    key.Binding
	Copy    key.Binding
	History key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Jump:    key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "jump to tab")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Logs:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logs")),
		Copy:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy id")),
		History: key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "payment history")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "quit")),
	}
}

// helpKeys combines the app bindings with the active table's for the help
// view.
type helpKeys struct {
	app   keyMap
	table datatable.KeyMap
}

func (h helpKeys) ShortHelp() []key.Binding {
	return append([]key.Binding{h.app.NextTab, h.app.Refresh, h.app.Help}, h.table.ShortHelp()...)
}

func (h helpKeys) FullHelp() [][]key.Binding {
	app := []key.Binding{h.app.NextTab, h.app.PrevTab, h.app.Jump, h.app.Refresh, h.app.Copy, h.app.History, h.app.Logs, h.app.Help, h.app.Quit}
	return append([][]key.Binding{app}, h.table.FullHelp()...)
}
