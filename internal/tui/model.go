package tui

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"salesdesk/internal/config"
	"salesdesk/internal/logging"
	"salesdesk/internal/records"
)

// Options wires the model to its collaborators.
type Options struct {
	Config config.Config
	Source Source
	// Logs hands out scoped loggers. Defaults to discarding output.
	Logs logging.LoggerProvider
	// Entries feeds the log panel. Optional.
	Entries <-chan logging.LogEntry
	// SetLevel applies log_level after a config reload. Optional.
	SetLevel func(level string) error
	// Clipboard copies text. Defaults to the system clipboard.
	Clipboard func(text string) error
}

type nopProvider struct{}

func (nopProvider) For(string) *logging.ScopedLogger { return logging.NopLogger() }

// Model is the console: a header, one tab per collection, an optional log
// panel and a status bar.
type Model struct {
	width  int
	height int

	cfg    config.Config
	styles *Styles
	env    *env
	logger *logging.ScopedLogger

	tabs         []tab
	active       int
	reservations *pane[records.Reservation]
	payments     *pane[records.Payment]

	keys     keyMap
	help     help.Model
	showHelp bool
	spinner  spinner.Model

	statusLevel   StatusLevel
	statusMessage string
	statusSeq     int
	err           error

	feedKnown     bool
	feedConnected bool

	logPanelOpen bool
	logEntries   []logging.LogEntry
	logViewport  viewport.Model
	logReady     bool
	entries      <-chan logging.LogEntry

	dialog *historyDialog

	setLevel  func(string) error
	clipboard func(string) error

	lastCtrlCTime time.Time
}

// NewModel creates the console model. Data loads start in Init.
func NewModel(opts Options) Model {
	logs := opts.Logs
	if logs == nil {
		logs = nopProvider{}
	}
	cb := opts.Clipboard
	if cb == nil {
		cb = clipboard.WriteAll
	}
	timeout := opts.Config.Backend.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	styles := NewStyles(opts.Config.Theme)
	e := &env{
		cfg:     opts.Config,
		source:  opts.Source,
		styles:  styles,
		md:      newMarkdown(styles.MarkdownStyle()),
		logs:    logs,
		timeout: timeout,
	}

	reservations := e.reservationsPane()
	payments := e.paymentsPane()
	byName := map[string]tab{}
	for _, t := range []tab{reservations, e.contractsPane(), payments, e.creditPane()} {
		byName[t.Name()] = t
	}

	tabs := make([]tab, 0, len(config.Collections))
	for _, name := range config.Collections {
		if t, ok := byName[name]; ok {
			t.SetStyles(styles.Table())
			tabs = append(tabs, t)
		}
	}
	tabs[0].Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styles.AccentStyle()

	h := help.New()
	h.ShortSeparator = " • "

	return Model{
		cfg:          opts.Config,
		styles:       styles,
		env:          e,
		logger:       logs.For("tui"),
		tabs:         tabs,
		reservations: reservations,
		payments:     payments,
		keys:         defaultKeyMap(),
		help:         h,
		spinner:      sp,
		entries:      opts.Entries,
		setLevel:     opts.SetLevel,
		clipboard:    cb,
	}
}

// Init loads every collection and starts the log and spinner loops.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	for _, t := range m.tabs {
		cmds = append(cmds, t.Init())
	}
	if m.entries != nil {
		cmds = append(cmds, consumeLogEntries(m.entries))
	}
	return tea.Batch(cmds...)
}

// ActiveTab names the collection on screen.
func (m Model) ActiveTab() string {
	return m.tabs[m.active].Name()
}

// Total returns the row count last reported for a collection, 0 when the
// collection is unknown or not loaded yet.
func (m Model) Total(collection string) int {
	if _, t := m.tabByName(collection); t != nil {
		return t.Total()
	}
	return 0
}

func (m Model) activeTab() tab {
	return m.tabs[m.active]
}

func (m Model) tabByName(name string) (int, tab) {
	for i, t := range m.tabs {
		if t.Name() == name {
			return i, t
		}
	}
	return -1, nil
}

// busy reports whether anything on screen is waiting on the backend.
func (m Model) busy() bool {
	if m.statusLevel == StatusLoading || (m.dialog != nil && m.dialog.loading) {
		return true
	}
	for _, t := range m.tabs {
		if t.Loading() {
			return true
		}
	}
	return false
}

// resize pushes the current layout to every tab and panel.
func (m *Model) resize() {
	layout := ComputeLayout(m.width, m.height, m.logPanelOpen)
	for _, t := range m.tabs {
		t.SetSize(layout.Content.Width, layout.Content.Height)
		t.SetOrigin(layout.Content.X, layout.Content.Y)
	}
	m.help.Width = m.width

	if m.logPanelOpen {
		if !m.logReady {
			m.logViewport = viewport.New(layout.Logs.Width, layout.Logs.Height)
			m.logReady = true
		} else {
			m.logViewport.Width = layout.Logs.Width
			m.logViewport.Height = layout.Logs.Height
		}
		m.updateLogViewportContent()
	}
	if m.dialog != nil {
		m.dialog.resize(m.width, m.height, m.cfg.Table.DialogBreakpoint)
	}
}
