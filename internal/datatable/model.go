// pattern: Imperative Shell

package datatable

import (
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"salesdesk/internal/logging"
)

// Built-in column keys.
const (
	selectColumnKey  = "_select"
	actionsColumnKey = "_actions"
)

// migrationSettleDelay is how long the drawer lingers after the terminal
// widens past the breakpoint.
const migrationSettleDelay = 150 * time.Millisecond

var tableSeq atomic.Int64

// settleMsg completes a drawer migration for one table.
type settleMsg struct{ tableID string }

// facetPicker is the open faceted-filter overlay.
type facetPicker struct {
	facet  int
	cursor int
}

// actionMenu is the open row action overlay.
type actionMenu struct {
	rowKey string
	cursor int
}

// Model is an adaptive table over rows of type T.
type Model[T any] struct {
	id     string
	cfg    Config[T]
	cols   []Column[T]
	rowKey func(T) string

	rows  []T
	index map[string]int

	state  ViewState
	pager  pager
	exp    Expansion
	vp     Viewport
	facets []facetSelection
	rm     RowModel[T]

	search   textinput.Model
	spin     spinner.Model
	keys     KeyMap
	styles   Styles
	logger   *logging.ScopedLogger
	focused  bool
	picker   *facetPicker
	menu     *actionMenu
	cursor   int
	colFocus int
	scroll   int
	offset   int

	width, height int
	originX       int
	originY       int
	sized         bool
}

// New builds a table from its configuration.
func New[T any](cfg Config[T]) Model[T] {
	id := cfg.ID
	if id == "" {
		id = fmt.Sprintf("table-%d", tableSeq.Add(1))
	}

	rowKey := cfg.RowKey
	if rowKey == nil {
		rowKey = func(row T) string { return fmt.Sprintf("%v", row) }
	}

	styles := DefaultStyles()
	if cfg.Styles != nil {
		styles = *cfg.Styles
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	search := textinput.New()
	search.Placeholder = "Search…"
	search.Prompt = "/ "
	search.CharLimit = 120
	if cfg.OnGlobalFilterChange != nil {
		search.SetValue(cfg.ExternalFilterValue)
	}

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot

	facets := make([]facetSelection, len(cfg.FacetedFilters))
	for i, f := range cfg.FacetedFilters {
		facets[i] = newFacetSelection(f.Value)
	}

	m := Model[T]{
		id:     id,
		cfg:    cfg,
		cols:   buildColumns(cfg),
		rowKey: rowKey,
		state: ViewState{
			ColumnFilters:    map[string]FilterValue{},
			ColumnVisibility: map[string]bool{},
			Selection:        map[string]bool{},
		},
		pager:   newPager(id, cfg.PageSize, cfg.Server),
		exp:     NewExpansion(cfg.ExpansionMode, cfg.expansionEnabled()),
		vp:      NewViewport(cfg.Breakpoint),
		facets:  facets,
		search:  search,
		spin:    spin,
		keys:    DefaultKeyMap(),
		styles:  styles,
		logger:  logger.With("table", id),
		focused: true,
	}
	for i, f := range cfg.FacetedFilters {
		if !f.External() {
			m.state = Reduce(m.state, SetColumnFilter{Column: f.ColumnKey, Value: commitFilter(f.Commit, m.facets[i].values(f.Options))})
		}
	}
	m.setRows(cfg.Data)
	return m
}

// buildColumns adds the built-in selection and action columns.
func buildColumns[T any](cfg Config[T]) []Column[T] {
	cols := make([]Column[T], 0, len(cfg.Columns)+2)
	if cfg.Selectable {
		cols = append(cols, Column[T]{Key: selectColumnKey, Header: "[ ]", Width: 3, Pin: PinLeft, Interactive: true})
	}
	cols = append(cols, cfg.Columns...)
	if len(cfg.RowActions) > 0 {
		cols = append(cols, Column[T]{Key: actionsColumnKey, Header: " ", Width: 1, Pin: PinRight, Interactive: true})
	}
	return cols
}

// ID returns the instance identifier used in routed messages.
func (m Model[T]) ID() string { return m.id }

// KeyMap returns the bindings, for help rendering.
func (m Model[T]) KeyMap() KeyMap { return m.keys }

// State returns a copy of the view state.
func (m Model[T]) State() ViewState { return m.state.clone() }

// Expansion returns the expansion state machine.
func (m Model[T]) Expansion() Expansion { return m.exp }

// Pagination returns the current page.
func (m Model[T]) Pagination() PaginationState { return m.pager.state }

// RowModel returns the result of the last render pass.
func (m Model[T]) RowModel() RowModel[T] { return m.rm }

// IsMobile reports whether the table renders in its narrow layout.
func (m Model[T]) IsMobile() bool { return m.vp.IsMobile() }

// Loading reports the effective loading flag.
func (m Model[T]) Loading() bool {
	if m.cfg.IsLoading != nil {
		return *m.cfg.IsLoading
	}
	return m.pager.loading()
}

// Searching reports whether the search box has focus.
func (m Model[T]) Searching() bool { return m.search.Focused() }

// OverlayOpen reports whether a facet picker or action menu is up.
func (m Model[T]) OverlayOpen() bool { return m.picker != nil || m.menu != nil }

// FacetValues returns the selected values of the facet on a column.
func (m Model[T]) FacetValues(column string) []string {
	for i, f := range m.cfg.FacetedFilters {
		if f.ColumnKey == column {
			return m.facets[i].values(f.Options)
		}
	}
	return nil
}

// Handle returns a read-only snapshot for callbacks.
func (m Model[T]) Handle() Handle[T] {
	return handle[T]{rm: m.rm, state: m.state, page: m.pager.state, mobile: m.IsMobile(), loading: m.Loading()}
}

// Row looks a row up by identity key.
func (m Model[T]) Row(key string) (T, bool) {
	i, ok := m.index[key]
	if !ok {
		var zero T
		return zero, false
	}
	return m.rows[i], true
}

// CursorKey returns the key of the row under the cursor.
func (m Model[T]) CursorKey() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rm.Keys) {
		return "", false
	}
	return m.rm.Keys[m.cursor], true
}

// LateralRow returns the row shown in the lateral panel, re-located by key
// in the current data.
func (m Model[T]) LateralRow() (T, bool) {
	key, open := m.exp.Lateral()
	if !open {
		var zero T
		return zero, false
	}
	return m.Row(key)
}

// Focus gives the table keyboard focus.
func (m *Model[T]) Focus() { m.focused = true }

// Blur removes keyboard focus.
func (m *Model[T]) Blur() {
	m.focused = false
	m.search.Blur()
}

// Focused reports keyboard focus.
func (m Model[T]) Focused() bool { return m.focused }

// SetSize sets the area the table renders into. Without it the table
// uses the full terminal size.
func (m *Model[T]) SetSize(width, height int) {
	m.width, m.height = width, height
	m.sized = true
	m.ensureCursorVisible()
}

// SetOrigin sets the table's top-left screen position for mouse hit tests.
func (m *Model[T]) SetOrigin(x, y int) {
	m.originX, m.originY = x, y
}

// SetStyles replaces the styles, e.g. after a theme change.
func (m *Model[T]) SetStyles(s Styles) { m.styles = s }

// SetBreakpoint changes the mobile threshold. The returned command carries
// any effects of the resulting layout change.
func (m *Model[T]) SetBreakpoint(bp int) tea.Cmd {
	vp, crossed := m.vp.WithBreakpoint(bp)
	m.vp = vp
	if !crossed {
		return nil
	}
	return m.resized()
}

// SetLoading overrides the loading flag; nil returns control to the table.
func (m *Model[T]) SetLoading(loading *bool) { m.cfg.IsLoading = loading }

// SetServer applies an external pagination update. It is authoritative
// for the page index, size, count and total.
func (m *Model[T]) SetServer(s ServerPagination) {
	if s.OnPaginationChange == nil && m.pager.server != nil {
		s.OnPaginationChange = m.pager.server.OnPaginationChange
	}
	m.pager.applyServer(s)
	m.recompute()
}

// SetExternalFilterValue updates the search box of a server-driven search
// without firing the handler.
func (m *Model[T]) SetExternalFilterValue(v string) {
	m.cfg.ExternalFilterValue = v
	if m.cfg.OnGlobalFilterChange != nil {
		m.search.SetValue(v)
	}
}

// SetFacetValue replaces the selection of an externally driven facet.
func (m *Model[T]) SetFacetValue(column string, values []string) {
	for i, f := range m.cfg.FacetedFilters {
		if f.ColumnKey == column && f.External() {
			m.facets[i] = newFacetSelection(values)
		}
	}
}

// SetRows replaces the data. Expansion state is re-located by key; the
// returned command carries effects such as a lateral panel closing because
// its row disappeared.
func (m *Model[T]) SetRows(rows []T) tea.Cmd {
	m.setRows(rows)
	exp, effects := m.exp.Reconcile(func(k string) bool {
		_, ok := m.index[k]
		return ok
	})
	m.exp = exp
	return m.runEffects(effects)
}

func (m *Model[T]) setRows(rows []T) {
	m.rows = rows
	m.index = make(map[string]int, len(rows))
	for i, r := range rows {
		m.index[m.rowKey(r)] = i
	}
	m.recompute()
}

// Reload re-requests the current page from the server handler.
func (m *Model[T]) Reload() tea.Cmd {
	return m.pager.notify()
}

// Dispatch applies a view state action.
func (m *Model[T]) Dispatch(a Action) {
	m.state = Reduce(m.state, a)
	m.recompute()
}

// recompute runs the render engine and keeps cursor and page in range.
func (m *Model[T]) recompute() {
	m.rm = compute(computeInput[T]{
		columns:      m.cols,
		rows:         m.rows,
		rowKey:       m.rowKey,
		state:        m.state,
		page:         m.pager.state,
		serverPaged:  m.pager.serverDriven(),
		globalColumn: m.cfg.GlobalFilterColumn,
	})
	if !m.pager.serverDriven() && m.pager.state.PageIndex >= m.rm.PageCount {
		m.pager.clampLocal(m.rm.PageCount)
		m.rm = compute(computeInput[T]{
			columns:      m.cols,
			rows:         m.rows,
			rowKey:       m.rowKey,
			state:        m.state,
			page:         m.pager.state,
			globalColumn: m.cfg.GlobalFilterColumn,
		})
	}
	m.cursor = min(max(m.cursor, 0), max(len(m.rm.Rows)-1, 0))
	m.colFocus = min(max(m.colFocus, 0), max(len(m.rm.Columns)-1, 0))
	m.ensureCursorVisible()
}

// runEffects turns state machine effects into host callbacks and timers.
func (m *Model[T]) runEffects(effects []Effect) tea.Cmd {
	var cmds []tea.Cmd
	for _, e := range effects {
		switch e := e.(type) {
		case LateralToggled:
			m.logger.Debug("lateral toggled", "open", e.Open, "row", e.RowKey)
			if m.cfg.OnLateralToggle == nil {
				continue
			}
			var row *T
			if e.Open {
				if r, ok := m.Row(e.RowKey); ok {
					row = &r
				}
			}
			cmds = append(cmds, m.cfg.OnLateralToggle(e.Open, row))
		case SettleRequested:
			id := m.id
			cmds = append(cmds, tea.Tick(migrationSettleDelay, func(time.Time) tea.Msg {
				return settleMsg{tableID: id}
			}))
		}
	}
	return tea.Batch(cmds...)
}

// resized migrates expansion after the mobile classification flipped.
func (m *Model[T]) resized() tea.Cmd {
	order := slices.Clone(m.rm.Keys)
	exp, effects := m.exp.Resize(m.vp.IsMobile(), order)
	m.logger.Debug("viewport crossed breakpoint", "mobile", m.vp.IsMobile(), "state", exp.State().String())
	m.exp = exp
	m.ensureCursorVisible()
	return m.runEffects(effects)
}
