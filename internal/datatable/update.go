// pattern: Imperative Shell

package datatable

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Init implements tea.Model.
func (m Model[T]) Init() tea.Cmd {
	return nil
}

// Update handles messages addressed to the table.
func (m Model[T]) Update(msg tea.Msg) (Model[T], tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		vp, crossed := m.vp.Observe(msg.Width, msg.Height)
		m.vp = vp
		if !m.sized {
			m.width, m.height = msg.Width, msg.Height
		}
		if crossed {
			return m, m.resized()
		}
		m.ensureCursorVisible()
		return m, nil

	case settleMsg:
		if msg.tableID == m.id {
			m.exp = m.exp.Settle()
			m.ensureCursorVisible()
		}
		return m, nil

	case PageSettledMsg:
		if msg.TableID == m.id {
			m.pager.settle()
			if msg.Err != nil {
				m.logger.Warn("pagination handler failed", "page", msg.PageIndex, "size", msg.PageSize, "error", msg.Err)
			}
		}
		return m, nil

	case spinner.TickMsg:
		if !m.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model[T]) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.search.Focused() {
		return m.handleSearchKey(msg)
	}
	if m.picker != nil {
		return m.handlePickerKey(msg)
	}
	if m.menu != nil {
		return m.handleMenuKey(msg)
	}

	k := m.keys
	switch {
	case key.Matches(msg, k.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.ensureCursorVisible()
	case key.Matches(msg, k.Down):
		if m.cursor < len(m.rm.Rows)-1 {
			m.cursor++
		}
		m.ensureCursorVisible()
	case key.Matches(msg, k.Left):
		if m.colFocus > 0 {
			m.colFocus--
		}
	case key.Matches(msg, k.Right):
		if m.colFocus < len(m.rm.Columns)-1 {
			m.colFocus++
		}
	case key.Matches(msg, k.Toggle):
		if rk, ok := m.CursorKey(); ok {
			return m.ClickRow(rk)
		}
	case key.Matches(msg, k.Select):
		if rk, ok := m.CursorKey(); ok && m.cfg.Selectable {
			m.Dispatch(ToggleSelection{Key: rk})
		}
	case key.Matches(msg, k.SelectAll):
		if m.cfg.Selectable {
			m.ToggleSelectAll()
		}
	case key.Matches(msg, k.Search):
		return m.search.Focus()
	case key.Matches(msg, k.Facets):
		if len(m.cfg.FacetedFilters) > 0 {
			m.picker = &facetPicker{}
		}
	case key.Matches(msg, k.Clear):
		return m.ClearFilters()
	case key.Matches(msg, k.Sort), key.Matches(msg, k.SortMulti):
		if c, ok := m.focusedColumn(); ok && c.Sortable {
			m.Dispatch(ToggleSort{Column: c.Key, Multi: key.Matches(msg, k.SortMulti)})
		}
	case key.Matches(msg, k.Pin):
		if c, ok := m.focusedColumn(); ok && !c.Interactive {
			m.Dispatch(PinColumn{Column: c.Key, Side: nextPin(pinSide(c, m.state))})
		}
	case key.Matches(msg, k.Hide):
		if c, ok := m.focusedColumn(); ok && !c.Interactive && len(m.rm.Columns) > 1 {
			m.Dispatch(SetVisibility{Column: c.Key, Visible: false})
		}
	case key.Matches(msg, k.ShowAll):
		for _, c := range m.cols {
			m.state = Reduce(m.state, SetVisibility{Column: c.Key, Visible: true})
		}
		m.recompute()
	case key.Matches(msg, k.ScrollLeft):
		if m.scroll > 0 {
			m.scroll--
		}
	case key.Matches(msg, k.ScrollRight):
		if m.scroll < m.unpinnedCount()-1 {
			m.scroll++
		}
	case key.Matches(msg, k.NextPage):
		return m.NextPage()
	case key.Matches(msg, k.PrevPage):
		return m.PrevPage()
	case key.Matches(msg, k.FirstPage):
		return m.GoToPage(0)
	case key.Matches(msg, k.LastPage):
		return m.GoToPage(m.pager.pageCount(m.rm.PageCount) - 1)
	case key.Matches(msg, k.PageSize):
		return m.SetPageSize(nextPageSize(m.pager.state.PageSize))
	case key.Matches(msg, k.Actions):
		if rk, ok := m.CursorKey(); ok && len(m.cfg.RowActions) > 0 {
			m.menu = &actionMenu{rowKey: rk}
		}
	case key.Matches(msg, k.Close):
		return m.closeTop()
	}
	return nil
}

func (m *Model[T]) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.search.Blur()
		return nil
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		return tea.Batch(cmd, m.applySearch(after))
	}
	return cmd
}

func (m *Model[T]) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	p := m.picker
	opts := m.cfg.FacetedFilters[p.facet].Options
	switch {
	case key.Matches(msg, m.keys.Close), key.Matches(msg, m.keys.Facets):
		m.picker = nil
	case key.Matches(msg, m.keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if p.cursor < len(opts)-1 {
			p.cursor++
		}
	case key.Matches(msg, m.keys.Left):
		if p.facet > 0 {
			p.facet--
			p.cursor = 0
		}
	case key.Matches(msg, m.keys.Right):
		if p.facet < len(m.cfg.FacetedFilters)-1 {
			p.facet++
			p.cursor = 0
		}
	case key.Matches(msg, m.keys.Toggle), key.Matches(msg, m.keys.Select):
		if p.cursor < len(opts) {
			return m.ToggleFacet(m.cfg.FacetedFilters[p.facet].ColumnKey, opts[p.cursor].Value)
		}
	}
	return nil
}

func (m *Model[T]) handleMenuKey(msg tea.KeyMsg) tea.Cmd {
	menu := m.menu
	switch {
	case key.Matches(msg, m.keys.Close), key.Matches(msg, m.keys.Actions):
		m.menu = nil
	case key.Matches(msg, m.keys.Up):
		if menu.cursor > 0 {
			menu.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if menu.cursor < len(m.cfg.RowActions)-1 {
			menu.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		m.menu = nil
		row, ok := m.Row(menu.rowKey)
		if !ok || menu.cursor >= len(m.cfg.RowActions) {
			return nil
		}
		action := m.cfg.RowActions[menu.cursor]
		m.logger.Debug("row action", "action", action.Label, "row", menu.rowKey)
		if action.Run != nil {
			return action.Run(row)
		}
	}
	return nil
}

// handleMouse maps a left click to the element under it. Only a click on
// a row's own cells is a row trigger; clicks on interactive cells, on
// expanded content, or while an overlay is up never toggle expansion.
func (m *Model[T]) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionPress {
		return nil
	}
	if m.OverlayOpen() {
		return nil
	}
	f := m.frame()
	x, y := msg.X-m.originX, msg.Y-m.originY
	if x < 0 || x >= f.tableWidth || y < 0 {
		return nil
	}

	if y == headerLine {
		sp, ok := f.spanAt(x)
		if !ok {
			return nil
		}
		if sp.key == selectColumnKey {
			m.ToggleSelectAll()
			return nil
		}
		if c, found := m.column(sp.key); found && c.Sortable {
			m.Dispatch(ToggleSort{Column: c.Key})
		}
		return nil
	}

	if y < f.bodyTop || y >= f.bodyTop+f.bodyHeight {
		return nil
	}
	li := y - f.bodyTop + m.offset
	if li < 0 || li >= len(f.lines) || f.lines[li].kind != lineRow {
		return nil
	}
	rowIdx := f.lines[li].row
	m.cursor = rowIdx
	rk := m.rm.Keys[rowIdx]

	if sp, ok := f.spanAt(x); ok && sp.interactive {
		switch sp.key {
		case selectColumnKey:
			m.Dispatch(ToggleSelection{Key: rk})
		case actionsColumnKey:
			m.menu = &actionMenu{rowKey: rk}
		}
		return nil
	}
	return m.ClickRow(rk)
}

// ClickRow applies a recognized row trigger. Keys of rows no longer in the
// data are ignored.
func (m *Model[T]) ClickRow(key string) tea.Cmd {
	if _, ok := m.index[key]; !ok {
		return nil
	}
	if i := slices.Index(m.rm.Keys, key); i >= 0 {
		m.cursor = i
	}
	exp, effects := m.exp.Click(key, m.vp.IsMobile())
	m.exp = exp
	m.logger.Debug("row clicked", "row", key, "state", exp.State().String())
	m.ensureCursorVisible()
	return m.runEffects(effects)
}

// CloseDrawer dismisses the mobile drawer.
func (m *Model[T]) CloseDrawer() {
	m.exp = m.exp.CloseDrawer()
	m.ensureCursorVisible()
}

// CloseLateral dismisses the lateral panel.
func (m *Model[T]) CloseLateral() tea.Cmd {
	exp, effects := m.exp.CloseLateral()
	m.exp = exp
	return m.runEffects(effects)
}

// closeTop closes the innermost open presentation.
func (m *Model[T]) closeTop() tea.Cmd {
	if _, open := m.exp.Drawer(); open {
		m.CloseDrawer()
		return nil
	}
	if _, open := m.exp.Lateral(); open {
		return m.CloseLateral()
	}
	return nil
}

// applySearch routes a search query to the host or to the local filter.
func (m *Model[T]) applySearch(q string) tea.Cmd {
	if m.cfg.OnGlobalFilterChange != nil {
		m.cfg.ExternalFilterValue = q
		return m.cfg.OnGlobalFilterChange(q)
	}
	m.Dispatch(SetGlobalFilter{Query: q})
	return nil
}

// SetGlobalFilter sets the search query as if typed.
func (m *Model[T]) SetGlobalFilter(q string) tea.Cmd {
	m.search.SetValue(q)
	return m.applySearch(q)
}

// ToggleFacet flips one value of the faceted filter on a column.
func (m *Model[T]) ToggleFacet(column, value string) tea.Cmd {
	for i, f := range m.cfg.FacetedFilters {
		if f.ColumnKey != column {
			continue
		}
		m.facets[i] = m.facets[i].toggle(value)
		values := m.facets[i].values(f.Options)
		if f.External() {
			return f.OnFilterChange(values)
		}
		m.Dispatch(SetColumnFilter{Column: f.ColumnKey, Value: commitFilter(f.Commit, values)})
		return nil
	}
	return nil
}

// ClearFilters resets search, column filters and facets and notifies
// external handlers. Pagination is left where it is.
func (m *Model[T]) ClearFilters() tea.Cmd {
	var cmds []tea.Cmd
	m.search.SetValue("")
	m.state = Reduce(m.state, ResetFilters{})
	if m.cfg.OnGlobalFilterChange != nil {
		m.cfg.ExternalFilterValue = ""
		cmds = append(cmds, m.cfg.OnGlobalFilterChange(""))
	}
	for i, f := range m.cfg.FacetedFilters {
		m.facets[i] = facetSelection{}
		if f.External() {
			cmds = append(cmds, f.OnFilterChange([]string{}))
		}
	}
	m.recompute()
	return tea.Batch(cmds...)
}

// ToggleSelectAll selects every filtered row, or clears them when all are
// already selected.
func (m *Model[T]) ToggleSelectAll() {
	keys := m.rm.FilteredKeys(m.rowKey)
	m.Dispatch(SetSelection{Keys: keys, Selected: !m.rm.AllSelected(m.state, m.rowKey)})
}

// NextPage moves forward one page.
func (m *Model[T]) NextPage() tea.Cmd {
	return m.GoToPage(m.pager.state.PageIndex + 1)
}

// PrevPage moves back one page.
func (m *Model[T]) PrevPage() tea.Cmd {
	return m.GoToPage(m.pager.state.PageIndex - 1)
}

// GoToPage jumps to a page. Out-of-range targets are ignored.
func (m *Model[T]) GoToPage(index int) tea.Cmd {
	return m.movePage(index, m.pager.state.PageSize)
}

// SetPageSize changes the page size and returns to the first page.
func (m *Model[T]) SetPageSize(size int) tea.Cmd {
	return m.movePage(0, size)
}

func (m *Model[T]) movePage(index, size int) tea.Cmd {
	cmd := m.pager.move(index, size, m.pager.pageCount(m.rm.PageCount))
	m.recompute()
	if cmd == nil {
		return nil
	}
	m.logger.Debug("page change", "page", index, "size", size)
	return tea.Batch(cmd, m.spin.Tick)
}

func (m Model[T]) column(key string) (Column[T], bool) {
	for _, c := range m.cols {
		if c.Key == key {
			return c, true
		}
	}
	return Column[T]{}, false
}

func (m Model[T]) focusedColumn() (Column[T], bool) {
	if m.colFocus < 0 || m.colFocus >= len(m.rm.Columns) {
		return Column[T]{}, false
	}
	return m.rm.Columns[m.colFocus], true
}

func (m Model[T]) unpinnedCount() int {
	n := 0
	for _, c := range m.rm.Columns {
		if _, pinned := m.rm.Pins[c.Key]; !pinned {
			n++
		}
	}
	return n
}

func nextPin(p Pin) Pin {
	switch p {
	case PinNone:
		return PinLeft
	case PinLeft:
		return PinRight
	default:
		return PinNone
	}
}

func nextPageSize(cur int) int {
	for _, s := range PageSizes {
		if s > cur {
			return s
		}
	}
	return PageSizes[0]
}
