// pattern: Imperative Shell

package datatable

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// View renders the table, its toolbar, footer and whichever detail
// presentation is active.
func (m Model[T]) View() string {
	f := m.frame()

	parts := []string{
		m.renderToolbar(f.tableWidth),
		m.renderHeader(f),
	}
	if m.OverlayOpen() {
		parts = append(parts, m.renderOverlay(f))
	} else {
		parts = append(parts, m.renderBody(f))
	}
	parts = append(parts, m.renderFooter(f.tableWidth))
	table := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if f.panelWidth > 0 {
		table = lipgloss.JoinHorizontal(lipgloss.Top, table, m.renderLateralPanel(f))
	}
	if f.bottomHeight > 0 {
		table = lipgloss.JoinVertical(lipgloss.Left, table, m.renderBottom(f))
	}
	return table
}

func (m Model[T]) renderToolbar(width int) string {
	parts := []string{m.search.View()}
	for i, fc := range m.cfg.FacetedFilters {
		n := len(m.facets[i])
		label := fc.Title
		if n > 0 {
			parts = append(parts, m.styles.ChipActive.Render(fmt.Sprintf("[%s: %d]", label, n)))
		} else {
			parts = append(parts, m.styles.Chip.Render("["+label+"]"))
		}
	}
	if m.cfg.ToolbarActions != nil {
		if a := m.cfg.ToolbarActions(m.Handle()); a != "" {
			parts = append(parts, a)
		}
	}
	return fitLine(strings.Join(parts, "  "), width)
}

func (m Model[T]) renderHeader(f frame) string {
	cells := make([]string, 0, len(f.spans))
	for _, sp := range f.spans {
		c, _ := m.column(sp.key)
		text := c.Header
		switch sp.key {
		case selectColumnKey:
			text = "[ ]"
			if m.rm.AllSelected(m.state, m.rowKey) {
				text = "[x]"
			}
		default:
			if s, ok := m.state.SortFor(sp.key); ok {
				if s.Desc {
					text += " ▼"
				} else {
					text += " ▲"
				}
			}
		}
		style := m.styles.Header
		if m.focused && m.colFocusKey() == sp.key {
			style = m.styles.HeaderActive
		}
		cells = append(cells, style.Render(ansi.Truncate(text, sp.width, "…")))
	}
	return assemble(f.tableWidth, f.spans, cells)
}

func (m Model[T]) renderBody(f frame) string {
	end := min(m.offset+f.bodyHeight, len(f.lines))
	out := make([]string, 0, f.bodyHeight)
	for _, l := range f.lines[m.offset:end] {
		switch l.kind {
		case lineEmpty:
			out = append(out, fitLine(m.styles.Empty.Render("  "+l.text), f.tableWidth))
		case lineDetail:
			out = append(out, fitLine(m.styles.Detail.Render(l.text), f.tableWidth))
		default:
			out = append(out, m.renderRow(f, l.row))
		}
	}
	for len(out) < f.bodyHeight {
		out = append(out, "")
	}
	return strings.Join(out, "\n")
}

func (m Model[T]) renderRow(f frame, idx int) string {
	row := m.rm.Rows[idx]
	rk := m.rm.Keys[idx]
	selected := m.state.IsSelected(rk)
	cells := make([]string, 0, len(f.spans))
	for _, sp := range f.spans {
		var text string
		switch sp.key {
		case selectColumnKey:
			text = "[ ]"
			if selected {
				text = "[x]"
			}
		case actionsColumnKey:
			text = "⋯"
		default:
			c, _ := m.column(sp.key)
			text = c.text(row)
		}
		style := m.styles.Cell
		switch {
		case selected:
			style = m.styles.Selected
		case sp.pinned:
			style = m.styles.Pinned
		}
		cells = append(cells, style.Render(ansi.Truncate(text, sp.width, "…")))
	}
	line := assemble(f.tableWidth, f.spans, cells)

	sym := " "
	switch {
	case m.exp.IsExpanded(rk):
		sym = "▾"
	case m.isLateral(rk):
		sym = "▸"
	}
	marker := " " + sym
	if idx == m.cursor && m.focused {
		marker = m.styles.Cursor.Render("›" + sym)
	}
	return marker + ansi.Cut(line, cursorWidth, f.tableWidth)
}

func (m Model[T]) isLateral(key string) bool {
	k, open := m.exp.Lateral()
	return open && k == key
}

func (m Model[T]) renderFooter(width int) string {
	pageCount := m.pager.pageCount(m.rm.PageCount)
	parts := []string{fmt.Sprintf("Page %d of %d", m.pager.state.PageIndex+1, pageCount)}
	parts = append(parts, fmt.Sprintf("%d rows", m.rm.Total))
	if n := len(m.state.Selection); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	parts = append(parts, fmt.Sprintf("%d / page", m.pager.state.PageSize))
	text := strings.Join(parts, " · ")
	if m.Loading() {
		text = m.spin.View() + " " + text
	}
	return fitLine(m.styles.Footer.Render(text), width)
}

func (m Model[T]) renderOverlay(f frame) string {
	var lines []string
	switch {
	case m.picker != nil:
		fc := m.cfg.FacetedFilters[m.picker.facet]
		counts := facetCounts(m.rows, m.columnOrZero(fc.ColumnKey))
		lines = append(lines, m.styles.PanelTitle.Render(fc.Title))
		for i, o := range fc.Options {
			check := "[ ]"
			if m.facets[m.picker.facet][o.Value] {
				check = "[x]"
			}
			label := o.Label
			if label == "" {
				label = o.Value
			}
			if o.Icon != "" {
				label = o.Icon + " " + label
			}
			line := fmt.Sprintf("%s %s (%d)", check, label, counts[o.Value])
			if i == m.picker.cursor {
				line = m.styles.OverlayCursor.Render("› " + line)
			} else {
				line = "  " + line
			}
			lines = append(lines, line)
		}
	case m.menu != nil:
		lines = append(lines, m.styles.PanelTitle.Render("Actions"))
		for i, a := range m.cfg.RowActions {
			if i == m.menu.cursor {
				lines = append(lines, m.styles.OverlayCursor.Render("› "+a.Label))
			} else {
				lines = append(lines, "  "+a.Label)
			}
		}
	}
	box := m.styles.Overlay.Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().Height(f.bodyHeight).MaxHeight(f.bodyHeight).MaxWidth(f.tableWidth).Render(box)
}

func (m Model[T]) renderLateralPanel(f frame) string {
	row, _ := m.LateralRow()
	inner := max(f.panelWidth-2, 1)
	title := m.styles.PanelTitle.Render(ansi.Truncate("Details · "+m.rowKey(row), inner, "…"))
	body := strings.Join(wrapLines(m.cfg.RenderLateralContent(row, inner), inner), "\n")
	return m.styles.Panel.
		Width(f.panelWidth - 1).
		Height(f.height).
		MaxHeight(f.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
}

func (m Model[T]) renderBottom(f frame) string {
	lines := m.bottomContent(f.width)
	var key string
	if m.cfg.ExpansionMode == ExpandVertical {
		key, _ = m.exp.Drawer()
	} else {
		key, _ = m.exp.Lateral()
	}
	room := max(f.bottomHeight-2, 1)
	if len(lines) > room {
		lines = lines[:room]
	}
	title := m.styles.PanelTitle.Render(ansi.Truncate("▾ "+key, f.width, "…"))
	return m.styles.Drawer.Width(f.width).Render(lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n")))
}

func (m Model[T]) colFocusKey() string {
	if c, ok := m.focusedColumn(); ok {
		return c.Key
	}
	return ""
}

func (m Model[T]) columnOrZero(key string) Column[T] {
	c, _ := m.column(key)
	return c
}

// assemble writes rendered cells at their span positions.
func assemble(width int, spans []cellSpan, cells []string) string {
	var sb strings.Builder
	x := 0
	for i, sp := range spans {
		if sp.x0 < x {
			continue
		}
		sb.WriteString(strings.Repeat(" ", sp.x0-x))
		cell := cells[i]
		sb.WriteString(cell)
		if pad := sp.width - ansi.StringWidth(cell); pad > 0 {
			sb.WriteString(strings.Repeat(" ", pad))
		}
		x = sp.x0 + sp.width
	}
	if x < width {
		sb.WriteString(strings.Repeat(" ", width-x))
	}
	return sb.String()
}

// fitLine truncates or pads a line to exactly width cells.
func fitLine(s string, width int) string {
	s = ansi.Truncate(s, width, "…")
	if pad := width - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}
