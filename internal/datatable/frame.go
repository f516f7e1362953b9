// pattern: Functional Core

package datatable

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

// Fixed rows of table chrome, top to bottom: toolbar, header, then the
// body, then the footer.
const (
	toolbarLine  = 0
	headerLine   = 1
	bodyStart    = 2
	chromeHeight = 3
	cursorWidth  = 2
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

type lineKind int

const (
	lineRow lineKind = iota
	lineDetail
	lineEmpty
)

// bodyLine is one line of the table body and the row it belongs to.
type bodyLine struct {
	kind lineKind
	row  int
	text string
}

// cellSpan is the horizontal extent of one rendered column.
type cellSpan struct {
	key         string
	x0, x1      int
	width       int
	interactive bool
	pinned      bool
}

// frame is the geometry of one render: where everything is, shared by
// View and the mouse hit test.
type frame struct {
	width, height int
	tableWidth    int
	panelWidth    int
	bodyTop       int
	bodyHeight    int
	bottomHeight  int
	spans         []cellSpan
	lines         []bodyLine
}

func (f frame) spanAt(x int) (cellSpan, bool) {
	for _, s := range f.spans {
		if x >= s.x0 && x < s.x1 {
			return s, true
		}
	}
	return cellSpan{}, false
}

// rowLine returns the index of the first body line of a row.
func (f frame) rowLine(row int) int {
	for i, l := range f.lines {
		if l.kind == lineRow && l.row == row {
			return i
		}
	}
	return -1
}

func (m Model[T]) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = defaultWidth
		if m.vp.Width > 0 {
			w = m.vp.Width
		}
	}
	if h <= 0 {
		h = defaultHeight
		if m.vp.Height > 0 {
			h = m.vp.Height
		}
	}
	return w, h
}

// frame lays the table out for its current state.
func (m Model[T]) frame() frame {
	w, h := m.size()
	f := frame{width: w, height: h, tableWidth: w, bodyTop: bodyStart}

	mobile := m.vp.IsMobile()
	if _, ok := m.LateralRow(); ok && !mobile {
		f.panelWidth = LateralWidth(w, m.cfg.LateralPanelSize)
		f.tableWidth = w - f.panelWidth
	}

	if lines := m.bottomContent(w); len(lines) > 0 {
		f.bottomHeight = min(len(lines)+2, max(h/2, 3))
	}
	f.bodyHeight = max(h-chromeHeight-f.bottomHeight, 1)
	f.spans = m.layoutSpans(f.tableWidth)
	f.lines = m.bodyLines(f.tableWidth)
	return f
}

// layoutSpans places left pins, then as many scrolled unpinned columns as
// fit, then right pins against the right edge.
func (m Model[T]) layoutSpans(tableWidth int) []cellSpan {
	rm := m.rm
	rightTotal := 0
	for _, c := range rm.Columns {
		if p, ok := rm.Pins[c.Key]; ok && p.Side == PinRight {
			rightTotal += rm.Widths[c.Key] + columnGap
		}
	}

	var spans []cellSpan
	x := cursorWidth
	limit := tableWidth - rightTotal
	unpinned := 0
	for _, c := range rm.Columns {
		wd := rm.Widths[c.Key]
		p, pinned := rm.Pins[c.Key]
		switch {
		case pinned && p.Side == PinLeft:
			x0 := cursorWidth + p.Offset
			spans = append(spans, cellSpan{key: c.Key, x0: x0, x1: x0 + wd, width: wd, interactive: c.Interactive, pinned: true})
			x = max(x, x0+wd+columnGap)
		case pinned && p.Side == PinRight:
			x0 := tableWidth - p.Offset - wd - columnGap
			if x0 < cursorWidth {
				continue
			}
			spans = append(spans, cellSpan{key: c.Key, x0: x0, x1: x0 + wd, width: wd, interactive: c.Interactive, pinned: true})
		default:
			idx := unpinned
			unpinned++
			if idx < m.scroll || x >= limit {
				continue
			}
			fit := min(wd, limit-x)
			if fit <= 0 {
				continue
			}
			spans = append(spans, cellSpan{key: c.Key, x0: x, x1: x + fit, width: fit, interactive: c.Interactive})
			x += fit + columnGap
		}
	}
	return spans
}

// bodyLines lists every body line before scrolling. Inline expansion
// regions follow their row on desktop only.
func (m Model[T]) bodyLines(tableWidth int) []bodyLine {
	if len(m.rm.Rows) == 0 {
		text := m.cfg.EmptyText
		if text == "" {
			text = "No results."
		}
		if m.Loading() {
			text = "Loading…"
		}
		return []bodyLine{{kind: lineEmpty, row: -1, text: text}}
	}
	mobile := m.vp.IsMobile()
	lines := make([]bodyLine, 0, len(m.rm.Rows))
	for i, row := range m.rm.Rows {
		lines = append(lines, bodyLine{kind: lineRow, row: i})
		if mobile || m.cfg.ExpansionMode != ExpandVertical || !m.exp.IsExpanded(m.rm.Keys[i]) {
			continue
		}
		for _, l := range wrapLines(m.cfg.RenderExpandedRow(row, detailWidth(tableWidth)), detailWidth(tableWidth)) {
			lines = append(lines, bodyLine{kind: lineDetail, row: i, text: l})
		}
	}
	return lines
}

// bottomContent returns the lines of the drawer or the narrow lateral
// block, whichever is showing.
func (m Model[T]) bottomContent(width int) []string {
	inner := max(width-2, 1)
	if m.cfg.ExpansionMode == ExpandVertical {
		key, open := m.exp.Drawer()
		if !open {
			return nil
		}
		row, ok := m.Row(key)
		if !ok || m.cfg.RenderExpandedRow == nil {
			return nil
		}
		return wrapLines(m.cfg.RenderExpandedRow(row, inner), inner)
	}
	if !m.vp.IsMobile() {
		return nil
	}
	row, ok := m.LateralRow()
	if !ok {
		return nil
	}
	return wrapLines(m.cfg.RenderLateralContent(row, inner), inner)
}

func detailWidth(tableWidth int) int {
	return max(tableWidth-6, 10)
}

func wrapLines(s string, width int) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(wordwrap.String(s, width), "\n")
}

// ensureCursorVisible scrolls the body so the cursor row is on screen.
func (m *Model[T]) ensureCursorVisible() {
	f := m.frame()
	line := f.rowLine(m.cursor)
	if line < 0 {
		m.offset = 0
		return
	}
	if line < m.offset {
		m.offset = line
	}
	if line >= m.offset+f.bodyHeight {
		m.offset = line - f.bodyHeight + 1
	}
	m.offset = max(min(m.offset, len(f.lines)-1), 0)
}
