// pattern: Functional Core

package datatable

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// RowModel is the result of one render pass: the rows and columns visible
// after filtering, sorting, visibility, pinning and pagination.
type RowModel[T any] struct {
	Rows     []T      // rows on the current page
	Keys     []string // identity keys of Rows
	Filtered []T      // every row passing the filters, sorted

	Columns []Column[T] // visible columns: left pins, unpinned, right pins
	Widths  map[string]int
	Pins    map[string]PinOffset

	PageCount int
	Total     int
}

// computeInput gathers everything one render pass depends on.
type computeInput[T any] struct {
	columns      []Column[T]
	rows         []T
	rowKey       func(T) string
	state        ViewState
	page         PaginationState
	serverPaged  bool
	globalColumn string
}

// compute derives the RowModel. Stale keys in the state are ignored.
func compute[T any](in computeInput[T]) RowModel[T] {
	byKey := make(map[string]Column[T], len(in.columns))
	for _, c := range in.columns {
		byKey[c.Key] = c
	}

	rows := FilterGlobal(in.rows, in.columns, in.state.GlobalFilter, in.globalColumn)
	rows = filterColumns(rows, byKey, in.state.ColumnFilters)
	rows = sortRows(rows, byKey, in.state.Sorting)

	rm := RowModel[T]{Filtered: rows}

	if in.serverPaged {
		rm.Rows = rows
		rm.PageCount = 1
		if in.page.PageCount != nil {
			rm.PageCount = *in.page.PageCount
		}
		rm.Total = len(rows)
		if in.page.Total != nil {
			rm.Total = *in.page.Total
		}
	} else {
		rm.Total = len(rows)
		rm.PageCount = localPageCount(len(rows), in.page.PageSize)
		rm.Rows = pageSlice(rows, in.page.PageIndex, in.page.PageSize)
	}

	rm.Keys = make([]string, len(rm.Rows))
	for i, r := range rm.Rows {
		rm.Keys[i] = in.rowKey(r)
	}

	rm.Columns = orderColumns(in.columns, in.state)
	rm.Widths = make(map[string]int, len(rm.Columns))
	for _, c := range rm.Columns {
		rm.Widths[c.Key] = c.displayWidth(rm.Rows)
	}
	rm.Pins = pinOffsets(rm.Columns, rm.Widths, in.state)
	return rm
}

func filterColumns[T any](rows []T, cols map[string]Column[T], filters map[string]FilterValue) []T {
	active := make(map[string]FilterValue, len(filters))
	for k, f := range filters {
		if _, ok := cols[k]; ok && f != nil {
			active[k] = f
		}
	}
	if len(active) == 0 {
		return rows
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		keep := true
		for k, f := range active {
			if !f.Match(cols[k].value(r)) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return out
}

func sortRows[T any](rows []T, cols map[string]Column[T], keys []SortKey) []T {
	var active []SortKey
	for _, k := range keys {
		if c, ok := cols[k.Column]; ok && c.Sortable {
			active = append(active, k)
		}
	}
	if len(active) == 0 {
		return rows
	}
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b T) int {
		for _, k := range active {
			c := cols[k.Column]
			r := compareValues(c.value(a), c.value(b))
			if k.Desc {
				r = -r
			}
			if r != 0 {
				return r
			}
		}
		return 0
	})
	return out
}

// compareValues orders values of the common scalar kinds; anything else is
// compared by string form. Nil sorts first.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch av := a.(type) {
	case int:
		if bv, ok := b.(int); ok {
			return cmp.Compare(av, bv)
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return cmp.Compare(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return cmp.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return cmp.Compare(av, bv)
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func localPageCount(rows, size int) int {
	if size <= 0 || rows == 0 {
		return 1
	}
	return (rows + size - 1) / size
}

func pageSlice[T any](rows []T, index, size int) []T {
	if size <= 0 {
		return rows
	}
	start := index * size
	if start >= len(rows) || start < 0 {
		return nil
	}
	end := min(start+size, len(rows))
	return rows[start:end]
}

// isVisible resolves a column's visibility: explicit state wins over the
// column's Hidden default.
func isVisible[T any](c Column[T], s ViewState) bool {
	if v, ok := s.ColumnVisibility[c.Key]; ok {
		return v
	}
	return !c.Hidden
}

// pinSide resolves a column's pin: explicit state wins over Column.Pin.
func pinSide[T any](c Column[T], s ViewState) Pin {
	if slices.Contains(s.Pinning.Left, c.Key) {
		return PinLeft
	}
	if slices.Contains(s.Pinning.Right, c.Key) {
		return PinRight
	}
	return c.Pin
}

func orderColumns[T any](cols []Column[T], s ViewState) []Column[T] {
	var left, mid, right []Column[T]
	for _, c := range cols {
		if !isVisible(c, s) {
			continue
		}
		switch pinSide(c, s) {
		case PinLeft:
			left = append(left, c)
		case PinRight:
			right = append(right, c)
		default:
			mid = append(mid, c)
		}
	}
	left = pinOrder(left, s.Pinning.Left)
	right = pinOrder(right, s.Pinning.Right)
	out := make([]Column[T], 0, len(left)+len(mid)+len(right))
	out = append(out, left...)
	out = append(out, mid...)
	// Right pins are listed edge-most first but render edge-most last.
	for i := len(right) - 1; i >= 0; i-- {
		out = append(out, right[i])
	}
	return out
}

// pinOrder sorts pinned columns by their position in the state's pin list;
// columns pinned only by default keep declaration order after those.
func pinOrder[T any](cols []Column[T], order []string) []Column[T] {
	slices.SortStableFunc(cols, func(a, b Column[T]) int {
		ia, ib := slices.Index(order, a.Key), slices.Index(order, b.Key)
		if ia < 0 {
			ia = len(order)
		}
		if ib < 0 {
			ib = len(order)
		}
		return cmp.Compare(ia, ib)
	})
	return cols
}

// pinOffsets computes each pinned column's distance from its edge as the
// cumulative width, separators included, of the pinned columns between it
// and that edge.
func pinOffsets[T any](cols []Column[T], widths map[string]int, s ViewState) map[string]PinOffset {
	out := make(map[string]PinOffset)
	offset, stack := 0, 0
	for _, c := range cols {
		if pinSide(c, s) != PinLeft {
			continue
		}
		out[c.Key] = PinOffset{Side: PinLeft, Offset: offset, Stack: stack}
		offset += widths[c.Key] + columnGap
		stack++
	}
	offset, stack = 0, 0
	for i := len(cols) - 1; i >= 0; i-- {
		c := cols[i]
		if pinSide(c, s) != PinRight {
			continue
		}
		out[c.Key] = PinOffset{Side: PinRight, Offset: offset, Stack: stack}
		offset += widths[c.Key] + columnGap
		stack++
	}
	return out
}

// AllSelected reports whether every filtered row is selected. Rows hidden
// by filters do not count.
func (rm RowModel[T]) AllSelected(s ViewState, rowKey func(T) string) bool {
	if len(rm.Filtered) == 0 {
		return false
	}
	for _, r := range rm.Filtered {
		if !s.Selection[rowKey(r)] {
			return false
		}
	}
	return true
}

// FilteredKeys returns the identity keys of every filtered row.
func (rm RowModel[T]) FilteredKeys(rowKey func(T) string) []string {
	keys := make([]string, len(rm.Filtered))
	for i, r := range rm.Filtered {
		keys[i] = rowKey(r)
	}
	return keys
}
