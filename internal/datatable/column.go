// pattern: Functional Core

package datatable

import (
	"fmt"

	"github.com/mattn/go-runewidth"
)

// Pin places a column at the left or right edge of the table so it stays
// visible while the unpinned columns scroll horizontally.
type Pin int

const (
	PinNone Pin = iota
	PinLeft
	PinRight
)

const (
	// maxAutoWidth caps columns without an explicit Width.
	maxAutoWidth = 32
	// columnGap is the separator width between adjacent cells.
	columnGap = 1
)

// Column describes one column of a table over rows of type T.
type Column[T any] struct {
	Key    string
	Header string

	// Value returns the raw value used for sorting and column filters.
	Value func(T) any
	// Cell renders the display text. Falls back to fmt.Sprint(Value(row)).
	Cell func(T) string

	Width      int // fixed display width in cells; 0 sizes to content
	Sortable   bool
	Filterable bool
	Pin        Pin

	// Interactive columns hold controls (checkboxes, action triggers).
	// A click landing on them never toggles row expansion.
	Interactive bool
	Hidden      bool
}

func (c Column[T]) value(row T) any {
	if c.Value == nil {
		return nil
	}
	return c.Value(row)
}

func (c Column[T]) text(row T) string {
	if c.Cell != nil {
		return c.Cell(row)
	}
	v := c.value(row)
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// displayWidth returns the width the column occupies for the given rows.
func (c Column[T]) displayWidth(rows []T) int {
	if c.Width > 0 {
		return c.Width
	}
	w := runewidth.StringWidth(c.Header)
	for _, r := range rows {
		if cw := runewidth.StringWidth(c.text(r)); cw > w {
			w = cw
		}
	}
	if w > maxAutoWidth {
		w = maxAutoWidth
	}
	if w < 1 {
		w = 1
	}
	return w
}

// PinOffset is the horizontal position of a pinned column measured from its
// own edge of the table. Stack orders pinned columns closest to the edge first.
type PinOffset struct {
	Side   Pin
	Offset int
	Stack  int
}
