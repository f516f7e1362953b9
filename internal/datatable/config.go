package datatable

import (
	tea "github.com/charmbracelet/bubbletea"

	"salesdesk/internal/logging"
)

// RowAction is an entry in a row's action menu.
type RowAction[T any] struct {
	Label string
	Run   func(row T) tea.Cmd
}

// Config is the construction contract of a table. Everything except Columns
// and RowKey is optional and defaults to inert behaviour: no filters, no
// expansion, local pagination.
type Config[T any] struct {
	// ID routes asynchronous messages back to this instance. Generated
	// when empty.
	ID string

	Data    []T
	Columns []Column[T]
	// RowKey returns the stable identity of a row across refetches.
	RowKey func(T) string

	FacetedFilters []FacetedFilter
	// GlobalFilterColumn restricts the search box to one column.
	GlobalFilterColumn string
	// OnGlobalFilterChange makes search server driven: the raw query is
	// forwarded and local filter state is left alone.
	OnGlobalFilterChange func(query string) tea.Cmd
	ExternalFilterValue  string

	ExpansionMode        ExpansionMode
	RenderExpandedRow    func(row T, width int) string
	RenderLateralContent func(row T, width int) string
	LateralPanelSize     int
	OnLateralToggle      func(open bool, row *T) tea.Cmd

	Server *ServerPagination
	// IsLoading overrides the internal loading flag when set.
	IsLoading *bool
	PageSize  int

	Selectable     bool
	RowActions     []RowAction[T]
	ToolbarActions func(h Handle[T]) string

	Breakpoint int
	EmptyText  string
	Styles     *Styles
	Logger     *logging.ScopedLogger
}

// expansionEnabled reports whether the mode has the renderer it needs.
func (c Config[T]) expansionEnabled() bool {
	if c.ExpansionMode == ExpandLateral {
		return c.RenderLateralContent != nil
	}
	return c.RenderExpandedRow != nil
}
