package datatable

import (
	"slices"
)

// Handle is a read-only view of a table passed to caller render callbacks.
type Handle[T any] interface {
	VisibleRows() []T
	FilteredRows() []T
	SelectedKeys() []string
	State() ViewState
	Pagination() PaginationState
	IsMobile() bool
	Loading() bool
}

type handle[T any] struct {
	rm      RowModel[T]
	state   ViewState
	page    PaginationState
	mobile  bool
	loading bool
}

func (h handle[T]) VisibleRows() []T            { return slices.Clone(h.rm.Rows) }
func (h handle[T]) FilteredRows() []T           { return slices.Clone(h.rm.Filtered) }
func (h handle[T]) State() ViewState            { return h.state.clone() }
func (h handle[T]) Pagination() PaginationState { return h.page }
func (h handle[T]) IsMobile() bool              { return h.mobile }
func (h handle[T]) Loading() bool               { return h.loading }

func (h handle[T]) SelectedKeys() []string {
	keys := make([]string, 0, len(h.state.Selection))
	for k := range h.state.Selection {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
