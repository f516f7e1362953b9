// pattern: Functional Core

package datatable

import "slices"

// SortKey orders rows by one column.
type SortKey struct {
	Column string
	Desc   bool
}

// Pinning lists pinned column keys per side, edge-most first.
type Pinning struct {
	Left  []string
	Right []string
}

// ViewState is the complete user-controlled view configuration of one
// table instance. It is only changed through Reduce; stale column keys are
// carried along and ignored by Compute.
type ViewState struct {
	Sorting          []SortKey
	ColumnFilters    map[string]FilterValue
	GlobalFilter     string
	ColumnVisibility map[string]bool
	Selection        map[string]bool
	Pinning          Pinning
}

// Action is a single state change applied by Reduce.
type Action interface {
	apply(ViewState) ViewState
}

// Reduce returns the state produced by applying a to s. s is not modified.
func Reduce(s ViewState, a Action) ViewState {
	if a == nil {
		return s
	}
	return a.apply(s.clone())
}

func (s ViewState) clone() ViewState {
	out := ViewState{
		Sorting:          slices.Clone(s.Sorting),
		ColumnFilters:    make(map[string]FilterValue, len(s.ColumnFilters)),
		GlobalFilter:     s.GlobalFilter,
		ColumnVisibility: make(map[string]bool, len(s.ColumnVisibility)),
		Selection:        make(map[string]bool, len(s.Selection)),
		Pinning: Pinning{
			Left:  slices.Clone(s.Pinning.Left),
			Right: slices.Clone(s.Pinning.Right),
		},
	}
	for k, v := range s.ColumnFilters {
		out.ColumnFilters[k] = v
	}
	for k, v := range s.ColumnVisibility {
		out.ColumnVisibility[k] = v
	}
	for k, v := range s.Selection {
		out.Selection[k] = v
	}
	return out
}

// IsSelected reports whether the row with the given key is selected.
func (s ViewState) IsSelected(key string) bool {
	return s.Selection[key]
}

// SortFor returns the sort entry for a column, if any.
func (s ViewState) SortFor(column string) (SortKey, bool) {
	for _, k := range s.Sorting {
		if k.Column == column {
			return k, true
		}
	}
	return SortKey{}, false
}

// SetGlobalFilter replaces the global text filter.
type SetGlobalFilter struct{ Query string }

func (a SetGlobalFilter) apply(s ViewState) ViewState {
	s.GlobalFilter = a.Query
	return s
}

// SetColumnFilter sets or, with a nil Value, removes a column filter.
type SetColumnFilter struct {
	Column string
	Value  FilterValue
}

func (a SetColumnFilter) apply(s ViewState) ViewState {
	if a.Value == nil {
		delete(s.ColumnFilters, a.Column)
	} else {
		s.ColumnFilters[a.Column] = a.Value
	}
	return s
}

// ResetFilters clears the global filter and all column filters.
type ResetFilters struct{}

func (ResetFilters) apply(s ViewState) ViewState {
	s.GlobalFilter = ""
	s.ColumnFilters = map[string]FilterValue{}
	return s
}

// ToggleSort cycles a column through ascending, descending and unsorted.
// Without Multi the column replaces any existing sort.
type ToggleSort struct {
	Column string
	Multi  bool
}

func (a ToggleSort) apply(s ViewState) ViewState {
	cur, ok := s.SortFor(a.Column)
	var next []SortKey
	if a.Multi {
		for _, k := range s.Sorting {
			if k.Column != a.Column {
				next = append(next, k)
			}
		}
	}
	switch {
	case !ok:
		next = append(next, SortKey{Column: a.Column})
	case !cur.Desc:
		next = append(next, SortKey{Column: a.Column, Desc: true})
	}
	s.Sorting = next
	return s
}

// SetVisibility shows or hides a column.
type SetVisibility struct {
	Column  string
	Visible bool
}

func (a SetVisibility) apply(s ViewState) ViewState {
	s.ColumnVisibility[a.Column] = a.Visible
	return s
}

// ToggleSelection flips the selection of one row.
type ToggleSelection struct{ Key string }

func (a ToggleSelection) apply(s ViewState) ViewState {
	if s.Selection[a.Key] {
		delete(s.Selection, a.Key)
	} else {
		s.Selection[a.Key] = true
	}
	return s
}

// SetSelection selects or deselects a batch of rows.
type SetSelection struct {
	Keys     []string
	Selected bool
}

func (a SetSelection) apply(s ViewState) ViewState {
	for _, k := range a.Keys {
		if a.Selected {
			s.Selection[k] = true
		} else {
			delete(s.Selection, k)
		}
	}
	return s
}

// ClearSelection deselects every row.
type ClearSelection struct{}

func (ClearSelection) apply(s ViewState) ViewState {
	s.Selection = map[string]bool{}
	return s
}

// PinColumn moves a column to a side, or unpins it with PinNone.
type PinColumn struct {
	Column string
	Side   Pin
}

func (a PinColumn) apply(s ViewState) ViewState {
	s.Pinning.Left = slices.DeleteFunc(s.Pinning.Left, func(k string) bool { return k == a.Column })
	s.Pinning.Right = slices.DeleteFunc(s.Pinning.Right, func(k string) bool { return k == a.Column })
	switch a.Side {
	case PinLeft:
		s.Pinning.Left = append(s.Pinning.Left, a.Column)
	case PinRight:
		s.Pinning.Right = append(s.Pinning.Right, a.Column)
	}
	return s
}
