// Package datatable is an adaptive table component for bubbletea programs.
//
// A table composes sorting, global and faceted filtering, column
// visibility and pinning, selection and pagination into one render pass,
// and shows row detail in one of two mutually exclusive ways: inline under
// the row (vertical) or in a side panel (lateral). Below a width breakpoint
// the vertical mode switches to a bottom drawer and the lateral mode to a
// block under the table; crossing the breakpoint migrates the open row
// between presentations without losing it.
//
// Rows are opaque to the table. Callers supply a stable RowKey so that
// selection and expansion survive data refetches.
package datatable
