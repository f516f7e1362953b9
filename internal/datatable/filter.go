// pattern: Functional Core

package datatable

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/cases"
)

// FilterValue is a committed column filter.
type FilterValue interface {
	Match(v any) bool
}

// Equals matches values whose string form equals the filter.
type Equals string

func (f Equals) Match(v any) bool {
	return valueString(v) == string(f)
}

// BoolIs matches boolean column values.
type BoolIs bool

func (f BoolIs) Match(v any) bool {
	switch b := v.(type) {
	case bool:
		return b == bool(f)
	case *bool:
		return b != nil && *b == bool(f)
	}
	parsed, err := strconv.ParseBool(valueString(v))
	return err == nil && parsed == bool(f)
}

// AnyOf matches values equal to any member of the set.
type AnyOf []string

func (f AnyOf) Match(v any) bool {
	return slices.Contains(f, valueString(v))
}

func valueString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}

// folder case-folds text for matching. A folder is not safe for concurrent
// use; create one per filter pass.
type folder struct {
	c cases.Caser
}

func newFolder() *folder {
	return &folder{c: cases.Fold()}
}

func (f *folder) fold(s string) string {
	return f.c.String(s)
}

// serializeRow joins the searchable text of a row. With only set, just that
// column is used.
func serializeRow[T any](row T, cols []Column[T], only string) string {
	var sb strings.Builder
	for _, c := range cols {
		if c.Interactive {
			continue
		}
		if only != "" && c.Key != only {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(c.text(row))
	}
	return sb.String()
}

// FilterGlobal returns the rows whose serialization contains query,
// case-insensitively. An empty query returns rows unchanged.
func FilterGlobal[T any](rows []T, cols []Column[T], query, only string) []T {
	if query == "" {
		return rows
	}
	f := newFolder()
	needle := f.fold(query)
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(f.fold(serializeRow(r, cols, only)), needle) {
			out = append(out, r)
		}
	}
	return out
}

// CommitPolicy controls how a locally applied faceted filter turns its
// selected values into a column filter.
type CommitPolicy int

const (
	// CommitFirst filters on the first selected value only.
	CommitFirst CommitPolicy = iota
	// CommitBoolScalar behaves like CommitFirst but collapses a boolean
	// value to a BoolIs scalar.
	CommitBoolScalar
	// CommitAll matches any of the selected values.
	CommitAll
)

// FacetOption is one discrete value offered by a faceted filter.
type FacetOption struct {
	Value string
	Label string
	Icon  string
}

// FacetedFilter is a multi-select filter over one column's known values.
type FacetedFilter struct {
	ColumnKey string
	Title     string
	Options   []FacetOption

	// OnFilterChange makes the filter externally driven. It receives the
	// full selection after every toggle, including an empty one.
	OnFilterChange func(values []string) tea.Cmd
	// Value seeds the selection for externally driven filters.
	Value []string

	Commit CommitPolicy
}

// External reports whether the filter is driven by its host.
func (f FacetedFilter) External() bool {
	return f.OnFilterChange != nil
}

// facetSelection is the set of values currently toggled on for one facet.
type facetSelection map[string]bool

func newFacetSelection(values []string) facetSelection {
	s := facetSelection{}
	for _, v := range values {
		s[v] = true
	}
	return s
}

// toggle returns a new selection with v flipped.
func (s facetSelection) toggle(v string) facetSelection {
	out := make(facetSelection, len(s)+1)
	for k := range s {
		out[k] = true
	}
	if out[v] {
		delete(out, v)
	} else {
		out[v] = true
	}
	return out
}

// values lists the selection in option order; unknown values follow sorted.
func (s facetSelection) values(opts []FacetOption) []string {
	out := make([]string, 0, len(s))
	known := make(map[string]bool, len(opts))
	for _, o := range opts {
		known[o.Value] = true
		if s[o.Value] {
			out = append(out, o.Value)
		}
	}
	var rest []string
	for v := range s {
		if !known[v] {
			rest = append(rest, v)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}

// commitFilter converts selected values to a column filter. Nil means no filter.
func commitFilter(policy CommitPolicy, values []string) FilterValue {
	if len(values) == 0 {
		return nil
	}
	switch policy {
	case CommitAll:
		return AnyOf(slices.Clone(values))
	case CommitBoolScalar:
		if b, err := strconv.ParseBool(values[0]); err == nil {
			return BoolIs(b)
		}
	}
	return Equals(values[0])
}

// facetCounts counts rows per option value for a column.
func facetCounts[T any](rows []T, col Column[T]) map[string]int {
	counts := make(map[string]int)
	for _, r := range rows {
		counts[valueString(col.value(r))]++
	}
	return counts
}
