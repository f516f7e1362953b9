// pattern: Functional Core

package datatable

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultPageSize is used when neither the config nor the server sets one.
const DefaultPageSize = 10

// PageSizes are the sizes offered by the page-size control.
var PageSizes = []int{10, 20, 50, 100}

// PaginationState is the current page. PageCount and Total are only set
// when paging is driven by a server.
type PaginationState struct {
	PageIndex int
	PageSize  int
	PageCount *int
	Total     *int
}

// ServerPagination makes paging externally driven. The table never slices
// rows locally in this mode; OnPaginationChange must load the new page.
type ServerPagination struct {
	PageIndex int
	PageSize  int
	PageCount int
	Total     int

	OnPaginationChange func(ctx context.Context, pageIndex, pageSize int) error
}

// PageSettledMsg reports that a server pagination call returned. Err is the
// handler's error, passed through untouched for the host to surface.
type PageSettledMsg struct {
	TableID   string
	PageIndex int
	PageSize  int
	Err       error
}

// pager holds pagination state for one table.
type pager struct {
	tableID string
	state   PaginationState
	server  *ServerPagination
	pending int
}

func newPager(tableID string, pageSize int, server *ServerPagination) pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	p := pager{
		tableID: tableID,
		state:   PaginationState{PageSize: pageSize},
	}
	if server != nil {
		p.applyServer(*server)
	}
	return p
}

// applyServer takes an external prop update as authoritative.
func (p *pager) applyServer(s ServerPagination) {
	p.server = &s
	p.state.PageIndex = max(s.PageIndex, 0)
	if s.PageSize > 0 {
		p.state.PageSize = s.PageSize
	}
	pc, total := s.PageCount, s.Total
	p.state.PageCount = &pc
	p.state.Total = &total
}

func (p pager) serverDriven() bool {
	return p.server != nil
}

func (p pager) loading() bool {
	return p.pending > 0
}

// pageCount returns the authoritative page count when present, else the
// locally computed one.
func (p pager) pageCount(local int) int {
	if p.state.PageCount != nil {
		return max(*p.state.PageCount, 1)
	}
	return max(local, 1)
}

// move sets a new page index and size. Local state updates immediately;
// in server mode the returned command invokes the external handler.
func (p *pager) move(index, size, pageCount int) tea.Cmd {
	if size <= 0 {
		return nil
	}
	if index < 0 || (index >= pageCount && index != 0) {
		return nil
	}
	if index == p.state.PageIndex && size == p.state.PageSize {
		return nil
	}
	p.state.PageIndex = index
	p.state.PageSize = size
	return p.notify()
}

// notify invokes the server handler for the current page, if any.
func (p *pager) notify() tea.Cmd {
	if p.server == nil || p.server.OnPaginationChange == nil {
		return nil
	}
	p.pending++
	handler := p.server.OnPaginationChange
	id, index, size := p.tableID, p.state.PageIndex, p.state.PageSize
	return func() tea.Msg {
		err := handler(context.Background(), index, size)
		return PageSettledMsg{TableID: id, PageIndex: index, PageSize: size, Err: err}
	}
}

// settle records a finished handler call, successful or not.
func (p *pager) settle() {
	if p.pending > 0 {
		p.pending--
	}
}

// clampLocal pulls the index back into range after the row set shrinks.
func (p *pager) clampLocal(pageCount int) {
	if p.serverDriven() {
		return
	}
	if p.state.PageIndex >= pageCount {
		p.state.PageIndex = max(pageCount-1, 0)
	}
}
