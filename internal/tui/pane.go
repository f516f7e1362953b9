// pattern: Imperative Shell

package tui

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"salesdesk/internal/backend"
	"salesdesk/internal/datatable"
	"salesdesk/internal/logging"
	"salesdesk/internal/records"
)

// localFetchSize is the page size used when a locally paged collection is
// fetched in full.
const localFetchSize = 100

// rowsLoadedMsg delivers a full fetch of a locally paged collection.
type rowsLoadedMsg struct {
	collection string
	rows       any
	err        error
}

// remoteQueryMsg asks a server paged collection to refetch from the first
// page after its search or filters changed.
type remoteQueryMsg struct{ collection string }

// loadFailedMsg reports a failed fetch to the status bar.
type loadFailedMsg struct {
	collection string
	err        error
}

// tab is one collection screen. Implemented by *pane[T].
type tab interface {
	Name() string
	Title() string
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	Refresh() tea.Cmd
	SetSize(width, height int)
	SetOrigin(x, y int)
	SetStyles(s datatable.Styles)
	SetBreakpoint(bp int) tea.Cmd
	Focus()
	Blur()
	// Capturing reports whether the table owns every key right now
	// (search box focused or an overlay open).
	Capturing() bool
	KeyMap() datatable.KeyMap
	CursorKey() (string, bool)
	Total() int
	Loading() bool
}

// loader fetches one page of a collection.
type loader[T any] func(ctx context.Context, q backend.Query) (records.Page[T], error)

// remoteQuery is the search and filter state sent with every page request
// of a server paged collection. Page handlers read it off the UI goroutine.
type remoteQuery struct {
	mu      sync.Mutex
	search  string
	filters map[string][]string
}

func (q *remoteQuery) setSearch(s string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.search = s
}

func (q *remoteQuery) setFilter(column string, values []string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(values) == 0 {
		delete(q.filters, column)
		return
	}
	q.filters[column] = slices.Clone(values)
}

func (q *remoteQuery) build(page, size int) backend.Query {
	q.mu.Lock()
	defer q.mu.Unlock()
	return backend.Query{Page: page, Size: size, Search: q.search, Filters: maps.Clone(q.filters)}
}

type pageKey struct{ index, size int }

// pageSlot hands fetched pages from the page handler to Update.
type pageSlot[T any] struct {
	mu    sync.Mutex
	pages map[pageKey]records.Page[T]
}

func (s *pageSlot[T]) put(k pageKey, p records.Page[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[k] = p
}

func (s *pageSlot[T]) take(k pageKey) (records.Page[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[k]
	delete(s.pages, k)
	return p, ok
}

// paneConfig describes one collection tab.
type paneConfig[T any] struct {
	name    string
	title   string
	remote  bool
	load    loader[T]
	table   datatable.Config[T]
	timeout time.Duration
	logger  *logging.ScopedLogger
}

type pane[T any] struct {
	name    string
	title   string
	remote  bool
	load    loader[T]
	timeout time.Duration
	logger  *logging.ScopedLogger

	table datatable.Model[T]
	query *remoteQuery
	slot  *pageSlot[T]

	fetching bool
}

func newPane[T any](pc paneConfig[T]) *pane[T] {
	p := &pane[T]{
		name:    pc.name,
		title:   pc.title,
		remote:  pc.remote,
		load:    pc.load,
		timeout: pc.timeout,
		logger:  pc.logger,
	}
	if p.logger == nil {
		p.logger = logging.NopLogger()
	}
	if p.timeout <= 0 {
		p.timeout = 10 * time.Second
	}

	cfg := pc.table
	cfg.ID = pc.name
	cfg.Logger = p.logger
	if pc.remote {
		p.query = &remoteQuery{filters: map[string][]string{}}
		p.slot = &pageSlot[T]{pages: map[pageKey]records.Page[T]{}}
		cfg.Server = &datatable.ServerPagination{PageSize: cfg.PageSize, OnPaginationChange: p.pageHandler()}
		cfg.OnGlobalFilterChange = func(q string) tea.Cmd {
			p.query.setSearch(q)
			return requery(pc.name)
		}
		facets := slices.Clone(cfg.FacetedFilters)
		for i := range facets {
			column := facets[i].ColumnKey
			facets[i].OnFilterChange = func(values []string) tea.Cmd {
				p.query.setFilter(column, values)
				return requery(pc.name)
			}
		}
		cfg.FacetedFilters = facets
	}
	p.table = datatable.New(cfg)
	return p
}

func requery(name string) tea.Cmd {
	return func() tea.Msg { return remoteQueryMsg{collection: name} }
}

// pageHandler fetches a page for the table's server pagination and parks
// it in the slot for Update to apply.
func (p *pane[T]) pageHandler() func(ctx context.Context, index, size int) error {
	query, slot, load, timeout := p.query, p.slot, p.load, p.timeout
	return func(ctx context.Context, index, size int) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		page, err := load(ctx, query.build(index, size))
		if err != nil {
			return err
		}
		slot.put(pageKey{index, size}, page)
		return nil
	}
}

func (p *pane[T]) Name() string { return p.name }
func (p *pane[T]) Title() string { return p.title }

func (p *pane[T]) Init() tea.Cmd {
	return p.Refresh()
}

// Refresh refetches the current page, or the whole collection when paged
// locally. Expansion state survives through row keys.
func (p *pane[T]) Refresh() tea.Cmd {
	if p.remote {
		return p.table.Reload()
	}
	if p.fetching {
		return nil
	}
	p.fetching = true
	loading := true
	p.table.SetLoading(&loading)
	load, name, timeout := p.load, p.name, p.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		var all []T
		for index := 0; ; index++ {
			page, err := load(ctx, backend.Query{Page: index, Size: localFetchSize})
			if err != nil {
				return rowsLoadedMsg{collection: name, err: err}
			}
			all = append(all, page.Items...)
			if len(page.Items) == 0 || index+1 >= page.PageCount {
				break
			}
		}
		return rowsLoadedMsg{collection: name, rows: all}
	}
}

func (p *pane[T]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case rowsLoadedMsg:
		if msg.collection != p.name {
			return nil
		}
		p.fetching = false
		p.table.SetLoading(nil)
		if msg.err != nil {
			return failed(p.name, msg.err)
		}
		rows, _ := msg.rows.([]T)
		p.logger.Debug("collection loaded", "rows", len(rows))
		return p.table.SetRows(rows)

	case remoteQueryMsg:
		if msg.collection != p.name || !p.remote {
			return nil
		}
		if p.table.Pagination().PageIndex != 0 {
			return p.table.GoToPage(0)
		}
		return p.table.Reload()

	case datatable.PageSettledMsg:
		if msg.TableID != p.table.ID() {
			return nil
		}
		var cmd tea.Cmd
		p.table, cmd = p.table.Update(msg)
		if msg.Err != nil {
			return tea.Batch(cmd, failed(p.name, msg.Err))
		}
		return tea.Batch(cmd, p.applyPage(pageKey{msg.PageIndex, msg.PageSize}))
	}

	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return cmd
}

// applyPage installs a fetched page. A page beyond the end, left over
// after the result set shrank, moves to the new last page.
func (p *pane[T]) applyPage(k pageKey) tea.Cmd {
	page, ok := p.slot.take(k)
	if !ok {
		return nil
	}
	cmd := p.table.SetRows(page.Items)
	p.table.SetServer(datatable.ServerPagination{
		PageIndex: page.PageIndex,
		PageSize:  page.PageSize,
		PageCount: page.PageCount,
		Total:     page.Total,
	})
	if page.PageIndex > 0 && page.PageIndex >= page.PageCount {
		return tea.Batch(cmd, p.table.GoToPage(page.PageCount-1))
	}
	return cmd
}

func failed(name string, err error) tea.Cmd {
	return func() tea.Msg { return loadFailedMsg{collection: name, err: err} }
}

func (p *pane[T]) View() string { return p.table.View() }
func (p *pane[T]) SetSize(width, height int) { p.table.SetSize(width, height) }
func (p *pane[T]) SetOrigin(x, y int) { p.table.SetOrigin(x, y) }
func (p *pane[T]) SetStyles(s datatable.Styles) { p.table.SetStyles(s) }
func (p *pane[T]) SetBreakpoint(bp int) tea.Cmd { return p.table.SetBreakpoint(bp) }
func (p *pane[T]) Focus() { p.table.Focus() }
func (p *pane[T]) Blur() { p.table.Blur() }
func (p *pane[T]) Capturing() bool { return p.table.Searching() || p.table.OverlayOpen() }
func (p *pane[T]) KeyMap() datatable.KeyMap { return p.table.KeyMap() }
func (p *pane[T]) CursorKey() (string, bool) { return p.table.CursorKey() }
func (p *pane[T]) Loading() bool { return p.table.Loading() }
func (p *pane[T]) Row(key string) (T, bool) { return p.table.Row(key) }
func (p *pane[T]) Handle() datatable.Handle[T] { return p.table.Handle() }
func (p *pane[T]) Expansion() datatable.Expansion { return p.table.Expansion() }
func (p *pane[T]) Pagination() datatable.PaginationState { return p.table.Pagination() }

// Total is the row count across all pages.
func (p *pane[T]) Total() int {
	if t := p.table.Pagination().Total; t != nil {
		return *t
	}
	return p.table.RowModel().Total
}
