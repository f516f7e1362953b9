package datatable

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the table's key bindings.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	Toggle      key.Binding
	Select      key.Binding
	SelectAll   key.Binding
	Search      key.Binding
	Facets      key.Binding
	Clear       key.Binding
	Sort        key.Binding
	SortMulti   key.Binding
	Pin         key.Binding
	Hide        key.Binding
	ShowAll     key.Binding
	ScrollLeft  key.Binding
	ScrollRight key.Binding
	NextPage    key.Binding
	PrevPage    key.Binding
	FirstPage   key.Binding
	LastPage    key.Binding
	PageSize    key.Binding
	Actions     key.Binding
	Close       key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "column")),
		Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "column")),
		Toggle:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "expand")),
		Select:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		SelectAll:   key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "select all")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Facets:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filters")),
		Clear:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),
		Sort:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		SortMulti:   key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "add sort")),
		Pin:         key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "pin")),
		Hide:        key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "hide column")),
		ShowAll:     key.NewBinding(key.WithKeys("="), key.WithHelp("=", "show columns")),
		ScrollLeft:  key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "scroll left")),
		ScrollRight: key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "scroll right")),
		NextPage:    key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next page")),
		PrevPage:    key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "prev page")),
		FirstPage:   key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "first page")),
		LastPage:    key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "last page")),
		PageSize:    key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "page size")),
		Actions:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "actions")),
		Close:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Search, k.Facets, k.Sort, k.NextPage, k.PrevPage, k.Actions}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Toggle, k.Close},
		{k.Search, k.Facets, k.Clear, k.Sort, k.SortMulti},
		{k.Select, k.SelectAll, k.Actions, k.Pin, k.Hide, k.ShowAll},
		{k.NextPage, k.PrevPage, k.FirstPage, k.LastPage, k.PageSize, k.ScrollLeft, k.ScrollRight},
	}
}
