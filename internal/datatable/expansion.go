// pattern: Functional Core

package datatable

import "maps"

// ExpansionMode selects how a row's detail is shown. A table uses exactly
// one mode for its whole life.
type ExpansionMode int

const (
	// ExpandVertical shows detail inline beneath the row (a bottom drawer
	// on narrow terminals).
	ExpandVertical ExpansionMode = iota
	// ExpandLateral shows one row's detail in a side panel (an inline block
	// below the table on narrow terminals).
	ExpandLateral
)

func (m ExpansionMode) String() string {
	if m == ExpandLateral {
		return "lateral"
	}
	return "vertical"
}

// ParseExpansionMode maps a config string to a mode, defaulting to vertical.
func ParseExpansionMode(s string) ExpansionMode {
	if s == "lateral" {
		return ExpandLateral
	}
	return ExpandVertical
}

// ExpansionState names the machine's current state.
type ExpansionState int

const (
	Collapsed ExpansionState = iota
	InlineExpanded
	LateralOpen
	DrawerOpen
)

func (s ExpansionState) String() string {
	switch s {
	case InlineExpanded:
		return "inline"
	case LateralOpen:
		return "lateral"
	case DrawerOpen:
		return "drawer"
	default:
		return "collapsed"
	}
}

// Phase tracks the two-step mobile to desktop migration. While Migrating
// the drawer stays up next to the freshly expanded inline row until Settle.
type Phase int

const (
	Settled Phase = iota
	Migrating
)

func (p Phase) String() string {
	if p == Migrating {
		return "migrating"
	}
	return "settled"
}

// Effect is an observable outcome of a transition.
type Effect interface{ effect() }

// LateralToggled fires on every lateral open, close or replace.
type LateralToggled struct {
	Open   bool
	RowKey string // set when opening or replacing
}

// SettleRequested asks the host to call Settle after a short delay.
type SettleRequested struct{}

func (LateralToggled) effect()  {}
func (SettleRequested) effect() {}

// Expansion is the row expansion state of one table. Transitions return a
// new value and never modify the receiver.
type Expansion struct {
	mode     ExpansionMode
	disabled bool

	inline map[string]bool

	lateralKey  string
	lateralOpen bool

	drawerKey  string
	drawerOpen bool

	phase Phase
}

// NewExpansion returns a collapsed machine. A disabled machine ignores
// every trigger.
func NewExpansion(mode ExpansionMode, enabled bool) Expansion {
	return Expansion{mode: mode, disabled: !enabled, inline: map[string]bool{}}
}

func (e Expansion) Mode() ExpansionMode { return e.mode }
func (e Expansion) Enabled() bool       { return !e.disabled }
func (e Expansion) Phase() Phase        { return e.phase }

// State summarizes the machine. An open drawer wins over inline rows while
// a migration is in flight.
func (e Expansion) State() ExpansionState {
	switch {
	case e.lateralOpen:
		return LateralOpen
	case e.drawerOpen:
		return DrawerOpen
	case len(e.inline) > 0:
		return InlineExpanded
	default:
		return Collapsed
	}
}

// IsExpanded reports whether a row shows its inline region.
func (e Expansion) IsExpanded(key string) bool {
	return e.inline[key]
}

// InlineKeys returns the expanded row keys.
func (e Expansion) InlineKeys() []string {
	keys := make([]string, 0, len(e.inline))
	for k := range e.inline {
		keys = append(keys, k)
	}
	return keys
}

// Lateral returns the selected row of an open lateral panel.
func (e Expansion) Lateral() (string, bool) {
	return e.lateralKey, e.lateralOpen
}

// Drawer returns the active row of an open drawer.
func (e Expansion) Drawer() (string, bool) {
	return e.drawerKey, e.drawerOpen
}

func (e Expansion) clone() Expansion {
	e.inline = maps.Clone(e.inline)
	if e.inline == nil {
		e.inline = map[string]bool{}
	}
	return e
}

// Click applies a recognized row click.
func (e Expansion) Click(key string, mobile bool) (Expansion, []Effect) {
	if e.disabled || key == "" {
		return e, nil
	}
	next := e.clone()

	if next.mode == ExpandLateral {
		if next.lateralOpen && next.lateralKey == key {
			next.lateralOpen = false
			next.lateralKey = ""
			return next, []Effect{LateralToggled{Open: false}}
		}
		next.lateralOpen = true
		next.lateralKey = key
		return next, []Effect{LateralToggled{Open: true, RowKey: key}}
	}

	if mobile {
		next.drawerOpen = true
		next.drawerKey = key
		next.phase = Settled
		return next, nil
	}

	// A click during a migration finishes it first.
	next = next.settled()
	if next.inline[key] {
		delete(next.inline, key)
	} else {
		next.inline[key] = true
	}
	return next, nil
}

// CloseDrawer dismisses the drawer and clears its active row.
func (e Expansion) CloseDrawer() Expansion {
	next := e.clone()
	next.drawerOpen = false
	next.drawerKey = ""
	next.phase = Settled
	return next
}

// CloseLateral dismisses the lateral panel.
func (e Expansion) CloseLateral() (Expansion, []Effect) {
	if !e.lateralOpen {
		return e, nil
	}
	next := e.clone()
	next.lateralOpen = false
	next.lateralKey = ""
	return next, []Effect{LateralToggled{Open: false}}
}

// CollapseAll clears every inline row and closes the drawer.
func (e Expansion) CollapseAll() Expansion {
	next := e.CloseDrawer()
	next.inline = map[string]bool{}
	return next
}

// Resize migrates vertical expansion across the breakpoint. order lists the
// current row keys in display order and decides which of several inline
// rows moves into the drawer. Lateral selection is unaffected.
func (e Expansion) Resize(mobile bool, order []string) (Expansion, []Effect) {
	if e.disabled || e.mode != ExpandVertical {
		return e, nil
	}
	next := e.clone()

	if !mobile {
		if !next.drawerOpen {
			return next, nil
		}
		next.inline[next.drawerKey] = true
		next.phase = Migrating
		return next, []Effect{SettleRequested{}}
	}

	// Going narrow: inline rows collapse into the drawer.
	first := ""
	for _, k := range order {
		if next.inline[k] {
			first = k
			break
		}
	}
	if first == "" {
		for k := range next.inline {
			if first == "" || k < first {
				first = k
			}
		}
	}
	next.inline = map[string]bool{}
	next.phase = Settled
	if first != "" {
		next.drawerOpen = true
		next.drawerKey = first
	}
	return next, nil
}

// Settle completes a migration by closing the drawer. Outside a migration
// it is a no-op.
func (e Expansion) Settle() Expansion {
	if e.phase != Migrating {
		return e
	}
	return e.clone().settled()
}

func (e Expansion) settled() Expansion {
	if e.phase == Migrating {
		e.drawerOpen = false
		e.drawerKey = ""
		e.phase = Settled
	}
	return e
}

// Reconcile drops state for rows that no longer exist after a data
// refresh. The lateral selection survives when its key is still present.
func (e Expansion) Reconcile(present func(key string) bool) (Expansion, []Effect) {
	next := e.clone()
	var effects []Effect
	for k := range next.inline {
		if !present(k) {
			delete(next.inline, k)
		}
	}
	if next.drawerOpen && !present(next.drawerKey) {
		next.drawerOpen = false
		next.drawerKey = ""
		next.phase = Settled
	}
	if next.lateralOpen && !present(next.lateralKey) {
		next.lateralOpen = false
		next.lateralKey = ""
		effects = append(effects, LateralToggled{Open: false})
	}
	return next, effects
}
