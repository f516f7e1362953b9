// pattern: Functional Core

package tui

// Region defines a rectangular area within the terminal.
type Region struct {
	X      int // Left position (0-indexed)
	Y      int // Top position (0-indexed)
	Width  int // Width in cells
	Height int // Height in lines
}

// Layout holds computed regions for all UI components.
type Layout struct {
	Header    Region // Title and feed indicator (1 line)
	Tabs      Region // Collection tabs (1 line)
	Content   Region // Active table
	Separator Region // Rule above the log panel (1 line when open)
	Logs      Region // Log panel when open
	StatusBar Region // Status bar (1 line)
}

// Fixed heights for chrome elements
const (
	headerHeight    = 1
	tabsHeight      = 1
	statusBarHeight = 1
	separatorHeight = 1
	minContent      = 4
)

// ComputeLayout calculates regions based on terminal dimensions. When the
// log panel is open it takes a third of the space below the tabs.
func ComputeLayout(width, height int, logPanelOpen bool) Layout {
	available := max(height-headerHeight-tabsHeight-statusBarHeight, minContent)

	contentHeight := available
	var logsHeight int
	if logPanelOpen {
		logsHeight = max(available/3, 3)
		contentHeight = max(available-logsHeight-separatorHeight, minContent)
	}

	y := 0
	header := Region{X: 0, Y: y, Width: width, Height: headerHeight}
	y += headerHeight

	tabs := Region{X: 0, Y: y, Width: width, Height: tabsHeight}
	y += tabsHeight

	content := Region{X: 0, Y: y, Width: width, Height: contentHeight}
	y += contentHeight

	var separator, logs Region
	if logPanelOpen {
		separator = Region{X: 0, Y: y, Width: width, Height: separatorHeight}
		y += separatorHeight
		logs = Region{X: 0, Y: y, Width: width, Height: logsHeight}
		y += logsHeight
	}

	return Layout{
		Header:    header,
		Tabs:      tabs,
		Content:   content,
		Separator: separator,
		Logs:      logs,
		StatusBar: Region{X: 0, Y: y, Width: width, Height: statusBarHeight},
	}
}
