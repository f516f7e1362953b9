// pattern: Functional Core

package datatable

// Breakpoints in terminal cells. Tables and dialogs use different
// thresholds because a dialog's content box is narrower than the screen.
const (
	TableBreakpoint  = 100
	DialogBreakpoint = 72
)

// Lateral panel share of the width, in percent.
const (
	DefaultLateralPanelSize = 40
	minLateralPanelSize     = 20
	maxLateralPanelSize     = 80
)

// Viewport tracks the observed terminal size against one breakpoint.
// Before the first observation the table renders as desktop.
type Viewport struct {
	Breakpoint int
	Width      int
	Height     int
	observed   bool
}

// NewViewport returns an unobserved viewport. A non-positive breakpoint
// falls back to TableBreakpoint.
func NewViewport(breakpoint int) Viewport {
	if breakpoint <= 0 {
		breakpoint = TableBreakpoint
	}
	return Viewport{Breakpoint: breakpoint}
}

// IsMobile reports whether the last observed width is below the breakpoint.
func (v Viewport) IsMobile() bool {
	return v.observed && v.Width < v.Breakpoint
}

// Observe records a new size and reports whether the mobile/desktop
// classification changed.
func (v Viewport) Observe(width, height int) (Viewport, bool) {
	was := v.IsMobile()
	v.Width = width
	v.Height = height
	v.observed = true
	return v, v.IsMobile() != was
}

// WithBreakpoint changes the threshold and reports whether that flipped the
// classification.
func (v Viewport) WithBreakpoint(bp int) (Viewport, bool) {
	if bp <= 0 {
		bp = TableBreakpoint
	}
	was := v.IsMobile()
	v.Breakpoint = bp
	return v, v.IsMobile() != was
}

// LateralWidth returns the side panel width for a total width and a
// percentage, clamped to a usable range.
func LateralWidth(total, percent int) int {
	if percent <= 0 {
		percent = DefaultLateralPanelSize
	}
	percent = min(max(percent, minLateralPanelSize), maxLateralPanelSize)
	return total * percent / 100
}
