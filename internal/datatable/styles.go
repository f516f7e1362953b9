package datatable

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the table's lipgloss styles.
type Styles struct {
	Header        lipgloss.Style
	HeaderActive  lipgloss.Style
	Cell          lipgloss.Style
	Cursor        lipgloss.Style
	Selected      lipgloss.Style
	Pinned        lipgloss.Style
	Detail        lipgloss.Style
	Empty         lipgloss.Style
	Footer        lipgloss.Style
	Chip          lipgloss.Style
	ChipActive    lipgloss.Style
	Overlay       lipgloss.Style
	OverlayCursor lipgloss.Style
	Panel         lipgloss.Style
	PanelTitle    lipgloss.Style
	Drawer        lipgloss.Style
}

// NewStyles builds styles from a catppuccin flavor.
func NewStyles(f catppuccin.Flavor) Styles {
	c := func(col catppuccin.Color) lipgloss.Color { return lipgloss.Color(col.Hex) }
	return Styles{
		Header:        lipgloss.NewStyle().Bold(true).Foreground(c(f.Subtext1())),
		HeaderActive:  lipgloss.NewStyle().Bold(true).Underline(true).Foreground(c(f.Mauve())),
		Cell:          lipgloss.NewStyle().Foreground(c(f.Text())),
		Cursor:        lipgloss.NewStyle().Bold(true).Foreground(c(f.Mauve())),
		Selected:      lipgloss.NewStyle().Foreground(c(f.Green())),
		Pinned:        lipgloss.NewStyle().Foreground(c(f.Lavender())),
		Detail:        lipgloss.NewStyle().Foreground(c(f.Subtext0())).PaddingLeft(4),
		Empty:         lipgloss.NewStyle().Italic(true).Foreground(c(f.Overlay1())),
		Footer:        lipgloss.NewStyle().Foreground(c(f.Overlay1())),
		Chip:          lipgloss.NewStyle().Foreground(c(f.Subtext0())),
		ChipActive:    lipgloss.NewStyle().Foreground(c(f.Teal())),
		Overlay:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(c(f.Surface2())).Padding(0, 1),
		OverlayCursor: lipgloss.NewStyle().Foreground(c(f.Mauve())),
		Panel:         lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(c(f.Surface1())).PaddingLeft(1),
		PanelTitle:    lipgloss.NewStyle().Bold(true).Foreground(c(f.Mauve())),
		Drawer:        lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true, false, false, false).BorderForeground(c(f.Surface1())),
	}
}

// DefaultStyles uses the Mocha flavor.
func DefaultStyles() Styles {
	return NewStyles(catppuccin.Mocha)
}
