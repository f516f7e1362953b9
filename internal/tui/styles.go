package tui

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"

	"salesdesk/internal/datatable"
)

type Styles struct {
	flavor catppuccin.Flavor
	name   string
}

func NewStyles(themeName string) *Styles {
	return &Styles{flavor: flavorFromName(themeName), name: themeName}
}

func flavorFromName(name string) catppuccin.Flavor {
	switch name {
	case "latte":
		return catppuccin.Latte
	case "frappe":
		return catppuccin.Frappe
	case "macchiato":
		return catppuccin.Macchiato
	case "mocha":
		return catppuccin.Mocha
	default:
		return catppuccin.Mocha
	}
}

// Table returns the datatable styles for the same flavor.
func (s *Styles) Table() datatable.Styles {
	return datatable.NewStyles(s.flavor)
}

// MarkdownStyle names the glamour style matching the flavor's background.
func (s *Styles) MarkdownStyle() string {
	if s.name == "latte" {
		return "light"
	}
	return "dark"
}

func (s *Styles) color(c catppuccin.Color) lipgloss.Color {
	return lipgloss.Color(c.Hex)
}

func (s *Styles) TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(s.color(s.flavor.Mauve()))
}

func (s *Styles) SubtitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Subtext0()))
}

func (s *Styles) HelpStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Overlay0()))
}

func (s *Styles) BoxStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.color(s.flavor.Surface1())).
		Padding(0, 1)
}

func (s *Styles) InfoStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Text()))
}

func (s *Styles) AccentStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Teal()))
}

func (s *Styles) ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Red())).
		Bold(true)
}

func (s *Styles) SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Green()))
}

func (s *Styles) InfoStatusStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Subtext1()))
}

func (s *Styles) TabStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Overlay1())).
		Padding(0, 1)
}

func (s *Styles) ActiveTabStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(s.color(s.flavor.Base())).
		Background(s.color(s.flavor.Mauve())).
		Padding(0, 1)
}

func (s *Styles) SeparatorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Surface1()))
}

func (s *Styles) LiveStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.color(s.flavor.Green()))
}

func (s *Styles) OfflineStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.color(s.flavor.Peach()))
}

// Log level badges.

func (s *Styles) LogTimestampStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.color(s.flavor.Overlay0()))
}

func (s *Styles) LogDebugStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.color(s.flavor.Overlay1()))
}

func (s *Styles) LogInfoStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.color(s.flavor.Blue()))
}

func (s *Styles) LogWarnStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.color(s.flavor.Yellow()))
}

func (s *Styles) LogErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.color(s.flavor.Red()))
}

func (s *Styles) LogScopeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.color(s.flavor.Lavender()))
}

// Status value colors, keyed by the semantic tone of the value.

func (s *Styles) ToneStyle(tone string) lipgloss.Style {
	var c catppuccin.Color
	switch tone {
	case "good":
		c = s.flavor.Green()
	case "warn":
		c = s.flavor.Yellow()
	case "bad":
		c = s.flavor.Red()
	case "muted":
		c = s.flavor.Overlay1()
	default:
		c = s.flavor.Blue()
	}
	return lipgloss.NewStyle().Foreground(s.color(c))
}
