package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// markdown renders note fields with glamour. Renderers are cached per
// wrap width and dropped when the theme changes.
type markdown struct {
	mu        sync.Mutex
	style     string
	renderers map[int]*glamour.TermRenderer
}

func newMarkdown(style string) *markdown {
	return &markdown{style: style, renderers: map[int]*glamour.TermRenderer{}}
}

func (md *markdown) SetStyle(style string) {
	md.mu.Lock()
	defer md.mu.Unlock()
	if style == md.style {
		return
	}
	md.style = style
	md.renderers = map[int]*glamour.TermRenderer{}
}

// Render returns src rendered for width cells, or src unchanged if glamour
// fails.
func (md *markdown) Render(src string, width int) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	md.mu.Lock()
	r, ok := md.renderers[width]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(md.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			md.mu.Unlock()
			return src
		}
		md.renderers[width] = r
	}
	md.mu.Unlock()

	out, err := r.Render(src)
	if err != nil {
		return src
	}
	return strings.Trim(out, "\n")
}
