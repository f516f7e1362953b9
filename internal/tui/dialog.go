package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"salesdesk/internal/backend"
	"salesdesk/internal/records"
)

// historyLoadedMsg carries a payment's audit trail.
type historyLoadedMsg struct {
	paymentID string
	events    []records.PaymentEvent
	err       error
}

// maxDialogWidth caps the centered dialog on wide terminals.
const maxDialogWidth = 72

// historyDialog shows one payment's history. Below the dialog breakpoint it
// fills the screen; above it, it is a centered box.
type historyDialog struct {
	payment    records.Payment
	events     []records.PaymentEvent
	loading    bool
	err        error
	fullscreen bool
	vp         viewport.Model
}

func newHistoryDialog(p records.Payment) *historyDialog {
	return &historyDialog{payment: p, loading: true, vp: viewport.New(0, 0)}
}

func loadHistory(src Source, paymentID string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		events, err := src.PaymentHistory(ctx, paymentID)
		return historyLoadedMsg{paymentID: paymentID, events: events, err: err}
	}
}

// resize fits the dialog to the terminal. The box chrome takes two columns
// of border and two of padding, plus a title, a rule and a hint line.
func (d *historyDialog) resize(width, height, breakpoint int) {
	d.fullscreen = width < breakpoint
	w, h := width, height
	if !d.fullscreen {
		w = min(width-4, maxDialogWidth)
		h = min(height-4, 20)
	}
	d.vp.Width = max(w-4, 10)
	d.vp.Height = max(h-5, 1)
}

func (d *historyDialog) setContent(s *Styles) {
	d.vp.SetContent(d.body(s, d.vp.Width))
}

func (d *historyDialog) body(s *Styles, width int) string {
	switch {
	case d.loading:
		return s.HelpStyle().Render("Loading history…")
	case d.err != nil:
		return s.ErrorStyle().Render(backend.StatusText(d.err))
	case len(d.events) == 0:
		return s.HelpStyle().Render("No history recorded.")
	}
	var lines []string
	for _, ev := range d.events {
		head := fmt.Sprintf("%s  %s", ev.At.Format("2006-01-02 15:04"), labelled(ev.Status.Icon(), ev.Status.String()))
		lines = append(lines, s.ToneStyle(paymentTone(ev.Status)).Render(head))
		if ev.Note != "" {
			note := wordwrap.String(ev.Note, max(width-2, 8))
			for _, l := range strings.Split(note, "\n") {
				lines = append(lines, "  "+s.InfoStyle().Render(l))
			}
		}
	}
	return strings.Join(lines, "\n")
}

func paymentTone(st records.PaymentStatus) string {
	switch st {
	case records.PaymentPaid:
		return "good"
	case records.PaymentOverdue:
		return "bad"
	case records.PaymentRefunded:
		return "muted"
	default:
		return "warn"
	}
}

func (d *historyDialog) view(s *Styles, width, height int) string {
	p := d.payment
	title := s.TitleStyle().Render("Payment " + p.ID)
	sub := s.SubtitleStyle().Render(fmt.Sprintf("%s · %s · %s", p.Client, p.Amount, p.Status))
	rule := s.SeparatorStyle().Render(strings.Repeat("─", d.vp.Width))
	hint := s.HelpStyle().Render("↑/↓ scroll • esc close")
	inner := lipgloss.JoinVertical(lipgloss.Left, title, sub, rule, d.vp.View(), hint)

	if d.fullscreen {
		return lipgloss.NewStyle().Padding(0, 2).Width(width).Height(height).MaxHeight(height).Render(inner)
	}
	box := s.BoxStyle().Width(d.vp.Width + 2).Render(inner)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// update handles keys while the dialog is open. It reports whether the
// dialog should close.
func (d *historyDialog) update(msg tea.KeyMsg) (closed bool, cmd tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "H":
		return true, nil
	}
	d.vp, cmd = d.vp.Update(msg)
	return false, cmd
}
