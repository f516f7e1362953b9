package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"

	"salesdesk/internal/backend"
	"salesdesk/internal/config"
	"salesdesk/internal/datatable"
	"salesdesk/internal/logging"
	"salesdesk/internal/records"
)

// Source is the backend the console reads from. *backend.Client
// implements it.
type Source interface {
	Reservations(ctx context.Context, q backend.Query) (records.Page[records.Reservation], error)
	Contracts(ctx context.Context, q backend.Query) (records.Page[records.PendingContract], error)
	Payments(ctx context.Context, q backend.Query) (records.Page[records.Payment], error)
	Credit(ctx context.Context, q backend.Query) (records.Page[records.CreditCase], error)
	PaymentHistory(ctx context.Context, paymentID string) ([]records.PaymentEvent, error)
	SetReservationStatus(ctx context.Context, id string, status records.ReservationStatus) (records.Reservation, error)
}

// Banks offered by the credit bank facet.
var creditBanks = []string{"Banco Andino", "Caja Sur", "Crédito Norte"}

const dateLayout = "2006-01-02"

// statusChangedMsg reports the outcome of a reservation status change.
type statusChangedMsg struct {
	id     string
	status records.ReservationStatus
	err    error
}

// openHistoryMsg asks the model to open the history dialog for a payment.
type openHistoryMsg struct{ payment records.Payment }

// env carries what the collection builders share. Renderers read styles
// and md at call time so theme reloads reach them.
type env struct {
	cfg     config.Config
	source  Source
	styles  *Styles
	md      *markdown
	logs    logging.LoggerProvider
	timeout time.Duration
}

func (e *env) tableConfig(name string) (mode datatable.ExpansionMode, pageSize int) {
	cc := e.cfg.Collection(name)
	mode = datatable.ExpandVertical
	if cc.Expansion == "lateral" {
		mode = datatable.ExpandLateral
	}
	return mode, cc.PageSize
}

func facetOptions(opts []records.Option) []datatable.FacetOption {
	out := make([]datatable.FacetOption, len(opts))
	for i, o := range opts {
		out[i] = datatable.FacetOption{Value: o.Value, Label: o.Label, Icon: o.Icon}
	}
	return out
}

func labelled(icon, label string) string {
	if icon == "" {
		return label
	}
	return icon + " " + label
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// renderFields lays out label/value pairs, truncating values to width.
func (e *env) renderFields(width int, pairs ...string) string {
	labelWidth := 0
	for i := 0; i < len(pairs); i += 2 {
		labelWidth = max(labelWidth, lipgloss.Width(pairs[i]))
	}
	label := e.styles.SubtitleStyle().Width(labelWidth + 2)
	value := e.styles.InfoStyle()
	var lines []string
	for i := 0; i+1 < len(pairs); i += 2 {
		v := ansi.Truncate(pairs[i+1], max(width-labelWidth-2, 1), "…")
		lines = append(lines, label.Render(pairs[i])+value.Render(v))
	}
	return strings.Join(lines, "\n")
}

// renderNotes renders a markdown notes field below a details block.
func (e *env) renderNotes(details, notes string, width int) string {
	rendered := e.md.Render(notes, width)
	if rendered == "" {
		return details
	}
	return details + "\n\n" + e.styles.AccentStyle().Render("Notes") + "\n" + rendered
}

func (e *env) reservationsPane() *pane[records.Reservation] {
	const name = backend.Reservations
	mode, size := e.tableConfig(name)
	src := e.source
	setStatus := func(status records.ReservationStatus) func(records.Reservation) tea.Cmd {
		return func(r records.Reservation) tea.Cmd {
			timeout := e.timeout
			return func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), timeout)
				defer cancel()
				_, err := src.SetReservationStatus(ctx, r.ID, status)
				return statusChangedMsg{id: r.ID, status: status, err: err}
			}
		}
	}

	return newPane(paneConfig[records.Reservation]{
		name:    name,
		title:   "Reservations",
		remote:  true,
		load:    src.Reservations,
		timeout: e.timeout,
		logger:  e.logs.For("table." + name),
		table: datatable.Config[records.Reservation]{
			RowKey: records.Reservation.Key,
			Columns: []datatable.Column[records.Reservation]{
				{Key: "id", Header: "ID", Value: func(r records.Reservation) any { return r.ID }, Sortable: true, Pin: datatable.PinLeft},
				{Key: "client", Header: "Client", Value: func(r records.Reservation) any { return r.Client }, Sortable: true},
				{Key: "project", Header: "Project", Value: func(r records.Reservation) any { return r.Project }, Sortable: true},
				{Key: "unit", Header: "Unit", Value: func(r records.Reservation) any { return r.Unit }},
				{Key: "agent", Header: "Agent", Value: func(r records.Reservation) any { return r.Agent }, Sortable: true},
				{
					Key: "status", Header: "Status", Sortable: true,
					Value: func(r records.Reservation) any { return string(r.Status) },
					Cell:  func(r records.Reservation) string { return labelled(r.Status.Icon(), r.Status.String()) },
				},
				{
					Key: "price", Header: "Price", Sortable: true,
					Value: func(r records.Reservation) any { return int64(r.Price) },
					Cell:  func(r records.Reservation) string { return r.Price.String() },
				},
				{Key: "expires", Header: "Expires", Value: func(r records.Reservation) any { return date(r.ExpiresAt) }, Sortable: true},
			},
			FacetedFilters: []datatable.FacetedFilter{
				{ColumnKey: "status", Title: "Status", Options: facetOptions(records.ReservationStatuses()), Commit: datatable.CommitAll},
			},
			ExpansionMode: mode,
			RenderLateralContent: func(r records.Reservation, width int) string {
				return e.renderReservation(r, width)
			},
			RenderExpandedRow: func(r records.Reservation, width int) string {
				return e.renderReservation(r, width)
			},
			LateralPanelSize: e.cfg.Table.LateralPanelSize,
			PageSize:         size,
			Selectable:       true,
			RowActions: []datatable.RowAction[records.Reservation]{
				{Label: "Mark expiring", Run: setStatus(records.ReservationExpiring)},
				{Label: "Mark converted", Run: setStatus(records.ReservationConverted)},
				{Label: "Cancel reservation", Run: setStatus(records.ReservationCancelled)},
			},
			Breakpoint: e.cfg.Table.Breakpoint,
			EmptyText:  "No reservations match.",
		},
	})
}

func (e *env) renderReservation(r records.Reservation, width int) string {
	details := e.renderFields(width,
		"Reservation", r.ID,
		"Client", r.Client,
		"Unit", r.Project+" · "+r.Unit,
		"Agent", r.Agent,
		"Status", labelled(r.Status.Icon(), r.Status.String()),
		"Deposit", r.Deposit.String(),
		"Price", r.Price.String(),
		"Reserved", date(r.ReservedAt),
		"Expires", date(r.ExpiresAt),
	)
	return e.renderNotes(details, r.Notes, width)
}

func (e *env) paymentsPane() *pane[records.Payment] {
	const name = backend.Payments
	mode, size := e.tableConfig(name)

	return newPane(paneConfig[records.Payment]{
		name:    name,
		title:   "Payments",
		remote:  true,
		load:    e.source.Payments,
		timeout: e.timeout,
		logger:  e.logs.For("table." + name),
		table: datatable.Config[records.Payment]{
			RowKey: records.Payment.Key,
			Columns: []datatable.Column[records.Payment]{
				{Key: "id", Header: "ID", Value: func(p records.Payment) any { return p.ID }, Sortable: true, Pin: datatable.PinLeft},
				{Key: "reservation", Header: "Reservation", Value: func(p records.Payment) any { return p.ReservationID }, Sortable: true},
				{Key: "client", Header: "Client", Value: func(p records.Payment) any { return p.Client }, Sortable: true},
				{Key: "installment", Header: "#", Value: func(p records.Payment) any { return p.Installment }, Sortable: true},
				{
					Key: "amount", Header: "Amount", Sortable: true,
					Value: func(p records.Payment) any { return int64(p.Amount) },
					Cell:  func(p records.Payment) string { return p.Amount.String() },
				},
				{
					Key: "method", Header: "Method",
					Value: func(p records.Payment) any { return string(p.Method) },
					Cell:  func(p records.Payment) string { return p.Method.String() },
				},
				{
					Key: "status", Header: "Status", Sortable: true,
					Value: func(p records.Payment) any { return string(p.Status) },
					Cell:  func(p records.Payment) string { return labelled(p.Status.Icon(), p.Status.String()) },
				},
				{Key: "due", Header: "Due", Value: func(p records.Payment) any { return date(p.DueDate) }, Sortable: true},
			},
			FacetedFilters: []datatable.FacetedFilter{
				{ColumnKey: "status", Title: "Status", Options: facetOptions(records.PaymentStatuses()), Commit: datatable.CommitAll},
				{ColumnKey: "method", Title: "Method", Options: facetOptions(records.PaymentMethods()), Commit: datatable.CommitAll},
			},
			ExpansionMode: mode,
			RenderExpandedRow: func(p records.Payment, width int) string {
				return e.renderPayment(p, width)
			},
			RenderLateralContent: func(p records.Payment, width int) string {
				return e.renderPayment(p, width)
			},
			LateralPanelSize: e.cfg.Table.LateralPanelSize,
			PageSize:         size,
			Selectable:       true,
			RowActions: []datatable.RowAction[records.Payment]{
				{Label: "Show history", Run: func(p records.Payment) tea.Cmd {
					return func() tea.Msg { return openHistoryMsg{payment: p} }
				}},
			},
			ToolbarActions: func(h datatable.Handle[records.Payment]) string {
				return e.selectedTotal(h)
			},
			Breakpoint: e.cfg.Table.Breakpoint,
			EmptyText:  "No payments match.",
		},
	})
}

// selectedTotal sums the amounts of the selected rows on the current page.
func (e *env) selectedTotal(h datatable.Handle[records.Payment]) string {
	selected := h.SelectedKeys()
	if len(selected) == 0 {
		return ""
	}
	set := make(map[string]bool, len(selected))
	for _, k := range selected {
		set[k] = true
	}
	var sum records.Money
	for _, p := range h.VisibleRows() {
		if set[p.ID] {
			sum += p.Amount
		}
	}
	return e.styles.AccentStyle().Render(fmt.Sprintf("%d selected · %s", len(selected), sum))
}

func (e *env) renderPayment(p records.Payment, width int) string {
	paid := "not yet"
	if p.PaidAt != nil {
		paid = date(*p.PaidAt)
	}
	details := e.renderFields(width,
		"Payment", fmt.Sprintf("%s (installment %d)", p.ID, p.Installment),
		"Reservation", p.ReservationID,
		"Amount", p.Amount.String(),
		"Method", p.Method.String(),
		"Due", date(p.DueDate),
		"Paid", paid,
	)
	if len(p.History) == 0 {
		return details
	}
	var sb strings.Builder
	sb.WriteString(details)
	sb.WriteString("\n\n")
	sb.WriteString(e.styles.AccentStyle().Render("History"))
	for _, ev := range p.History {
		line := fmt.Sprintf("%s  %s", date(ev.At), labelled(ev.Status.Icon(), ev.Status.String()))
		if ev.Note != "" {
			line += ": " + ev.Note
		}
		sb.WriteString("\n")
		sb.WriteString(wordwrap.String(line, max(width, 10)))
	}
	return sb.String()
}

func (e *env) contractsPane() *pane[records.PendingContract] {
	const name = backend.Contracts
	mode, size := e.tableConfig(name)

	return newPane(paneConfig[records.PendingContract]{
		name:    name,
		title:   "Contracts",
		load:    e.source.Contracts,
		timeout: e.timeout,
		logger:  e.logs.For("table." + name),
		table: datatable.Config[records.PendingContract]{
			RowKey: records.PendingContract.Key,
			Columns: []datatable.Column[records.PendingContract]{
				{Key: "id", Header: "ID", Value: func(c records.PendingContract) any { return c.ID }, Sortable: true, Pin: datatable.PinLeft},
				{Key: "reservation", Header: "Reservation", Value: func(c records.PendingContract) any { return c.ReservationID }, Sortable: true},
				{Key: "client", Header: "Client", Value: func(c records.PendingContract) any { return c.Client }, Sortable: true, Filterable: true},
				{Key: "unit", Header: "Unit", Value: func(c records.PendingContract) any { return c.Unit }},
				{
					Key: "stage", Header: "Stage", Sortable: true,
					Value: func(c records.PendingContract) any { return string(c.Stage) },
					Cell:  func(c records.PendingContract) string { return labelled(c.Stage.Icon(), c.Stage.String()) },
				},
				{Key: "due", Header: "Due", Value: func(c records.PendingContract) any { return date(c.DueDate) }, Sortable: true},
				{Key: "missing", Header: "Missing", Value: func(c records.PendingContract) any { return len(c.Missing) }, Sortable: true},
				{
					Key: "signed", Header: "Signed", Sortable: true,
					Value: func(c records.PendingContract) any { return c.Signed },
					Cell: func(c records.PendingContract) string {
						if c.Signed {
							return "✓ yes"
						}
						return "· no"
					},
				},
			},
			FacetedFilters: []datatable.FacetedFilter{
				{ColumnKey: "stage", Title: "Stage", Options: facetOptions(records.ContractStages()), Commit: datatable.CommitAll},
				{ColumnKey: "signed", Title: "Signed", Options: []datatable.FacetOption{
					{Value: "true", Label: "Signed", Icon: "✓"},
					{Value: "false", Label: "Unsigned", Icon: "·"},
				}, Commit: datatable.CommitBoolScalar},
			},
			ExpansionMode: mode,
			RenderExpandedRow: func(c records.PendingContract, width int) string {
				return e.renderContract(c, width)
			},
			RenderLateralContent: func(c records.PendingContract, width int) string {
				return e.renderContract(c, width)
			},
			LateralPanelSize: e.cfg.Table.LateralPanelSize,
			PageSize:         size,
			Breakpoint:       e.cfg.Table.Breakpoint,
			EmptyText:        "No pending contracts.",
		},
	})
}

func (e *env) renderContract(c records.PendingContract, width int) string {
	missing := "nothing"
	if len(c.Missing) > 0 {
		missing = strings.Join(c.Missing, ", ")
	}
	return e.renderFields(width,
		"Contract", c.ID,
		"Reservation", c.ReservationID,
		"Client", c.Client,
		"Stage", labelled(c.Stage.Icon(), c.Stage.String()),
		"Due", date(c.DueDate),
		"Missing", missing,
	)
}

func (e *env) creditPane() *pane[records.CreditCase] {
	const name = backend.Credit
	mode, size := e.tableConfig(name)
	banks := make([]datatable.FacetOption, len(creditBanks))
	for i, b := range creditBanks {
		banks[i] = datatable.FacetOption{Value: b, Label: b}
	}

	return newPane(paneConfig[records.CreditCase]{
		name:    name,
		title:   "Credit",
		load:    e.source.Credit,
		timeout: e.timeout,
		logger:  e.logs.For("table." + name),
		table: datatable.Config[records.CreditCase]{
			RowKey: records.CreditCase.Key,
			Columns: []datatable.Column[records.CreditCase]{
				{Key: "id", Header: "ID", Value: func(c records.CreditCase) any { return c.ID }, Sortable: true, Pin: datatable.PinLeft},
				{Key: "client", Header: "Client", Value: func(c records.CreditCase) any { return c.Client }, Sortable: true, Filterable: true},
				{Key: "bank", Header: "Bank", Value: func(c records.CreditCase) any { return c.Bank }, Sortable: true},
				{Key: "analyst", Header: "Analyst", Value: func(c records.CreditCase) any { return c.Analyst }},
				{
					Key: "amount", Header: "Amount", Sortable: true,
					Value: func(c records.CreditCase) any { return int64(c.Amount) },
					Cell:  func(c records.CreditCase) string { return c.Amount.String() },
				},
				{Key: "score", Header: "Score", Value: func(c records.CreditCase) any { return c.Score }, Sortable: true},
				{
					Key: "status", Header: "Status", Sortable: true,
					Value: func(c records.CreditCase) any { return string(c.Status) },
					Cell:  func(c records.CreditCase) string { return labelled(c.Status.Icon(), c.Status.String()) },
				},
				{Key: "opened", Header: "Opened", Value: func(c records.CreditCase) any { return date(c.OpenedAt) }, Sortable: true},
			},
			FacetedFilters: []datatable.FacetedFilter{
				{ColumnKey: "status", Title: "Status", Options: facetOptions(records.CreditStatuses()), Commit: datatable.CommitFirst},
				{ColumnKey: "bank", Title: "Bank", Options: banks, Commit: datatable.CommitAll},
			},
			ExpansionMode: mode,
			RenderLateralContent: func(c records.CreditCase, width int) string {
				return e.renderCredit(c, width)
			},
			RenderExpandedRow: func(c records.CreditCase, width int) string {
				return e.renderCredit(c, width)
			},
			LateralPanelSize: e.cfg.Table.LateralPanelSize,
			PageSize:         size,
			Breakpoint:       e.cfg.Table.Breakpoint,
			EmptyText:        "No credit cases.",
		},
	})
}

func (e *env) renderCredit(c records.CreditCase, width int) string {
	details := e.renderFields(width,
		"Case", c.ID,
		"Client", c.Client,
		"Bank", c.Bank,
		"Analyst", c.Analyst,
		"Amount", c.Amount.String(),
		"Score", fmt.Sprint(c.Score),
		"Status", labelled(c.Status.Icon(), c.Status.String()),
		"Opened", date(c.OpenedAt),
	)
	return e.renderNotes(details, c.Notes, width)
}
