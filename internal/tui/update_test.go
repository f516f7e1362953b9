package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"

	"salesdesk/internal/backend"
	"salesdesk/internal/config"
	"salesdesk/internal/events"
	"salesdesk/internal/records"
)

func TestModel_InitLoadsEveryCollection(t *testing.T) {
	m, _ := newTestModel(t)

	got := map[string]int{}
	for _, tb := range m.tabs {
		got[tb.Name()] = tb.Total()
	}
	want := map[string]int{"reservations": 32, "contracts": 18, "payments": 45, "credit": 14}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("totals mismatch (-want +got):\n%s", diff)
	}

	// Server paged tables hold one page; local ones hold everything.
	if n := len(m.reservations.Handle().VisibleRows()); n != 10 {
		t.Errorf("reservations page rows = %d, want 10", n)
	}
	if n := len(m.payments.Handle().VisibleRows()); n != 20 {
		t.Errorf("payments page rows = %d, want 20", n)
	}
	if m.busy() {
		t.Error("model still busy after settling")
	}
}

func TestModel_TabOrderFollowsCollections(t *testing.T) {
	m, _ := newTestModel(t)

	var names []string
	for _, tb := range m.tabs {
		names = append(names, tb.Name())
	}
	if diff := cmp.Diff(config.Collections, names); diff != "" {
		t.Errorf("tab order mismatch (-want +got):\n%s", diff)
	}
}

func TestModel_TabSwitching(t *testing.T) {
	tests := []struct {
		name  string
		start int
		key   tea.KeyMsg
		want  string
	}{
		{"tab moves right", 0, tea.KeyMsg{Type: tea.KeyTab}, "contracts"},
		{"tab wraps", 3, tea.KeyMsg{Type: tea.KeyTab}, "reservations"},
		{"shift+tab wraps left", 0, tea.KeyMsg{Type: tea.KeyShiftTab}, "credit"},
		{"digit jumps", 0, keyRunes("3"), "payments"},
		{"digit jumps back", 3, keyRunes("1"), "reservations"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(t)
			m.switchTab(tt.start)

			updated, _ := m.Update(tt.key)
			m = updated.(Model)

			if got := m.ActiveTab(); got != tt.want {
				t.Errorf("ActiveTab() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestModel_LogPanelToggle(t *testing.T) {
	m, _ := newTestModel(t)

	updated, _ := m.Update(keyRunes("L"))
	m = updated.(Model)
	if !m.logPanelOpen || !m.logReady {
		t.Fatalf("logPanelOpen = %v, logReady = %v, want both true", m.logPanelOpen, m.logReady)
	}
	layout := ComputeLayout(m.width, m.height, true)
	if m.logViewport.Height != layout.Logs.Height {
		t.Errorf("log viewport height = %d, want %d", m.logViewport.Height, layout.Logs.Height)
	}

	updated, _ = m.Update(keyRunes("L"))
	if updated.(Model).logPanelOpen {
		t.Error("second L should close the log panel")
	}
}

func TestModel_HelpToggle(t *testing.T) {
	m, _ := newTestModel(t)

	updated, _ := m.Update(keyRunes("?"))
	m = updated.(Model)
	if !m.showHelp {
		t.Fatal("? should open help")
	}
	// Keys other than ? and esc are swallowed while help is up.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	if m.ActiveTab() != "reservations" {
		t.Errorf("tab switched under help to %q", m.ActiveTab())
	}
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	if updated.(Model).showHelp {
		t.Error("esc should close help")
	}
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	if cmd == nil {
		t.Fatal("ctrl+d should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+d command is not tea.Quit")
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(Model)
	if !strings.Contains(m.statusMessage, "ctrl+c ctrl+c") {
		t.Errorf("first ctrl+c status = %q, want quit hint", m.statusMessage)
	}
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("second ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("second ctrl+c command is not tea.Quit")
	}
}

func TestModel_EscClearsError(t *testing.T) {
	m, _ := newTestModel(t)
	m.setError("reservations: backend unavailable", errors.New("boom"))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	m = updated.(Model)

	if m.statusLevel != StatusInfo || m.statusMessage != "" || m.err != nil {
		t.Errorf("status after esc = %v %q %v", m.statusLevel, m.statusMessage, m.err)
	}
}

func TestModel_ClearStatusOnlyMatchingSeq(t *testing.T) {
	m, _ := newTestModel(t)
	m.setStatus(StatusSuccess, "first")
	stale := m.statusSeq
	m.setStatus(StatusSuccess, "second")

	updated, _ := m.Update(clearStatusMsg{seq: stale})
	m = updated.(Model)
	if m.statusMessage != "second" {
		t.Errorf("stale clear removed %q", m.statusMessage)
	}
	updated, _ = m.Update(clearStatusMsg{seq: m.statusSeq})
	if msg := updated.(Model).statusMessage; msg != "" {
		t.Errorf("statusMessage = %q, want cleared", msg)
	}
}

func TestModel_DataChangedRefreshesCollection(t *testing.T) {
	m, env := newTestModel(t)

	if _, err := env.store.SetReservationStatus("R-1001", records.ReservationConverted); err != nil {
		t.Fatalf("SetReservationStatus() error = %v", err)
	}
	m = send(t, m, events.DataChangedMsg{Collection: "reservations", IDs: []string{"R-1001"}})

	r, ok := m.reservations.Row("R-1001")
	if !ok {
		t.Fatal("R-1001 missing after refresh")
	}
	if r.Status != records.ReservationConverted {
		t.Errorf("R-1001 status = %q, want converted", r.Status)
	}
}

func TestModel_DataChangedKeepsSelection(t *testing.T) {
	m, env := newTestModel(t)

	// Open R-1001 in the lateral panel, then change it server side.
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if key, open := m.reservations.Expansion().Lateral(); !open || key != "R-1001" {
		t.Fatalf("lateral = %q %v, want R-1001 open", key, open)
	}
	if _, err := env.store.SetReservationStatus("R-1001", records.ReservationActive); err != nil {
		t.Fatalf("SetReservationStatus() error = %v", err)
	}
	m = send(t, m, events.DataChangedMsg{Collection: "reservations"})

	if key, open := m.reservations.Expansion().Lateral(); !open || key != "R-1001" {
		t.Errorf("lateral after refresh = %q %v, want R-1001 open", key, open)
	}
}

func TestModel_DataChangedUnknownCollectionIgnored(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(events.DataChangedMsg{Collection: "leases"})
	if cmd != nil {
		t.Error("unknown collection should not trigger a refresh")
	}
}

func TestModel_RowActionChangesReservationStatus(t *testing.T) {
	m, _ := newTestModel(t)

	// a opens the row menu on R-1001, down picks "Mark converted".
	m = send(t, m, keyRunes("a"))
	m = send(t, m, keyRunes("j"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.statusLevel != StatusSuccess {
		t.Fatalf("status = %v %q, want success", m.statusLevel, m.statusMessage)
	}
	if r, _ := m.reservations.Row("R-1001"); r.Status != records.ReservationConverted {
		t.Errorf("table row status = %q, want converted", r.Status)
	}
}

func TestModel_StatusChangeFailure(t *testing.T) {
	m, _ := newTestModel(t)

	err := &backend.APIError{Status: 404, Message: "reservation R-9 not found"}
	updated, _ := m.Update(statusChangedMsg{id: "R-9", status: records.ReservationCancelled, err: err})
	m = updated.(Model)

	if m.statusLevel != StatusError {
		t.Fatalf("statusLevel = %v, want error", m.statusLevel)
	}
	if m.statusMessage != "R-9: not found" {
		t.Errorf("statusMessage = %q", m.statusMessage)
	}
}

func TestModel_LoadFailedSetsError(t *testing.T) {
	m, _ := newTestModel(t)

	err := &backend.APIError{Status: 401, Message: "missing or invalid token"}
	updated, _ := m.Update(loadFailedMsg{collection: "payments", err: err})
	m = updated.(Model)

	if m.statusLevel != StatusError {
		t.Fatalf("statusLevel = %v, want error", m.statusLevel)
	}
	if !strings.Contains(m.statusMessage, "not authorized") {
		t.Errorf("statusMessage = %q, want auth hint", m.statusMessage)
	}
}

func TestModel_CopyRowKey(t *testing.T) {
	m, env := newTestModel(t)

	m = send(t, m, keyRunes("y"))

	if diff := cmp.Diff([]string{"R-1001"}, env.copiedTexts()); diff != "" {
		t.Errorf("copied mismatch (-want +got):\n%s", diff)
	}
	if m.statusMessage != "copied R-1001" {
		t.Errorf("statusMessage = %q", m.statusMessage)
	}
}

func TestModel_FeedStatus(t *testing.T) {
	m, _ := newTestModel(t)
	if strings.Contains(m.renderHeader(140), "live") {
		t.Error("header shows live before any feed status")
	}

	updated, _ := m.Update(events.FeedStatusMsg{Connected: true})
	m = updated.(Model)
	if !strings.Contains(m.renderHeader(140), "● live") {
		t.Errorf("header = %q, want live indicator", m.renderHeader(140))
	}

	updated, _ = m.Update(events.FeedStatusMsg{Connected: false, Err: errors.New("dial failed")})
	m = updated.(Model)
	if !strings.Contains(m.renderHeader(140), "offline") {
		t.Errorf("header = %q, want offline indicator", m.renderHeader(140))
	}
}

func TestModel_ConfigReload(t *testing.T) {
	m, _ := newTestModel(t)
	var levels []string
	m.setLevel = func(l string) error {
		levels = append(levels, l)
		return nil
	}

	cfg := m.cfg
	cfg.Theme = "latte"
	cfg.LogLevel = "debug"
	cfg.Table.Breakpoint = 200
	m = send(t, m, events.ConfigReloadedMsg{Config: cfg})

	if m.styles.MarkdownStyle() != "light" {
		t.Error("theme not applied")
	}
	if diff := cmp.Diff([]string{"debug"}, levels); diff != "" {
		t.Errorf("levels mismatch (-want +got):\n%s", diff)
	}
	// 140 columns is now below the breakpoint.
	if !m.reservations.Handle().IsMobile() {
		t.Error("breakpoint not applied to tables")
	}
}

func TestModel_ConfigReloadErrorKeepsConfig(t *testing.T) {
	m, _ := newTestModel(t)
	before := m.cfg.Theme

	updated, _ := m.Update(events.ConfigReloadedMsg{Config: config.Config{Theme: "latte"}, Err: errors.New("theme \"neon\"")})
	m = updated.(Model)

	if m.cfg.Theme != before {
		t.Errorf("theme = %q, want %q kept", m.cfg.Theme, before)
	}
	if m.statusLevel != StatusError {
		t.Errorf("statusLevel = %v, want error", m.statusLevel)
	}
}

func TestModel_SearchCapturesAppKeys(t *testing.T) {
	m, _ := newTestModel(t)

	m = send(t, m, keyRunes("/"))
	// "r" and "2" go to the search box, not to refresh and tab switching.
	m = send(t, m, keyRunes("2"))
	if m.ActiveTab() != "reservations" {
		t.Errorf("ActiveTab() = %q while searching", m.ActiveTab())
	}
	if !m.activeTab().Capturing() {
		t.Error("search box should capture keys")
	}
}

func TestModel_RemoteSearchRequeries(t *testing.T) {
	m, _ := newTestModel(t)

	m = send(t, m, keyRunes("n"))
	if got := m.reservations.Pagination().PageIndex; got != 1 {
		t.Fatalf("PageIndex = %d, want 1", got)
	}

	m = send(t, m, keyRunes("/"))
	for _, r := range "Ana Torres" {
		m = send(t, m, keyRunes(string(r)))
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if got := m.reservations.Pagination().PageIndex; got != 0 {
		t.Errorf("PageIndex after search = %d, want 0", got)
	}
	rows := m.reservations.Handle().VisibleRows()
	if len(rows) == 0 {
		t.Fatal("search returned no rows")
	}
	for _, r := range rows {
		if r.Client != "Ana Torres" {
			t.Errorf("row %s client = %q, want Ana Torres", r.ID, r.Client)
		}
	}
	if m.reservations.Total() != len(rows) {
		t.Errorf("Total() = %d, want %d", m.reservations.Total(), len(rows))
	}
}

func TestModel_MouseClickOnTabBar(t *testing.T) {
	m, _ := newTestModel(t)

	// Find a column inside the third tab's label.
	x := 0
	for i := 0; i < 2; i++ {
		x += lipgloss.Width(m.renderTab(i)) + tabGap
	}
	updated, _ := m.Update(tea.MouseMsg{X: x + 1, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if got := updated.(Model).ActiveTab(); got != "payments" {
		t.Errorf("ActiveTab() = %q, want payments", got)
	}
}
