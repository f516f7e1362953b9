//go:build e2e
// +build e2e

package e2e

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"salesdesk/internal/backend"
	"salesdesk/internal/cli"
	"salesdesk/internal/config"
	"salesdesk/internal/events"
	"salesdesk/internal/instance"
	"salesdesk/internal/logging"
	"salesdesk/internal/records"
	"salesdesk/internal/tui"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "salesdesk-e2e")
	if err != nil {
		fmt.Fprintf(os.Stderr, "temp dir: %v\n", err)
		os.Exit(1)
	}
	binary = filepath.Join(dir, "salesdesk")

	build := exec.Command("go", "build", "-o", binary, "salesdesk")
	build.Stdout = os.Stderr
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "building salesdesk: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestListAgainstDemoServer(t *testing.T) {
	dir := t.TempDir()
	StartDemoServer(t, dir)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"reservations", []string{"--backend", "auto", "list", "reservations"}, []string{"R-1001", "Ana Torres"}},
		{"search", []string{"--backend", "auto", "list", "reservations", "--search", "Ana Torres"}, []string{"R-1001"}},
		{"payments page", []string{"--backend", "auto", "list", "payments", "--size", "5"}, []string{"P-"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Run(t, dir, tt.args...)
			if res.Code != 0 {
				t.Fatalf("exit code = %d, stderr = %q", res.Code, res.Stderr)
			}
			for _, w := range tt.want {
				if !strings.Contains(res.Stdout, w) {
					t.Errorf("stdout missing %q:\n%s", w, res.Stdout)
				}
			}
			if strings.Contains(res.Stdout, "\x1b[") {
				t.Error("list output contains escape sequences")
			}
		})
	}
}

func TestListWithoutDemoServer(t *testing.T) {
	res := Run(t, t.TempDir(), "--backend", "auto", "list", "reservations")
	if res.Code != 2 {
		t.Errorf("exit code = %d, want 2 (stderr %q)", res.Code, res.Stderr)
	}
	if !strings.Contains(res.Stderr, "not running") {
		t.Errorf("stderr = %q, want not running", res.Stderr)
	}
}

func TestSetStatusThenHistory(t *testing.T) {
	dir := t.TempDir()
	url := StartDemoServer(t, dir)

	res := Run(t, dir, "--backend", "auto", "reservation", "set-status", "R-1001", "cancelled")
	if res.Code != 0 {
		t.Fatalf("set-status exit code = %d, stderr = %q", res.Code, res.Stderr)
	}
	if res.Stdout != "R-1001 marked Cancelled\n" {
		t.Errorf("set-status stdout = %q", res.Stdout)
	}

	page, err := backend.New(url).Reservations(context.Background(), backend.Query{Search: "Ana Torres"})
	if err != nil {
		t.Fatalf("Reservations() error = %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Status != records.ReservationCancelled {
		t.Errorf("reservations = %+v, want R-1001 cancelled", page.Items)
	}

	res = Run(t, dir, "--backend", url, "payment", "history", "P-3001")
	if res.Code != 0 {
		t.Fatalf("history exit code = %d, stderr = %q", res.Code, res.Stderr)
	}
	if !strings.HasPrefix(res.Stdout, "2026-03-22 09:00  Pending") {
		t.Errorf("history stdout = %q", res.Stdout)
	}
}

func TestCleanupRefusesWhileDemoRuns(t *testing.T) {
	dir := t.TempDir()
	StartDemoServer(t, dir)

	res := Run(t, dir, "cleanup")
	if res.Code != 1 {
		t.Errorf("cleanup exit code = %d, want 1 (stdout %q)", res.Code, res.Stdout)
	}
	if _, err := instance.Discover(context.Background(), dir, instance.RoleDemo); err != nil {
		t.Errorf("demo server gone after refused cleanup: %v", err)
	}
}

func TestSpawnDemoSupervisesChild(t *testing.T) {
	dir := t.TempDir()
	lm := logging.NewTestLogManager(200)
	t.Cleanup(func() { _ = lm.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	url, stop, err := cli.SpawnDemo(ctx, binary, dir, lm.For("demo-server"))
	if err != nil {
		t.Fatalf("SpawnDemo() error = %v", err)
	}
	if err := backend.New(url).Health(ctx); err != nil {
		t.Errorf("Health() error = %v", err)
	}

	stop()
	_, err = instance.Discover(context.Background(), dir, instance.RoleDemo)
	if !errors.Is(err, instance.ErrNotRunning) {
		t.Errorf("Discover() after stop error = %v, want ErrNotRunning", err)
	}
}

func TestConsoleAgainstDemoServer(t *testing.T) {
	dir := t.TempDir()
	url := StartDemoServer(t, dir)

	lm := logging.NewTestLogManager(500)
	t.Cleanup(func() { _ = lm.Close() })

	cfg := config.DefaultConfig()
	cfg.Backend.URL = url
	client := backend.New(url, backend.WithLogger(lm.For("backend")))
	runner := NewTUITestRunner(t, tui.NewModel(tui.Options{
		Config:    cfg,
		Source:    client,
		Logs:      lm,
		Clipboard: func(string) error { return nil },
	}))

	runner.SendWindowSize(140, 40)
	runner.Init()

	totals := map[string]int{"reservations": 32, "contracts": 18, "payments": 45, "credit": 14}
	for name, want := range totals {
		if !runner.WaitForTotal(name, want, 5*time.Second) {
			t.Errorf("Total(%s) = %d, want %d", name, runner.Model().Total(name), want)
		}
	}

	runner.PressKey('3')
	if got := runner.Model().ActiveTab(); got != "payments" {
		t.Errorf("ActiveTab() = %q, want payments", got)
	}
	runner.PressSpecialKey(tea.KeyTab)
	if got := runner.Model().ActiveTab(); got != "credit" {
		t.Errorf("ActiveTab() = %q, want credit", got)
	}

	// A change pushed by the backend refreshes the collection in place.
	if _, err := client.SetReservationStatus(context.Background(), "R-1002", records.ReservationConverted); err != nil {
		t.Fatalf("SetReservationStatus() error = %v", err)
	}
	runner.Send(events.DataChangedMsg{Collection: "reservations", IDs: []string{"R-1002"}})
	if got := runner.Model().Total("reservations"); got != 32 {
		t.Errorf("Total(reservations) after change = %d, want 32", got)
	}
	if !strings.Contains(runner.Model().View(), "(32)") {
		t.Error("View() missing the reservations count")
	}
}
