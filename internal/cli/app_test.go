// pattern: Functional Core
package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// newTestApp returns an app writing to a buffer whose exit code is
// recorded instead of ending the process.
func newTestApp() (*App, *bytes.Buffer, *int) {
	app := NewApp("1.0.0")
	stderr := &bytes.Buffer{}
	code := -1
	app.Stderr = stderr
	app.ExitFunc = func(c int) { code = c }
	return app, stderr, &code
}

func TestApp_PrintHelp_ShowsGroupedCommands(t *testing.T) {
	app := NewApp("1.0.0")
	app.AddCommand(&Command{Name: "list", Summary: "Print one page"})
	app.AddGroup("reservation", "Change reservations")
	app.AddGroup("payment", "Inspect payments")

	buf := &bytes.Buffer{}
	app.PrintHelp(buf)
	output := buf.String()

	for _, want := range []string{"Usage: salesdesk", "list", "Launch the sales console", "Command Groups", "reservation", "payment"} {
		if !strings.Contains(output, want) {
			t.Errorf("help missing %q:\n%s", want, output)
		}
	}
}

func TestApp_PrintHelp_KeepsRegistrationOrder(t *testing.T) {
	app := NewApp("1.0.0")
	for _, name := range []string{"version", "list", "cleanup"} {
		app.AddCommand(&Command{Name: name})
	}
	app.AddCommand(&Command{Name: "list", Summary: "replaced"})
	app.AddGroup("payment", "")
	app.AddGroup("feed", "")

	buf := &bytes.Buffer{}
	app.PrintHelp(buf)
	output := buf.String()

	last := -1
	for _, name := range []string{"version", "list", "cleanup", "payment", "feed"} {
		i := strings.Index(output, "  "+name+" ")
		if i < last {
			t.Errorf("%q listed out of order:\n%s", name, output)
		}
		last = i
	}
	if strings.Count(output, "  list ") != 1 {
		t.Errorf("re-registered command listed twice:\n%s", output)
	}
}

func TestApp_Execute_NoArgs_ReturnsTrueForConsole(t *testing.T) {
	app, _, _ := newTestApp()
	if !app.Execute(nil) {
		t.Error("Execute(nil) = false, want true")
	}
}

func TestApp_Execute_UngroupedCommand_Dispatches(t *testing.T) {
	app, _, code := newTestApp()
	var got []string
	app.AddCommand(&Command{
		Name: "list",
		Run: func(args []string) error {
			got = args
			return nil
		},
	})

	if app.Execute([]string{"list", "payments", "--page", "2"}) {
		t.Error("Execute with a command returned true")
	}
	if strings.Join(got, " ") != "payments --page 2" {
		t.Errorf("args = %v", got)
	}
	if *code != -1 {
		t.Errorf("exit code = %d, want no exit", *code)
	}
}

func TestApp_Execute_GroupCommand_Dispatches(t *testing.T) {
	app, _, _ := newTestApp()
	group := app.AddGroup("payment", "Inspect payments")

	var got []string
	group.AddCommand(&Command{
		Name: "history",
		Run: func(args []string) error {
			got = args
			return nil
		},
	})

	if app.Execute([]string{"payment", "history", "P-3001"}) {
		t.Error("Execute with a group command returned true")
	}
	if len(got) != 1 || got[0] != "P-3001" {
		t.Errorf("args = %v, want [P-3001]", got)
	}
}

func TestApp_Execute_Help(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"group help", []string{"payment", "help"}, "history"},
		{"group --help", []string{"payment", "--help"}, "history"},
		{"group -h", []string{"payment", "-h"}, "history"},
		{"group without command", []string{"payment"}, "history"},
		{"command --help", []string{"payment", "history", "--help"}, "Usage: salesdesk payment history"},
		{"ungrouped -h", []string{"version", "-h"}, "Usage: salesdesk version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, stderr, code := newTestApp()
			ran := false
			app.AddCommand(&Command{Name: "version", Usage: "Usage: salesdesk version", Run: func([]string) error {
				ran = true
				return nil
			}})
			app.AddGroup("payment", "Inspect payments").AddCommand(&Command{
				Name:  "history",
				Usage: "Usage: salesdesk payment history <id>",
				Run: func([]string) error {
					ran = true
					return nil
				},
			})

			if app.Execute(tt.args) {
				t.Error("Execute returned true")
			}
			if ran {
				t.Error("command ran instead of printing help")
			}
			if !strings.Contains(stderr.String(), tt.want) {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.want)
			}
			if *code != -1 {
				t.Errorf("exit code = %d, want no exit", *code)
			}
		})
	}
}

func TestApp_Execute_UnknownExitsWithCode1(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown command", []string{"deploy"}, "Usage: salesdesk [options]"},
		{"unknown group command", []string{"payment", "refund"}, "Usage: salesdesk payment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, stderr, code := newTestApp()
			app.AddGroup("payment", "Inspect payments")

			app.Execute(tt.args)
			if *code != 1 {
				t.Errorf("exit code = %d, want 1", *code)
			}
			if !strings.Contains(stderr.String(), tt.want) {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.want)
			}
		})
	}
}

func TestApp_Execute_CommandErrorExitsWithCode1(t *testing.T) {
	app, stderr, code := newTestApp()
	app.AddCommand(&Command{Name: "list", Run: func([]string) error {
		return errors.New("expected one collection")
	}})

	app.Execute([]string{"list"})
	if *code != 1 {
		t.Errorf("exit code = %d, want 1", *code)
	}
	if stderr.String() != "error: expected one collection\n" {
		t.Errorf("stderr = %q", stderr.String())
	}
}
