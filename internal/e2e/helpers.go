//go:build e2e
// +build e2e

// Package e2e drives the built salesdesk binary and the console model
// against a real demo server.
package e2e

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"salesdesk/internal/instance"
	"salesdesk/internal/tui"
)

// binary is the salesdesk executable built by TestMain.
var binary string

// Result is the outcome of one salesdesk invocation.
type Result struct {
	Stdout string
	Stderr string
	Code   int
}

// Run executes salesdesk with args against configDir and waits for it.
func Run(t *testing.T, configDir string, args ...string) Result {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, append([]string{"--config-dir", configDir}, args...)...)
	cmd.Env = append(os.Environ(), "SALESDESK_TOKEN=")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	res := Result{}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("running salesdesk %v: %v", args, err)
		}
		res.Code = exitErr.ExitCode()
	}
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	return res
}

// StartDemoServer runs `salesdesk demo-server` in configDir until the test
// ends and returns the URL it published.
func StartDemoServer(t *testing.T, configDir string, extra ...string) string {
	t.Helper()

	var stderr syncBuffer
	args := append([]string{"--config-dir", configDir, "demo-server"}, extra...)
	cmd := exec.Command(binary, args...)
	cmd.Env = append(os.Environ(), "SALESDESK_TOKEN=")
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("starting demo-server: %v", err)
	}
	t.Cleanup(func() {
		_ = cmd.Process.Signal(os.Interrupt)
		done := make(chan struct{})
		go func() {
			_ = cmd.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			_ = cmd.Process.Kill()
			<-done
		}
	})

	url, err := WaitForDemo(configDir, 10*time.Second)
	if err != nil {
		t.Fatalf("demo-server not ready: %v\nstderr:\n%s", err, stderr.String())
	}
	return url
}

// WaitForDemo polls for a published demo server in configDir.
func WaitForDemo(configDir string, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	for {
		url, err := instance.Discover(context.Background(), configDir, instance.RoleDemo)
		if err == nil {
			return url, nil
		}
		if time.Now().After(deadline) {
			return "", err
		}
		time.Sleep(100 * time.Millisecond)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// cmdWait bounds how long one command may block. Longer timers, such as
// status-clear ticks, are dropped.
const cmdWait = time.Second

// TUITestRunner helps drive the console through Update() calls.
type TUITestRunner struct {
	t     *testing.T
	model tui.Model
}

// NewTUITestRunner creates a new test runner with the given model.
func NewTUITestRunner(t *testing.T, model tui.Model) *TUITestRunner {
	return &TUITestRunner{t: t, model: model}
}

// Model returns the current model state.
func (r *TUITestRunner) Model() tui.Model {
	return r.model
}

// Init runs the Init command and processes results.
func (r *TUITestRunner) Init() {
	r.t.Helper()
	r.runCmd(r.model.Init())
}

// Send delivers a message and processes what it triggers.
func (r *TUITestRunner) Send(msg tea.Msg) {
	r.t.Helper()
	model, cmd := r.model.Update(msg)
	r.model = model.(tui.Model)
	r.runCmd(cmd)
}

// PressKey simulates pressing a regular key.
func (r *TUITestRunner) PressKey(key rune) {
	r.t.Helper()
	r.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{key}})
}

// PressSpecialKey simulates pressing a special key like Enter or Tab.
func (r *TUITestRunner) PressSpecialKey(keyType tea.KeyType) {
	r.t.Helper()
	r.Send(tea.KeyMsg{Type: keyType})
}

// TypeText types a string character by character.
func (r *TUITestRunner) TypeText(text string) {
	r.t.Helper()
	for _, ch := range text {
		r.PressKey(ch)
	}
}

// SendWindowSize sends a window size message.
func (r *TUITestRunner) SendWindowSize(width, height int) {
	r.t.Helper()
	r.Send(tea.WindowSizeMsg{Width: width, Height: height})
}

// WaitForTotal refreshes until collection reports expected rows.
func (r *TUITestRunner) WaitForTotal(collection string, expected int, timeout time.Duration) bool {
	r.t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if r.model.Total(collection) == expected {
			return true
		}
		r.PressKey('r')
		time.Sleep(200 * time.Millisecond)
	}
	return false
}

// runCmd executes a Bubbletea command and processes its result.
func (r *TUITestRunner) runCmd(cmd tea.Cmd) {
	r.runCmdWithDepth(cmd, 0)
}

// runCmdWithDepth executes a command with depth tracking to prevent infinite recursion.
func (r *TUITestRunner) runCmdWithDepth(cmd tea.Cmd, depth int) {
	if cmd == nil || depth > 20 {
		return
	}

	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	var msg tea.Msg
	select {
	case msg = <-ch:
	case <-time.After(cmdWait):
		return
	}

	switch msg := msg.(type) {
	case nil, tea.QuitMsg, spinner.TickMsg:
		return
	case tea.BatchMsg:
		for _, c := range msg {
			r.runCmdWithDepth(c, depth+1)
		}
		return
	}

	model, next := r.model.Update(msg)
	r.model = model.(tui.Model)
	r.runCmdWithDepth(next, depth+1)
}
