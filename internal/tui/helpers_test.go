package tui

import (
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"salesdesk/internal/backend"
	"salesdesk/internal/config"
	"salesdesk/internal/demo"
	"salesdesk/internal/logging"
	"salesdesk/internal/records"
)

// cmdWait bounds how long a command may block before its message is
// dropped. It skips status-clear ticks and other long timers.
const cmdWait = 750 * time.Millisecond

type testEnv struct {
	store  *demo.Store
	logs   *logging.TestLogManager
	copied *[]string
}

// newTestModel returns a sized model backed by a demo server over the
// embedded fixtures, with every collection loaded.
func newTestModel(t *testing.T) (Model, testEnv) {
	t.Helper()
	return newTestModelWith(t, config.DefaultConfig())
}

func newTestModelWith(t *testing.T, cfg config.Config) (Model, testEnv) {
	t.Helper()
	f, err := records.LoadFixtures()
	if err != nil {
		t.Fatalf("LoadFixtures() error = %v", err)
	}
	lm := logging.NewTestLogManager(500)
	t.Cleanup(func() { _ = lm.Close() })

	store := demo.NewStore(f)
	srv := httptest.NewServer(demo.New(demo.Config{}, store, lm).Handler())
	t.Cleanup(srv.Close)

	var copied []string
	var mu sync.Mutex
	cfg.Backend.URL = srv.URL
	m := NewModel(Options{
		Config: cfg,
		Source: backend.New(srv.URL, backend.WithLogger(lm.For("backend"))),
		Logs:   lm,
		Clipboard: func(s string) error {
			mu.Lock()
			defer mu.Unlock()
			copied = append(copied, s)
			return nil
		},
	})

	updated, cmd := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	m = settle(t, updated.(Model), tea.Batch(cmd, m.Init()))
	return m, testEnv{store: store, logs: lm, copied: &copied}
}

// collect runs cmd and every command batched inside it, returning the
// messages produced within cmdWait. Spinner ticks are dropped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-ch:
	case <-time.After(cmdWait):
		return nil
	}

	switch msg := msg.(type) {
	case nil, spinner.TickMsg:
		return nil
	case tea.BatchMsg:
		var (
			mu  sync.Mutex
			out []tea.Msg
			wg  sync.WaitGroup
		)
		for _, c := range msg {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got := collect(c)
				mu.Lock()
				out = append(out, got...)
				mu.Unlock()
			}()
		}
		wg.Wait()
		return out
	}
	return []tea.Msg{msg}
}

// settle feeds the messages produced by cmd back into the model until no
// more arrive.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for round := 0; cmd != nil; round++ {
		if round > 20 {
			t.Fatal("model did not settle")
		}
		var cmds []tea.Cmd
		for _, msg := range collect(cmd) {
			if _, ok := msg.(tea.QuitMsg); ok {
				continue
			}
			updated, next := m.Update(msg)
			m = updated.(Model)
			cmds = append(cmds, next)
		}
		cmd = tea.Batch(cmds...)
	}
	return m
}

// send delivers one message and settles whatever it triggers.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	return settle(t, updated.(Model), cmd)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (e testEnv) copiedTexts() []string {
	return *e.copied
}
