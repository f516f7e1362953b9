// pattern: Imperative Shell
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"salesdesk/internal/backend"
	"salesdesk/internal/config"
	"salesdesk/internal/instance"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestResolveBackend(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "backend:\n  url: http://sales.internal:9000\n")

	tests := []struct {
		name string
		flag string
		want string
	}{
		{"config url", "", "http://sales.internal:9000"},
		{"explicit url", "http://127.0.0.1:8787", "http://127.0.0.1:8787"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, cfg, err := ResolveBackend(context.Background(), dir, tt.flag)
			if err != nil {
				t.Fatalf("ResolveBackend() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("url = %q, want %q", got, tt.want)
			}
			if cfg.Backend.URL != "http://sales.internal:9000" {
				t.Errorf("config backend.url = %q", cfg.Backend.URL)
			}
		})
	}
}

func TestResolveBackend_Auto(t *testing.T) {
	dir := t.TempDir()

	if _, _, err := ResolveBackend(context.Background(), dir, BackendAuto); !errors.Is(err, instance.ErrNotRunning) {
		t.Fatalf("auto without demo server: err = %v, want ErrNotRunning", err)
	}

	url, _ := newDemoBackend(t, "")
	inst, err := instance.Acquire(dir, instance.RoleDemo)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer inst.Release()
	addr := strings.TrimPrefix(url, "http://")
	if err := inst.Publish(addr); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	got, _, err := ResolveBackend(context.Background(), dir, BackendAuto)
	if err != nil {
		t.Fatalf("ResolveBackend(auto) error = %v", err)
	}
	if got != url {
		t.Errorf("url = %q, want %q", got, url)
	}
}

func TestResolveBackend_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "theme: neon\n")

	if _, _, err := ResolveBackend(context.Background(), dir, ""); err == nil {
		t.Fatal("ResolveBackend() with an invalid config should fail")
	}
}

func TestDelegate_ExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		backend  string
		config   string
		wantCode int
		wantErr  string
	}{
		{"no demo server", BackendAuto, "", 2, "not running"},
		{"invalid config", "", "log_level: loud\n", 1, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.config != "" {
				writeConfig(t, dir, tt.config)
			}
			code := -1
			stderr := &syncBuffer{}
			d := Delegate{
				ConfigDir: dir,
				Backend:   tt.backend,
				ExitFunc:  func(c int) { code = c },
				Stderr:    stderr,
			}

			called := false
			d.Run(func(context.Context, *backend.Client, config.Config) error {
				called = true
				return nil
			})

			if called {
				t.Error("fn ran without a backend")
			}
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", code, tt.wantCode)
			}
			if !strings.Contains(stderr.String(), tt.wantErr) {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.wantErr)
			}
		})
	}
}

func TestDelegate_RunReportsBackendError(t *testing.T) {
	url, _ := newDemoBackend(t, "")
	code := -1
	stderr := &syncBuffer{}
	d := Delegate{ConfigDir: t.TempDir(), Backend: url, ExitFunc: func(c int) { code = c }, Stderr: stderr}

	d.Run(func(ctx context.Context, c *backend.Client, _ config.Config) error {
		_, err := c.PaymentHistory(ctx, "P-0000")
		return err
	})

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if stderr.String() != "error: not found\n" {
		t.Errorf("stderr = %q, want %q", stderr.String(), "error: not found\n")
	}
}

func TestDelegate_SendsTokenFromEnv(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"history":[]}`)
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeConfig(t, dir, "backend:\n  token_env: SALESDESK_TEST_TOKEN\n")
	t.Setenv("SALESDESK_TEST_TOKEN", "s3cret")

	code := -1
	d := Delegate{ConfigDir: dir, Backend: srv.URL, ExitFunc: func(c int) { code = c }, Stderr: &syncBuffer{}}
	d.Run(func(ctx context.Context, c *backend.Client, _ config.Config) error {
		_, err := c.PaymentHistory(ctx, "P-3001")
		return err
	})

	if code != -1 {
		t.Errorf("exit code = %d, want no exit", code)
	}
	if gotAuth != "Bearer s3cret" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer s3cret")
	}
}
