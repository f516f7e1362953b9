// pattern: Imperative Shell
package cli

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"salesdesk/internal/backend"
	"salesdesk/internal/instance"
)

func TestDemoServer_PublishesAndServes(t *testing.T) {
	opts, run := testOptions(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runDemoServer(ctx, opts, []string{"--port", "0"}) }()

	var url string
	waitFor(t, "demo server discovery", func() bool {
		u, err := instance.Discover(context.Background(), opts.ConfigDir, instance.RoleDemo)
		url = u
		return err == nil
	})

	page, err := backend.New(url).Reservations(context.Background(), backend.Query{Size: 5})
	if err != nil {
		t.Fatalf("Reservations() error = %v", err)
	}
	if page.Total != 32 || len(page.Items) != 5 {
		t.Errorf("page = %d items of %d, want 5 of 32", len(page.Items), page.Total)
	}
	if !strings.Contains(run.stdout.String(), "demo backend listening on "+url) {
		t.Errorf("stdout = %q", run.stdout.String())
	}

	// A second server in the same directory is refused.
	if err := runDemoServer(context.Background(), opts, nil); !errors.Is(err, instance.ErrRunning) {
		t.Errorf("second runDemoServer() = %v, want ErrRunning", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runDemoServer() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("demo server did not stop")
	}

	if _, err := instance.Discover(context.Background(), opts.ConfigDir, instance.RoleDemo); !errors.Is(err, instance.ErrNotRunning) {
		t.Errorf("Discover() after stop = %v, want ErrNotRunning", err)
	}
	if !strings.Contains(run.stderr.String(), "demo server started") {
		t.Errorf("stderr should echo server logs, got %q", run.stderr.String())
	}
}

func TestDemoServer_RequiresToken(t *testing.T) {
	opts, _ := testOptions(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- runDemoServer(ctx, opts, []string{"--token", "s3cret"}) }()

	var url string
	waitFor(t, "demo server discovery", func() bool {
		u, err := instance.Discover(context.Background(), opts.ConfigDir, instance.RoleDemo)
		url = u
		return err == nil
	})

	if _, err := backend.New(url).Payments(context.Background(), backend.Query{}); backend.StatusText(err) != "not authorized (check the backend token)" {
		t.Errorf("without token: err = %v", err)
	}
	if _, err := backend.New(url, backend.WithToken("s3cret")).Payments(context.Background(), backend.Query{}); err != nil {
		t.Errorf("with token: err = %v", err)
	}

	cancel()
	<-done
}

func TestDemoServer_BadFlag(t *testing.T) {
	opts, _ := testOptions(t, "")
	err := runDemoServer(context.Background(), opts, []string{"--simulate", "often"})
	if err == nil || !strings.Contains(err.Error(), "demo-server") {
		t.Errorf("runDemoServer() = %v, want usage error", err)
	}
}
