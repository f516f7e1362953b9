package demo_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"salesdesk/internal/backend"
	"salesdesk/internal/demo"
	"salesdesk/internal/logging"
	"salesdesk/internal/records"
)

// startServer runs a demo server over the embedded fixtures on an
// ephemeral port and returns a client for it.
func startServer(t *testing.T, token string) (*demo.Server, *backend.Client) {
	t.Helper()
	f, err := records.LoadFixtures()
	if err != nil {
		t.Fatalf("LoadFixtures() error = %v", err)
	}
	lm := logging.NewTestLogManager(100)
	t.Cleanup(func() { _ = lm.Close() })

	s := demo.New(demo.Config{Bind: "127.0.0.1", Port: 0, Token: token}, demo.NewStore(f), lm)
	ln, err := s.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
		<-done
	})

	return s, backend.New("http://"+s.Addr(), backend.WithToken(token))
}

func TestServer_Health(t *testing.T) {
	s, _ := startServer(t, "tok")

	// Health stays open even when a token is configured.
	resp, err := http.Get("http://" + s.Addr() + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK || string(body) != `{"status":"ok"}` {
		t.Errorf("health = %d %q", resp.StatusCode, body)
	}
	if resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not assigned")
	}
}

func TestServer_AddrBeforeListen(t *testing.T) {
	lm := logging.NewTestLogManager(10)
	t.Cleanup(func() { _ = lm.Close() })

	s := demo.New(demo.Config{Bind: "127.0.0.1", Port: 8787}, demo.NewStore(records.Fixtures{}), lm)
	if got := s.Addr(); got != "127.0.0.1:8787" {
		t.Errorf("Addr() before Listen() = %q, want %q", got, "127.0.0.1:8787")
	}
}

func TestServer_ListThroughClient(t *testing.T) {
	_, c := startServer(t, "tok")
	ctx := context.Background()

	page, err := c.Reservations(ctx, backend.Query{Page: 1, Size: 10})
	if err != nil {
		t.Fatalf("Reservations() error = %v", err)
	}
	if page.PageIndex != 1 || page.PageSize != 10 || page.Total != 32 || page.PageCount != 4 {
		t.Errorf("page meta = index %d size %d total %d count %d", page.PageIndex, page.PageSize, page.Total, page.PageCount)
	}
	if len(page.Items) != 10 || page.Items[0].ID != "R-1011" {
		t.Errorf("items start at %q, len %d", page.Items[0].ID, len(page.Items))
	}

	overdue, err := c.Payments(ctx, backend.Query{Size: 100, Filters: map[string][]string{"status": {"overdue"}}})
	if err != nil {
		t.Fatalf("Payments() error = %v", err)
	}
	for _, p := range overdue.Items {
		if p.Status != records.PaymentOverdue {
			t.Errorf("payment %s status %q leaked through filter", p.ID, p.Status)
		}
	}
	if overdue.Total == 0 {
		t.Error("expected overdue payments in fixtures")
	}

	history, err := c.PaymentHistory(ctx, "P-3001")
	if err != nil || len(history) == 0 {
		t.Errorf("PaymentHistory() = %v, %v", history, err)
	}
}

func TestServer_Errors(t *testing.T) {
	_, c := startServer(t, "tok")
	ctx := context.Background()

	tests := []struct {
		name       string
		call       func() error
		wantStatus int
	}{
		{"unknown collection", func() error {
			_, err := backend.List[records.Reservation](ctx, c, "leases", backend.Query{})
			return err
		}, http.StatusNotFound},
		{"unknown payment", func() error {
			_, err := c.PaymentHistory(ctx, "P-0")
			return err
		}, http.StatusNotFound},
		{"invalid status", func() error {
			_, err := c.SetReservationStatus(ctx, "R-1001", "archived")
			return err
		}, http.StatusBadRequest},
		{"health ignores token", func() error {
			return backend.New(c.BaseURL(), backend.WithToken("nope")).Health(ctx)
		}, 0},
		{"missing token", func() error {
			_, err := backend.New(c.BaseURL()).Credit(ctx, backend.Query{})
			return err
		}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if tt.wantStatus == 0 {
				if err != nil {
					t.Errorf("health should not require a token: %v", err)
				}
				return
			}
			var apiErr *backend.APIError
			if !errors.As(err, &apiErr) || apiErr.Status != tt.wantStatus {
				t.Errorf("error = %v, want status %d", err, tt.wantStatus)
			}
		})
	}
}

func TestServer_BadQueryParams(t *testing.T) {
	s, _ := startServer(t, "")

	for _, q := range []string{"page=-1", "page=x", "size=0"} {
		resp, err := http.Get("http://" + s.Addr() + "/api/reservations?" + q)
		if err != nil {
			t.Fatalf("GET error = %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest || !strings.Contains(string(body), `"error"`) {
			t.Errorf("%s: status %d body %q", q, resp.StatusCode, body)
		}
	}
}

func TestServer_FeedAnnouncesMutations(t *testing.T) {
	_, c := startServer(t, "tok")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connected := make(chan struct{}, 1)
	changes := make(chan backend.Change, 4)
	feed := c.Feed(func(ch backend.Change) {
		select {
		case changes <- ch:
		default:
		}
	}, func(ok bool, err error) {
		if ok {
			select {
			case connected <- struct{}{}:
			default:
			}
		}
	})
	go func() { _ = feed.Run(ctx) }()

	select {
	case <-connected:
	case <-time.After(5 * time.Second):
		t.Fatal("feed never connected")
	}

	// Subscription happens just after the handshake; retry until it lands.
	deadline := time.After(5 * time.Second)
	for {
		if _, err := c.SetReservationStatus(context.Background(), "R-1002", records.ReservationExpiring); err != nil {
			t.Fatalf("SetReservationStatus() error = %v", err)
		}
		select {
		case ch := <-changes:
			if ch.Collection != backend.Reservations || len(ch.IDs) != 1 || ch.IDs[0] != "R-1002" {
				t.Errorf("change = %+v", ch)
			}
			return
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("no change received")
		}
	}
}

func TestServer_ShutdownClosesFeed(t *testing.T) {
	s, c := startServer(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	statuses := make(chan bool, 8)
	feed := c.Feed(func(backend.Change) {}, func(ok bool, err error) {
		select {
		case statuses <- ok:
		default:
		}
	})
	go func() { _ = feed.Run(ctx) }()

	if ok := <-statuses; !ok {
		t.Fatal("expected connected status first")
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 3*time.Second)
	defer stop()
	_ = s.Shutdown(shutdownCtx)

	select {
	case ok := <-statuses:
		if ok {
			t.Error("expected disconnected status after shutdown")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("feed did not notice shutdown")
	}
}
