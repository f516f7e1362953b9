package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"salesdesk/internal/records"
)

func TestQuery_Values(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"zero query", Query{}, ""},
		{"page and size", Query{Page: 2, Size: 20}, "page=2&size=20"},
		{"search", Query{Search: "torre norte"}, "q=torre+norte"},
		{
			"filters are sorted by key and keep value order",
			Query{Filters: map[string][]string{"status": {"paid", "overdue"}, "method": {"card"}}},
			"method=card&status=paid&status=overdue",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.values().Encode(); got != tt.want {
				t.Errorf("values() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClient_Reservations(t *testing.T) {
	var gotReq *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"items":[{"id":"R-1001","client":"Ana Ruiz","status":"active","price":12000000}],"page":1,"size":10,"page_count":4,"total":32}`)
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("s3cret"))
	page, err := c.Reservations(context.Background(), Query{Page: 1, Size: 10, Filters: map[string][]string{"status": {"active"}}})
	if err != nil {
		t.Fatalf("Reservations() error: %v", err)
	}

	want := records.Page[records.Reservation]{
		Items:     []records.Reservation{{ID: "R-1001", Client: "Ana Ruiz", Status: records.ReservationActive, Price: 12000000}},
		PageIndex: 1,
		PageSize:  10,
		PageCount: 4,
		Total:     32,
	}
	if diff := cmp.Diff(want, page); diff != "" {
		t.Errorf("page mismatch (-want +got):\n%s", diff)
	}

	if gotReq.URL.Path != "/api/reservations" {
		t.Errorf("path = %q, want /api/reservations", gotReq.URL.Path)
	}
	if got := gotReq.URL.Query().Get("status"); got != "active" {
		t.Errorf("status param = %q, want active", got)
	}
	if got := gotReq.Header.Get("Authorization"); got != "Bearer s3cret" {
		t.Errorf("Authorization = %q", got)
	}
	if gotReq.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}

func TestClient_NoTokenNoAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	}))
	defer srv.Close()

	if err := New(srv.URL).Health(context.Background()); err != nil {
		t.Fatalf("Health() error: %v", err)
	}
}

func TestClient_APIError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantMsg    string
		wantStatus string
	}{
		{"json error field", http.StatusNotFound, `{"error":"unknown collection"}`, "unknown collection", "not found"},
		{"plain body", http.StatusInternalServerError, "boom\n", "boom", "backend unavailable: boom"},
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad token"}`, "bad token", "not authorized (check the backend token)"},
		{"bad request passes message through", http.StatusBadRequest, `{"error":"invalid page"}`, "invalid page", "invalid page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Request-ID", "req-42")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := New(srv.URL).Contracts(context.Background(), Query{})
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *APIError", err)
			}
			if apiErr.Status != tt.status || apiErr.Message != tt.wantMsg || apiErr.RequestID != "req-42" {
				t.Errorf("APIError = %+v", apiErr)
			}
			if got := StatusText(err); got != tt.wantStatus {
				t.Errorf("StatusText() = %q, want %q", got, tt.wantStatus)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(&APIError{Status: http.StatusNotFound}) {
		t.Error("IsNotFound(404) = false")
	}
	if IsNotFound(&APIError{Status: http.StatusConflict}) {
		t.Error("IsNotFound(409) = true")
	}
	if IsNotFound(errors.New("other")) {
		t.Error("IsNotFound(plain error) = true")
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(url, WithTimeout(time.Second)).Health(context.Background())
	if err == nil {
		t.Fatal("Health() should fail against a closed server")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Errorf("connection failure should not be an APIError: %v", err)
	}
}

func TestClient_PaymentHistory(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/payments/P-3001/history" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"history": []records.PaymentEvent{{At: at, Status: records.PaymentPending, Note: "scheduled"}},
		})
	}))
	defer srv.Close()

	got, err := New(srv.URL).PaymentHistory(context.Background(), "P-3001")
	if err != nil {
		t.Fatalf("PaymentHistory() error: %v", err)
	}
	want := []records.PaymentEvent{{At: at, Status: records.PaymentPending, Note: "scheduled"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_SetReservationStatus(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/reservations/R-1002/status" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(records.Reservation{ID: "R-1002", Status: records.ReservationStatus(gotBody["status"])})
	}))
	defer srv.Close()

	res, err := New(srv.URL).SetReservationStatus(context.Background(), "R-1002", records.ReservationCancelled)
	if err != nil {
		t.Fatalf("SetReservationStatus() error: %v", err)
	}
	if gotBody["status"] != "cancelled" {
		t.Errorf("request body status = %q, want cancelled", gotBody["status"])
	}
	if res.Status != records.ReservationCancelled {
		t.Errorf("returned status = %q", res.Status)
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(srv.URL).Payments(ctx, Query{}); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
