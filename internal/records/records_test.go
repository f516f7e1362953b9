package records

import (
	"testing"
)

func TestMoney_String(t *testing.T) {
	tests := []struct {
		in   Money
		want string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{123456, "$1,234.56"},
		{12000000000, "$120,000,000.00"},
		{-250, "-$2.50"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("Money(%d).String() = %q, want %q", int64(tt.in), got, tt.want)
		}
	}
}

func TestStatusLabels(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"reservation", ReservationExpiring.String(), "Expiring"},
		{"stage", StageReview.String(), "Legal review"},
		{"payment", PaymentOverdue.String(), "Overdue"},
		{"method", MethodTransfer.String(), "Bank transfer"},
		{"credit", CreditAnalysis.String(), "In analysis"},
		{"unknown falls back to value", PaymentStatus("chargeback").String(), "chargeback"},
		{"icon", CreditApproved.Icon(), "✔"},
		{"unknown icon", ReservationStatus("x").Icon(), "?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestOptionsAreCopies(t *testing.T) {
	opts := PaymentStatuses()
	opts[0].Label = "changed"
	if PaymentPending.String() != "Pending" {
		t.Error("mutating returned options changed the label table")
	}
}

func TestLoadFixtures(t *testing.T) {
	f, err := LoadFixtures()
	if err != nil {
		t.Fatalf("LoadFixtures() error = %v", err)
	}
	if len(f.Reservations) < 30 || len(f.Payments) < 40 || len(f.Contracts) == 0 || len(f.Credit) == 0 {
		t.Fatalf("unexpectedly small fixtures: %d %d %d %d", len(f.Reservations), len(f.Contracts), len(f.Payments), len(f.Credit))
	}

	seen := map[string]bool{}
	for _, r := range f.Reservations {
		if seen[r.Key()] {
			t.Errorf("duplicate reservation %s", r.Key())
		}
		seen[r.Key()] = true
		if r.ReservedAt.IsZero() || !r.ExpiresAt.After(r.ReservedAt) {
			t.Errorf("%s: bad dates %v %v", r.ID, r.ReservedAt, r.ExpiresAt)
		}
	}
	for _, p := range f.Payments {
		if !seen[p.ReservationID] {
			t.Errorf("payment %s references unknown reservation %s", p.ID, p.ReservationID)
		}
		if len(p.History) == 0 {
			t.Errorf("payment %s has no history", p.ID)
		}
		if p.Status == PaymentPaid && p.PaidAt == nil {
			t.Errorf("paid payment %s has no paid_at", p.ID)
		}
	}
}
