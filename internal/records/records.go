// Package records defines the sales collections shown by the console and
// the label tables used to present their status values.
package records

import "time"

// Reservation holds a unit for a client until a contract is signed.
type Reservation struct {
	ID         string            `json:"id" yaml:"id"`
	Project    string            `json:"project" yaml:"project"`
	Unit       string            `json:"unit" yaml:"unit"`
	Client     string            `json:"client" yaml:"client"`
	Agent      string            `json:"agent" yaml:"agent"`
	Status     ReservationStatus `json:"status" yaml:"status"`
	Deposit    Money             `json:"deposit" yaml:"deposit"`
	Price      Money             `json:"price" yaml:"price"`
	ReservedAt time.Time         `json:"reserved_at" yaml:"reserved_at"`
	ExpiresAt  time.Time         `json:"expires_at" yaml:"expires_at"`
	Notes      string            `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// PendingContract is a reservation waiting on paperwork before signing.
type PendingContract struct {
	ID            string        `json:"id" yaml:"id"`
	ReservationID string        `json:"reservation_id" yaml:"reservation_id"`
	Client        string        `json:"client" yaml:"client"`
	Unit          string        `json:"unit" yaml:"unit"`
	Stage         ContractStage `json:"stage" yaml:"stage"`
	DueDate       time.Time     `json:"due_date" yaml:"due_date"`
	Missing       []string      `json:"missing,omitempty" yaml:"missing,omitempty"`
	Signed        bool          `json:"signed" yaml:"signed"`
}

// Payment is one installment of a reservation's payment plan.
type Payment struct {
	ID            string         `json:"id" yaml:"id"`
	ReservationID string         `json:"reservation_id" yaml:"reservation_id"`
	Client        string         `json:"client" yaml:"client"`
	Installment   int            `json:"installment" yaml:"installment"`
	Amount        Money          `json:"amount" yaml:"amount"`
	Method        PaymentMethod  `json:"method" yaml:"method"`
	Status        PaymentStatus  `json:"status" yaml:"status"`
	DueDate       time.Time      `json:"due_date" yaml:"due_date"`
	PaidAt        *time.Time     `json:"paid_at,omitempty" yaml:"paid_at,omitempty"`
	History       []PaymentEvent `json:"history,omitempty" yaml:"history,omitempty"`
}

// PaymentEvent is one entry in a payment's audit trail.
type PaymentEvent struct {
	At     time.Time     `json:"at" yaml:"at"`
	Status PaymentStatus `json:"status" yaml:"status"`
	Note   string        `json:"note,omitempty" yaml:"note,omitempty"`
}

// CreditCase tracks a client's mortgage application with a bank.
type CreditCase struct {
	ID       string       `json:"id" yaml:"id"`
	Client   string       `json:"client" yaml:"client"`
	Bank     string       `json:"bank" yaml:"bank"`
	Analyst  string       `json:"analyst" yaml:"analyst"`
	Amount   Money        `json:"amount" yaml:"amount"`
	Status   CreditStatus `json:"status" yaml:"status"`
	Score    int          `json:"score" yaml:"score"`
	OpenedAt time.Time    `json:"opened_at" yaml:"opened_at"`
	Notes    string       `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Key functions give each collection its stable row identity.
func (r Reservation) Key() string     { return r.ID }
func (c PendingContract) Key() string { return c.ID }
func (p Payment) Key() string         { return p.ID }
func (c CreditCase) Key() string      { return c.ID }

// Page is one page of a collection as returned by the backend.
type Page[T any] struct {
	Items     []T `json:"items"`
	PageIndex int `json:"page"`
	PageSize  int `json:"size"`
	PageCount int `json:"page_count"`
	Total     int `json:"total"`
}
