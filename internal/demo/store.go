package demo

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"salesdesk/internal/backend"
	"salesdesk/internal/records"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

var (
	errNotFound      = errors.New("not found")
	errInvalidStatus = errors.New("invalid status")
)

// listQuery is a parsed collection request.
type listQuery struct {
	Page    int
	Size    int
	Search  string
	Filters map[string][]string
}

// collection describes how one record type is searched and filtered.
type collection[T any] struct {
	items  []T
	search func(T) string
	fields map[string]func(T) string
}

// list applies search and any-of field filters, then slices one page.
// Unknown filter fields are ignored. A page past the end yields no items.
func (c collection[T]) list(q listQuery) records.Page[T] {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(q.Search))

	var matched []T
	for _, item := range c.items {
		if needle != "" && !strings.Contains(fold.String(c.search(item)), needle) {
			continue
		}
		if !c.matchFilters(item, q.Filters) {
			continue
		}
		matched = append(matched, item)
	}

	size := q.Size
	if size <= 0 {
		size = defaultPageSize
	}
	size = min(size, maxPageSize)
	pageCount := max(1, (len(matched)+size-1)/size)

	start := min(q.Page*size, len(matched))
	end := min(start+size, len(matched))
	items := slices.Clone(matched[start:end])
	if items == nil {
		items = []T{}
	}
	return records.Page[T]{
		Items:     items,
		PageIndex: q.Page,
		PageSize:  size,
		PageCount: pageCount,
		Total:     len(matched),
	}
}

func (c collection[T]) matchFilters(item T, filters map[string][]string) bool {
	for field, want := range filters {
		get, ok := c.fields[field]
		if !ok || len(want) == 0 {
			continue
		}
		if !slices.Contains(want, get(item)) {
			return false
		}
	}
	return true
}

// Store is the demo backend's in-memory data set. It is safe for
// concurrent use.
type Store struct {
	mu           sync.RWMutex
	reservations []records.Reservation
	contracts    []records.PendingContract
	payments     []records.Payment
	credit       []records.CreditCase

	onChange func(backend.Change)
}

// NewStore copies the fixtures into a new Store.
func NewStore(f records.Fixtures) *Store {
	return &Store{
		reservations: slices.Clone(f.Reservations),
		contracts:    slices.Clone(f.Contracts),
		payments:     slices.Clone(f.Payments),
		credit:       slices.Clone(f.Credit),
		onChange:     func(backend.Change) {},
	}
}

// SetOnChange registers the callback invoked after every mutation.
func (s *Store) SetOnChange(fn func(backend.Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		fn = func(backend.Change) {}
	}
	s.onChange = fn
}

func (s *Store) Reservations(q listQuery) records.Page[records.Reservation] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collection[records.Reservation]{
		items: s.reservations,
		search: func(r records.Reservation) string {
			return strings.Join([]string{r.ID, r.Project, r.Unit, r.Client, r.Agent, r.Status.String()}, " ")
		},
		fields: map[string]func(records.Reservation) string{
			"status":  func(r records.Reservation) string { return string(r.Status) },
			"project": func(r records.Reservation) string { return r.Project },
			"agent":   func(r records.Reservation) string { return r.Agent },
		},
	}.list(q)
}

func (s *Store) Contracts(q listQuery) records.Page[records.PendingContract] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collection[records.PendingContract]{
		items: s.contracts,
		search: func(c records.PendingContract) string {
			return strings.Join([]string{c.ID, c.ReservationID, c.Client, c.Unit, c.Stage.String()}, " ")
		},
		fields: map[string]func(records.PendingContract) string{
			"stage":  func(c records.PendingContract) string { return string(c.Stage) },
			"signed": func(c records.PendingContract) string { return fmt.Sprint(c.Signed) },
		},
	}.list(q)
}

func (s *Store) Payments(q listQuery) records.Page[records.Payment] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collection[records.Payment]{
		items: s.payments,
		search: func(p records.Payment) string {
			return strings.Join([]string{p.ID, p.ReservationID, p.Client, p.Method.String(), p.Status.String()}, " ")
		},
		fields: map[string]func(records.Payment) string{
			"status":         func(p records.Payment) string { return string(p.Status) },
			"method":         func(p records.Payment) string { return string(p.Method) },
			"reservation_id": func(p records.Payment) string { return p.ReservationID },
		},
	}.list(q)
}

func (s *Store) Credit(q listQuery) records.Page[records.CreditCase] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collection[records.CreditCase]{
		items: s.credit,
		search: func(c records.CreditCase) string {
			return strings.Join([]string{c.ID, c.Client, c.Bank, c.Analyst, c.Status.String()}, " ")
		},
		fields: map[string]func(records.CreditCase) string{
			"status": func(c records.CreditCase) string { return string(c.Status) },
			"bank":   func(c records.CreditCase) string { return c.Bank },
		},
	}.list(q)
}

// PaymentHistory returns a copy of the payment's audit trail.
func (s *Store) PaymentHistory(id string) ([]records.PaymentEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.payments, func(p records.Payment) bool { return p.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("payment %s: %w", id, errNotFound)
	}
	history := slices.Clone(s.payments[i].History)
	if history == nil {
		history = []records.PaymentEvent{}
	}
	return history, nil
}

// SetReservationStatus updates one reservation and announces the change.
func (s *Store) SetReservationStatus(id string, status records.ReservationStatus) (records.Reservation, error) {
	valid := slices.ContainsFunc(records.ReservationStatuses(), func(o records.Option) bool {
		return o.Value == string(status)
	})
	if !valid {
		return records.Reservation{}, fmt.Errorf("%q: %w", status, errInvalidStatus)
	}

	s.mu.Lock()
	i := slices.IndexFunc(s.reservations, func(r records.Reservation) bool { return r.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return records.Reservation{}, fmt.Errorf("reservation %s: %w", id, errNotFound)
	}
	s.reservations[i].Status = status
	updated := s.reservations[i]
	notify := s.onChange
	s.mu.Unlock()

	notify(backend.Change{Collection: backend.Reservations, IDs: []string{id}})
	return updated, nil
}

// Remove deletes a record from a collection and announces the change.
func (s *Store) Remove(collectionName, id string) error {
	s.mu.Lock()
	var removed bool
	switch collectionName {
	case backend.Reservations:
		s.reservations, removed = removeByID(s.reservations, id, records.Reservation.Key)
	case backend.Contracts:
		s.contracts, removed = removeByID(s.contracts, id, records.PendingContract.Key)
	case backend.Payments:
		s.payments, removed = removeByID(s.payments, id, records.Payment.Key)
	case backend.Credit:
		s.credit, removed = removeByID(s.credit, id, records.CreditCase.Key)
	default:
		s.mu.Unlock()
		return fmt.Errorf("collection %q: %w", collectionName, errNotFound)
	}
	notify := s.onChange
	s.mu.Unlock()

	if !removed {
		return fmt.Errorf("%s %s: %w", collectionName, id, errNotFound)
	}
	notify(backend.Change{Collection: collectionName, IDs: []string{id}})
	return nil
}

func removeByID[T any](items []T, id string, key func(T) string) ([]T, bool) {
	i := slices.IndexFunc(items, func(item T) bool { return key(item) == id })
	if i < 0 {
		return items, false
	}
	return slices.Delete(items, i, i+1), true
}

// reservationCycle is the order Tick walks reservation statuses in.
var reservationCycle = []records.ReservationStatus{
	records.ReservationActive,
	records.ReservationExpiring,
	records.ReservationConverted,
}

// Tick simulates activity: it advances the n-th reservation (mod the
// collection size) to the next status in the active, expiring, converted
// cycle. Cancelled reservations are left alone.
func (s *Store) Tick(n int) (records.Reservation, bool) {
	s.mu.Lock()
	if len(s.reservations) == 0 {
		s.mu.Unlock()
		return records.Reservation{}, false
	}
	r := &s.reservations[n%len(s.reservations)]
	i := slices.Index(reservationCycle, r.Status)
	if i < 0 {
		s.mu.Unlock()
		return records.Reservation{}, false
	}
	r.Status = reservationCycle[(i+1)%len(reservationCycle)]
	updated := *r
	notify := s.onChange
	s.mu.Unlock()

	notify(backend.Change{Collection: backend.Reservations, IDs: []string{updated.ID}})
	return updated, true
}
