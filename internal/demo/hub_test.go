package demo

import (
	"testing"
	"time"

	"salesdesk/internal/backend"
)

func TestHub_PublishReachesAllSubscribers(t *testing.T) {
	h := newHub()
	ch1 := h.Subscribe()
	ch2 := h.Subscribe()
	defer h.Unsubscribe(ch1)
	defer h.Unsubscribe(ch2)

	h.Publish(backend.Change{Collection: "credit", IDs: []string{"CC-1"}})

	for i, ch := range []chan backend.Change{ch1, ch2} {
		select {
		case c := <-ch:
			if c.Collection != "credit" {
				t.Errorf("subscriber %d got %+v", i, c)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("subscriber %d: expected a change", i)
		}
	}
}

func TestHub_UnsubscribeStopsDelivery(t *testing.T) {
	h := newHub()
	ch := h.Subscribe()
	h.Unsubscribe(ch)

	h.Publish(backend.Change{Collection: "payments"})

	select {
	case c := <-ch:
		t.Errorf("unexpected change after unsubscribe: %+v", c)
	default:
	}
	if h.count() != 0 {
		t.Errorf("count = %d, want 0", h.count())
	}
}

func TestHub_FullSubscriberGetsCoarseRefresh(t *testing.T) {
	h := newHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	for i := range subscriberBuffer {
		h.Publish(backend.Change{Collection: "reservations", IDs: []string{string(rune('a' + i))}})
	}
	// Buffer is full: the next publish must not block.
	done := make(chan struct{})
	go func() {
		h.Publish(backend.Change{Collection: "reservations", IDs: []string{"overflow"}})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}

	var last backend.Change
	for range subscriberBuffer {
		last = <-ch
	}
	if last.Collection != "reservations" || len(last.IDs) != 0 {
		t.Errorf("last change = %+v, want whole-collection refresh", last)
	}
}
