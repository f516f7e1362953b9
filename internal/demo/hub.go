// pattern: Imperative Shell

package demo

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/coder/websocket"

	"salesdesk/internal/backend"
)

const subscriberBuffer = 16

// hub fans out store changes to websocket subscribers.
type hub struct {
	mu          sync.Mutex
	subscribers map[chan backend.Change]struct{}
}

func newHub() *hub {
	return &hub{subscribers: make(map[chan backend.Change]struct{})}
}

// Subscribe returns a buffered channel receiving every published change.
// The caller must call Unsubscribe when done.
func (h *hub) Subscribe() chan backend.Change {
	ch := make(chan backend.Change, subscriberBuffer)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) Unsubscribe(ch chan backend.Change) {
	h.mu.Lock()
	delete(h.subscribers, ch)
	h.mu.Unlock()
}

// Publish never blocks. A subscriber whose buffer is full misses the
// change and instead receives a whole-collection refresh once it drains.
func (h *hub) Publish(c backend.Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- c:
		default:
			// Make room for a coarse refresh so the subscriber still resyncs.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- backend.Change{Collection: c.Collection}:
			default:
			}
		}
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// handleEvents upgrades to a websocket and streams one JSON Change per
// text frame until the client or the server goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"127.0.0.1:*", "localhost:*"},
	})
	if err != nil {
		s.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer func() { _ = conn.CloseNow() }()

	ch := s.hub.Subscribe()
	defer s.hub.Unsubscribe(ch)

	// CloseRead discards client frames; its context ends when the peer closes.
	ctx := conn.CloseRead(s.ctx)
	s.logger.Debug("feed subscriber connected", "remote", r.RemoteAddr)

	for {
		select {
		case <-ctx.Done():
			if s.ctx.Err() != nil {
				_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
			}
			return
		case c := <-ch:
			if err := writeChange(ctx, conn, c); err != nil {
				s.logger.Debug("feed subscriber gone", "error", err)
				return
			}
		}
	}
}

func writeChange(ctx context.Context, conn *websocket.Conn, c backend.Change) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}
