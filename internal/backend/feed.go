// pattern: Imperative Shell

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"salesdesk/internal/logging"
)

// Change announces that records of a collection were modified. An empty
// IDs slice means the whole collection should be refetched.
type Change struct {
	Collection string   `json:"collection"`
	IDs        []string `json:"ids,omitempty"`
}

const (
	feedReadLimit  = 1 << 16
	feedMinBackoff = 500 * time.Millisecond
	feedMaxBackoff = 10 * time.Second
)

// Feed keeps a websocket open to /api/events and reports each Change.
// It reconnects with exponential backoff until its context is cancelled.
type Feed struct {
	url      string
	token    string
	logger   *logging.ScopedLogger
	onChange func(Change)
	onStatus func(connected bool, err error)

	minBackoff time.Duration
	maxBackoff time.Duration
}

// Feed returns a change feed for this backend. onStatus may be nil.
func (c *Client) Feed(onChange func(Change), onStatus func(connected bool, err error)) *Feed {
	if onStatus == nil {
		onStatus = func(bool, error) {}
	}
	return &Feed{
		url:        c.baseURL + "/api/events",
		token:      c.token,
		logger:     c.logger,
		onChange:   onChange,
		onStatus:   onStatus,
		minBackoff: feedMinBackoff,
		maxBackoff: feedMaxBackoff,
	}
}

// Run blocks until ctx is done, reconnecting whenever the connection drops.
// It always returns ctx.Err().
func (f *Feed) Run(ctx context.Context) error {
	backoff := f.minBackoff
	for {
		connected, err := f.session(ctx)
		if ctx.Err() != nil {
			f.onStatus(false, nil)
			return ctx.Err()
		}
		if connected {
			backoff = f.minBackoff
		}
		f.logger.Warn("change feed disconnected", "error", err, "retry_in", backoff.String())
		f.onStatus(false, err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff = min(backoff*2, f.maxBackoff)
	}
}

// session runs one connection until it fails. connected reports whether the
// handshake succeeded.
func (f *Feed) session(ctx context.Context) (connected bool, err error) {
	header := http.Header{}
	if f.token != "" {
		header.Set("Authorization", "Bearer "+f.token)
	}
	conn, _, err := websocket.Dial(ctx, f.url, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		return false, fmt.Errorf("dial change feed: %w", err)
	}
	defer func() { _ = conn.CloseNow() }()
	conn.SetReadLimit(feedReadLimit)

	f.logger.Info("change feed connected", "url", f.url)
	f.onStatus(true, nil)

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return true, errors.New("change feed closed by backend")
			}
			return true, fmt.Errorf("read change feed: %w", err)
		}
		if typ != websocket.MessageText {
			continue
		}
		var ch Change
		if err := json.Unmarshal(data, &ch); err != nil || ch.Collection == "" {
			f.logger.Debug("ignoring malformed change", "payload", string(data))
			continue
		}
		f.onChange(ch)
	}
}
