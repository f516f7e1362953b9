// pattern: Imperative Shell

// Package backend talks to the sales REST backend: paged collection
// listings, payment histories, reservation status changes and the
// websocket change feed.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"salesdesk/internal/logging"
	"salesdesk/internal/records"
)

// Collection names served by the backend.
const (
	Reservations = "reservations"
	Contracts    = "contracts"
	Payments     = "payments"
	Credit       = "credit"
)

const defaultTimeout = 10 * time.Second

// Client is a thin HTTP client for the sales backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logging.ScopedLogger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends the token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(l *logging.ScopedLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client targeting baseURL, e.g. "http://127.0.0.1:8787".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend address without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Query selects one page of a collection. Zero values are omitted from the
// request and the backend applies its defaults.
type Query struct {
	Page    int
	Size    int
	Search  string
	Filters map[string][]string
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		for _, val := range q.Filters[k] {
			v.Add(k, val)
		}
	}
	return v
}

// List fetches one page of the named collection.
func List[T any](ctx context.Context, c *Client, collection string, q Query) (records.Page[T], error) {
	var page records.Page[T]
	path := "/api/" + url.PathEscape(collection)
	if enc := q.values().Encode(); enc != "" {
		path += "?" + enc
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return records.Page[T]{}, fmt.Errorf("list %s: %w", collection, err)
	}
	return page, nil
}

func (c *Client) Reservations(ctx context.Context, q Query) (records.Page[records.Reservation], error) {
	return List[records.Reservation](ctx, c, Reservations, q)
}

func (c *Client) Contracts(ctx context.Context, q Query) (records.Page[records.PendingContract], error) {
	return List[records.PendingContract](ctx, c, Contracts, q)
}

func (c *Client) Payments(ctx context.Context, q Query) (records.Page[records.Payment], error) {
	return List[records.Payment](ctx, c, Payments, q)
}

func (c *Client) Credit(ctx context.Context, q Query) (records.Page[records.CreditCase], error) {
	return List[records.CreditCase](ctx, c, Credit, q)
}

// PaymentHistory fetches the audit trail of one payment, oldest first.
func (c *Client) PaymentHistory(ctx context.Context, paymentID string) ([]records.PaymentEvent, error) {
	var out struct {
		History []records.PaymentEvent `json:"history"`
	}
	path := "/api/payments/" + url.PathEscape(paymentID) + "/history"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("payment history %s: %w", paymentID, err)
	}
	return out.History, nil
}

// SetReservationStatus changes a reservation's status and returns the
// updated record.
func (c *Client) SetReservationStatus(ctx context.Context, id string, status records.ReservationStatus) (records.Reservation, error) {
	var out records.Reservation
	path := "/api/reservations/" + url.PathEscape(id) + "/status"
	body := map[string]string{"status": string(status)}
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return records.Reservation{}, fmt.Errorf("set reservation %s status: %w", id, err)
	}
	return out, nil
}

// Health checks that the backend is reachable.
func (c *Client) Health(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, nil); err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	return nil
}

// do sends one request. A non-nil body is encoded as JSON; a non-nil out
// receives the decoded 2xx response.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return fmt.Errorf("failed to connect to backend: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	c.logger.Debug("request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start).String(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if id := resp.Header.Get("X-Request-ID"); id != "" {
			requestID = id
		}
		return &APIError{
			Status:    resp.StatusCode,
			Message:   extractErrorMessage(respBody),
			RequestID: requestID,
		}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
