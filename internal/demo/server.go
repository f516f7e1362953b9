// pattern: Imperative Shell

// Package demo serves the embedded fixture data over the same REST and
// websocket API the console expects from the real sales backend.
package demo

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"salesdesk/internal/logging"
)

// Config holds demo server configuration. An empty Token disables
// authentication.
type Config struct {
	Bind  string
	Port  int
	Token string
}

// Server is the demo sales backend.
type Server struct {
	httpServer *http.Server
	store      *Store
	hub        *hub
	logger     *logging.ScopedLogger
	addr       string
	token      string
	listener   net.Listener

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a demo server over store. logProvider may be a
// *logging.Manager or a *logging.TestLogManager.
func New(cfg Config, store *Store, logProvider logging.LoggerProvider) *Server {
	logger := logProvider.For("demo")
	addr := fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port)

	mux := http.NewServeMux()
	h := newHub()
	store.SetOnChange(h.Publish)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		store:  store,
		hub:    h,
		logger: logger,
		addr:   addr,
		token:  cfg.Token,
		ctx:    ctx,
		cancel: cancel,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.withRequestID(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.Handle("GET /api/events", s.requireToken(http.HandlerFunc(s.handleEvents)))
	mux.Handle("GET /api/{collection}", s.requireToken(http.HandlerFunc(s.handleList)))
	mux.Handle("GET /api/payments/{id}/history", s.requireToken(http.HandlerFunc(s.handlePaymentHistory)))
	mux.Handle("POST /api/reservations/{id}/status", s.requireToken(http.HandlerFunc(s.handleSetReservationStatus)))

	return s
}

// Listen binds the configured address. Call Serve afterwards; the split
// lets callers read the bound port before blocking.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("demo server listen: %w", err)
	}
	s.listener = ln
	return ln, nil
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("demo server started", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Addr returns the bound address after Listen, the configured one before.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Handler returns the server's root handler, for mounting in tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Simulate advances one reservation every interval until ctx is done, so
// connected consoles see live changes.
func (s *Server) Simulate(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for n := 0; ; n++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if r, ok := s.store.Tick(n * 7); ok {
				s.logger.Debug("simulated change", "id", r.ID, "status", string(r.Status))
			}
		}
	}
}

// Shutdown closes feed subscribers and stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("demo server shutting down")
	s.cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// withRequestID echoes the caller's X-Request-ID, or assigns one, and logs
// every request.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "request_id", id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	if s.token == "" {
		return next
	}
	want := []byte("Bearer " + s.token)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := []byte(strings.TrimSpace(r.Header.Get("Authorization")))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			writeError(w, http.StatusUnauthorized, "missing or invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
