// pattern: Imperative Shell

package demo

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"salesdesk/internal/backend"
	"salesdesk/internal/records"
)

// reservedParams are query keys that are not field filters.
var reservedParams = map[string]bool{"page": true, "size": true, "q": true}

// parseListQuery reads page, size, q and treats every other key as an
// any-of field filter.
func parseListQuery(v url.Values) (listQuery, error) {
	q := listQuery{Search: v.Get("q"), Filters: map[string][]string{}}
	var err error
	if q.Page, err = intParam(v, "page", 0); err != nil {
		return listQuery{}, err
	}
	if q.Size, err = intParam(v, "size", defaultPageSize); err != nil {
		return listQuery{}, err
	}
	if q.Size == 0 {
		return listQuery{}, errors.New("size must be positive")
	}
	for key, vals := range v {
		if !reservedParams[key] {
			q.Filters[key] = vals
		}
	}
	return q, nil
}

func intParam(v url.Values, key string, def int) (int, error) {
	raw := v.Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return n, nil
}

// handleList handles GET /api/{collection}.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch name := r.PathValue("collection"); name {
	case backend.Reservations:
		writeJSON(w, http.StatusOK, s.store.Reservations(q))
	case backend.Contracts:
		writeJSON(w, http.StatusOK, s.store.Contracts(q))
	case backend.Payments:
		writeJSON(w, http.StatusOK, s.store.Payments(q))
	case backend.Credit:
		writeJSON(w, http.StatusOK, s.store.Credit(q))
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown collection %q", name))
	}
}

// handlePaymentHistory handles GET /api/payments/{id}/history.
func (s *Server) handlePaymentHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.store.PaymentHistory(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

// handleSetReservationStatus handles POST /api/reservations/{id}/status
// with body {"status": "..."}.
func (s *Server) handleSetReservationStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<12)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := r.PathValue("id")
	updated, err := s.store.SetReservationStatus(id, records.ReservationStatus(req.Status))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.logger.Info("reservation status changed", "id", id, "status", req.Status)
	writeJSON(w, http.StatusOK, updated)
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
