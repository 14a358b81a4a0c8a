package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/storage"
)

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Message: msg})
}

// writeStoreError maps storage errors onto 404/500.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// userID scopes every request. Authentication is out of scope here; the
// caller identifies itself with a user_id query parameter the way an
// upstream gateway would inject one.
func userID(r *http.Request) (int64, error) {
	v := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if v == "" {
		return 0, errors.New("missing user_id")
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid user_id %q", v)
	}
	return id, nil
}

func pathID(r *http.Request) (int64, error) {
	v := r.PathValue("id")
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", v)
	}
	return id, nil
}

// parseDate parses a date string in YYYY-MM-DD format.
func parseDate(dateStr string) (time.Time, error) {
	return time.Parse("2006-01-02", dateStr)
}

// parseDateRange reads optional startDate/endDate query parameters.
// Defaults to the trailing twelve months.
func parseDateRange(r *http.Request) (from, to time.Time, err error) {
	now := time.Now()
	from = now.AddDate(-1, 0, 0)
	to = now

	if v := strings.TrimSpace(r.URL.Query().Get("startDate")); v != "" {
		if from, err = parseDate(v); err != nil {
			return from, to, fmt.Errorf("invalid startDate %q", v)
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("endDate")); v != "" {
		if to, err = parseDate(v); err != nil {
			return from, to, fmt.Errorf("invalid endDate %q", v)
		}
		// Inclusive end of day.
		to = time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, int(999*time.Millisecond), to.Location())
	}
	if to.Before(from) {
		return from, to, errors.New("endDate before startDate")
	}
	return from, to, nil
}
