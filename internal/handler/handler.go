// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ntroshkin/explore-with-me/internal/apperr"
	"github.com/ntroshkin/explore-with-me/internal/model"
)

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an application error to its HTTP status and the
// structured error envelope.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	statusText := "500 INTERNAL_SERVER_ERROR"
	reason := "Internal server error."
	message := "internal server error"

	if kind, ok := apperr.KindOf(err); ok {
		message = err.Error()
		switch kind {
		case apperr.KindNotFound:
			status = http.StatusNotFound
			statusText = "404 NOT_FOUND"
			reason = "The required object was not found."
		case apperr.KindConflict:
			status = http.StatusConflict
			statusText = "409 CONFLICT"
			reason = "Integrity constraint has been violated."
		case apperr.KindValidation:
			status = http.StatusBadRequest
			statusText = "400 BAD_REQUEST"
			reason = "Incorrectly made request."
		}
	} else {
		log.Printf("internal error: %v", err)
	}

	writeJSON(w, status, model.ErrorResponse{
		Status:    statusText,
		Reason:    reason,
		Message:   message,
		Timestamp: model.NewDateTime(time.Now()),
	})
}

// writeValidation reports a malformed request without an upstream error.
func writeValidation(w http.ResponseWriter, format string, args ...any) {
	writeError(w, apperr.Validation(format, args...))
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// pathID parses a numeric chi URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.Validation("%s must be a positive integer, got %q", name, raw)
	}
	return id, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, name string, fallback bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperr.Validation("%s must be a boolean, got %q", name, raw)
	}
	return v, nil
}

// queryBoolPtr parses an optional boolean query parameter, nil when absent.
func queryBoolPtr(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Validation("%s must be a boolean, got %q", name, raw)
	}
	return &v, nil
}

// queryIDs parses a repeatable or comma-joined list of numeric ids.
func queryIDs(r *http.Request, name string) ([]int64, error) {
	var ids []int64
	for _, raw := range r.URL.Query()[name] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, apperr.Validation("%s must contain integers, got %q", name, part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// queryTime parses an optional DateTimeLayout timestamp, nil when absent.
func queryTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	dt, err := model.ParseDateTime(raw)
	if err != nil {
		return nil, apperr.Validation("%s must be formatted as %s", name, model.DateTimeLayout)
	}
	t := dt.Time
	return &t, nil
}

// clientIP extracts the client address without the port. RealIP
// middleware has already resolved forwarded addresses.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
