package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vncsmyrnk/vote/internal/core/domain"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrPollNotFound), errors.Is(err, domain.ErrOptionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidPoll), errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps domain errors to their payload. Anything else is logged and
// reported as an internal error without leaking details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		message = domain.ErrInternal.Error()
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}

	writeJSON(w, status, errorResponse{Error: domain.Kind(err), Message: message})
}

// decodeJSON decodes exactly one JSON value from the request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request body exceeds %d bytes: %w", domain.ErrBadRequest, tooLarge.Limit, err)
		}
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrBadRequest, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("%w: request body must contain a single JSON object", domain.ErrBadRequest)
	}
	return nil
}

// limitBody caps every request body at n bytes.
func limitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
