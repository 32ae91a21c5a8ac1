package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// writeJSON writes v as a JSON response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// errorJSON writes the {"error": msg} envelope used for validation,
// not-found, and auth failures.
func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// internalError logs err and responds with a generic JSON 500. Storage
// failures that escape pre-validation land here instead of leaking details.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("Request failed", "error", err)
	errorJSON(w, http.StatusInternalServerError, "internal error")
}

// decodeBody decodes the request body into dst. When a field carries the
// wrong JSON type its name is returned so the handler can surface a
// validation error; fields absent from the body keep their zero value.
func decodeBody(r *http.Request, dst any) (badField string, err error) {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return typeErr.Field, nil
		}
		return "", err
	}
	return "", nil
}
