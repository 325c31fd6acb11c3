// Package httputil centralizes JSON encoding and domain error translation
// so every handler returns the same envelope.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"honeyshop/pkg/domainerrors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes the `{"message": ...}` envelope the API uses for
// non-entity responses.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"message": message})
}

// WriteError maps a domain error to an HTTP status and writes the message
// envelope. Unrecognized errors become opaque 500s.
func WriteError(w http.ResponseWriter, err error) {
	var derr *domainerrors.Error
	if errors.As(err, &derr) {
		WriteMessage(w, StatusFor(derr.Code), derr.Message)
		return
	}
	WriteMessage(w, http.StatusInternalServerError, "Server error")
}

// StatusFor translates a domain error code to its HTTP status.
func StatusFor(code domainerrors.Code) int {
	switch code {
	case domainerrors.CodeInvalidInput:
		return http.StatusBadRequest
	case domainerrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case domainerrors.CodeForbidden:
		return http.StatusForbidden
	case domainerrors.CodeNotFound:
		return http.StatusNotFound
	case domainerrors.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Decode parses a JSON request body into T.
func Decode[T any](r *http.Request) (T, error) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, domainerrors.New(domainerrors.CodeInvalidInput, "invalid request body")
	}
	return v, nil
}
