// Package respond writes JSON responses and decodes JSON request bodies.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes bounds request bodies. Participant avatars are data URLs, so the limit is generous.
const MaxBodyBytes = 1 << 20

// Messages for auth failures. They carry no detail about the cause.
const (
	MsgAuthRequired = "Authentication required"
	MsgAccessDenied = "Access denied"
	MsgInternal     = "Internal server error"
)

// ErrInvalidBody is returned by Decode for an unreadable or malformed body.
var ErrInvalidBody = errors.New("invalid request body")

// ErrorBody is the envelope for every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes {"error": msg} with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}

// Unauthorized writes the generic 401 response.
func Unauthorized(w http.ResponseWriter) { Error(w, http.StatusUnauthorized, MsgAuthRequired) }

// Forbidden writes the generic 403 response.
func Forbidden(w http.ResponseWriter) { Error(w, http.StatusForbidden, MsgAccessDenied) }

// Internal writes the generic 500 response.
func Internal(w http.ResponseWriter) { Error(w, http.StatusInternalServerError, MsgInternal) }

// Decode reads a single JSON value from the request body into v.
func Decode(r *http.Request, v any) error {
	if r.Body == nil {
		return ErrInvalidBody
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}
