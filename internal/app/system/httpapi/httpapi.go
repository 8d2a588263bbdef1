// internal/app/system/httpapi/httpapi.go

// Package httpapi holds the JSON response helpers shared by every feature
// handler. All client-visible errors go through this package so the response
// shape stays uniform and internal error detail never leaks: handlers log
// the underlying error with zap and hand this package a user-safe message.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// maxBodyBytes caps request bodies; nothing in the API legitimately sends
// more than a few KB.
const maxBodyBytes = 1 << 20

// errorResponse is the uniform error body: {"message": "..."}.
type errorResponse struct {
	Message string `json:"message"`
}

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes {"message": msg} with the given status.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, errorResponse{Message: msg})
}

// BadRequest reports a validation failure (malformed input, duplicate email,
// hole count out of range).
func BadRequest(w http.ResponseWriter, msg string) {
	WriteMessage(w, http.StatusBadRequest, msg)
}

// Unauthorized reports a missing or invalid credential.
func Unauthorized(w http.ResponseWriter, msg string) {
	WriteMessage(w, http.StatusUnauthorized, msg)
}

// Forbidden reports an authenticated caller lacking rights to the resource.
func Forbidden(w http.ResponseWriter, msg string) {
	WriteMessage(w, http.StatusForbidden, msg)
}

// NotFound reports an id that does not resolve.
func NotFound(w http.ResponseWriter, msg string) {
	WriteMessage(w, http.StatusNotFound, msg)
}

// Internal reports a store or provider failure. The msg must be user-safe;
// the underlying error belongs in the log, not the response.
func Internal(w http.ResponseWriter, msg string) {
	WriteMessage(w, http.StatusInternalServerError, msg)
}

// ErrBadBody is returned by Decode for unreadable or malformed JSON bodies.
var ErrBadBody = errors.New("invalid request body")

// Decode reads a JSON request body into v, rejecting unknown fields and
// oversized bodies.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return ErrBadBody
	}
	return nil
}
