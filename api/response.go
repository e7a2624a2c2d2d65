package api

import (
	"encoding/json"
	"net/http"

	"github.com/homebasehq/homebase/validate"
)

// envelope is a standard JSON response wrapper.
type envelope struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// fieldErrorEnvelope carries structured validation and uniqueness
// errors; the client maps these back onto form fields.
type fieldErrorEnvelope struct {
	Errors []validate.FieldError `json:"errors"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: data})
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: message})
}

// WriteFieldErrors writes field-scoped errors, 400 for validation and
// 409 for uniqueness conflicts.
func WriteFieldErrors(w http.ResponseWriter, status int, errs []validate.FieldError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(fieldErrorEnvelope{Errors: errs})
}

// WriteConflict writes a single-field 409 uniqueness error.
func WriteConflict(w http.ResponseWriter, field, message string) {
	WriteFieldErrors(w, http.StatusConflict, []validate.FieldError{
		{Field: field, Message: message, Severity: validate.SeverityBlocking},
	})
}
