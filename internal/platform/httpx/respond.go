// Package httpx provides the JSON response envelope shared by every handler.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// Envelope is the uniform success response shape.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

// ErrorEnvelope is the uniform error response shape.
type ErrorEnvelope struct {
	Success bool         `json:"success"`
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Respond sends a success envelope. A nil data value serializes as null,
// which deletion endpoints rely on.
func Respond(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// DecodeJSON decodes a JSON request body into target. Malformed or empty
// bodies surface as validation errors so handlers never see a raw decode
// failure.
func DecodeJSON(r *http.Request, target any) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return ValidationError("request body is required", nil)
		}
		return ValidationError("invalid JSON body", nil)
	}
	return nil
}
