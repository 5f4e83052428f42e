// Package shared holds the JSON envelope helpers every handler uses, so the
// error shape and status mapping stay identical across route groups.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "canopy/pkg/domain-errors"
)

// ErrorResponse is the uniform error envelope. Code is one of the closed
// domain error codes; Message is a short human hint and carries no contract.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteError translates a domain error into its fixed HTTP status and the
// JSON envelope. Non-domain errors surface as Internal.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	msg := ""
	if code != dErrors.CodeInternal {
		msg = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.HTTPStatus(code))
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: string(code), Message: msg})
}

// WriteNotFound covers optional-read endpoints whose records have no
// dedicated domain code (relationships, completions).
func WriteNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "NotFound"})
}

// WriteJSON writes a success payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
