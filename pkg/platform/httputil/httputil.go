// Package httputil centralizes JSON response writing so every handler produces
// the same envelopes and the same error translation.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "atlas/pkg/domain-errors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into an HTTP error envelope. Internal
// failures omit the description so storage detail never leaks; every other code
// includes it (an upstream-unavailable 503 names the failing source, a 404 names
// the missing resource).
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)

	body := map[string]string{"error": string(code)}
	if code != dErrors.CodeInternal {
		var de *dErrors.DomainError
		if errors.As(err, &de) && de.Message != "" {
			body["error_description"] = de.Message
		}
	}
	WriteJSON(w, status, body)
}
