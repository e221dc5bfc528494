package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError emits the uniform failure body used by every auth and
// authorization rejection.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	})
}
