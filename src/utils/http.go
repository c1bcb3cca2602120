// backend/src/utils/http.go
package utils

import (
	"encoding/json"
	"net/http"

	"github.com/username/gstrecon/backend/src/logger"
)

type jsonError struct {
	Error string `json:"error"`
}

// SendJSONError writes an error message as a JSON body with the given status.
func SendJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(jsonError{Error: message}); err != nil {
		logger.L.Error("Error encoding JSON error response", "error", err)
	}
}

// SendJSONResponse writes a payload as JSON with the given status.
func SendJSONResponse(w http.ResponseWriter, payload any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.L.Error("Error encoding JSON response", "error", err)
	}
}
