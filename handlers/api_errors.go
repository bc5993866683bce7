package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// MessageResponse is the body of every error response and of responses that
// carry no document.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding JSON response", "error", err)
		}
	}
}

// WriteMessage writes {"message": message} with the given HTTP status.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Message: message})
}
