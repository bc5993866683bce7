package handlers

import (
	"mime"
	"net/http"
)

const msgInvalidContentType = "Invalid content type, expected application/json"

func isJSONRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// RequireJSON rejects requests whose Content-Type is not application/json.
// Parameters such as charset are allowed.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isJSONRequest(r) {
			WriteMessage(w, http.StatusBadRequest, msgInvalidContentType)
			return
		}
		next.ServeHTTP(w, r)
	})
}
