package web

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response. The Content-Type header must be set
// before WriteHeader flushes the header block.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps a service-layer error onto a JSON response. "not
// found" errors become 404, everything else 422.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	msg := err.Error()
	if isNotFound(msg) {
		writeError(w, r, msg, "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeError(w, r, msg, "UNPROCESSABLE", http.StatusUnprocessableEntity)
}

func isNotFound(msg string) bool {
	return len(msg) >= 9 && msg[len(msg)-9:] == "not found"
}
