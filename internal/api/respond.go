package api

import (
	"encoding/json"
	"net/http"
)

// errorResponse is the uniform error payload: an alphabetically sorted
// list of human-readable violation messages.
type errorResponse struct {
	Errors []string `json:"errors"`
}

// respondJSON writes v as application/json with the given status.
// Encoding goes directly to the response writer; statuses that must not
// carry a body (204, 304) are written header-only, without a content type.
func respondJSON(w http.ResponseWriter, status int, v any) {
	if status == 0 {
		status = http.StatusOK
	}

	switch status {
	case http.StatusNoContent, http.StatusNotModified:
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondViolations writes the 400 validation payload.
func respondViolations(w http.ResponseWriter, violations []string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Errors: violations})
}

// respondNotFound writes a bodyless 404.
func respondNotFound(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
}

// respondServerError writes a generic 500. Store failures are not
// classified further at this layer.
func respondServerError(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
