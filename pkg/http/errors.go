package http

import (
	"encoding/json"
	"net/http"
)

// Error codes returned in ErrorResponse.Error
const (
	CodeBadRequest     = "bad_request"
	CodeNotFound       = "not_found"
	CodeConflict       = "conflict"
	CodeRateLimited    = "rate_limit_exceeded"
	CodeInternal       = "internal_error"
	CodeUpstream       = "upstream_error"  // the GraphQL API failed a table load
	CodeMutationFailed = "mutation_failed" // the GraphQL API rejected a post mutation
)

// ErrorResponse is the envelope for every non-2xx response of the session API
type ErrorResponse struct {
	Error   string `json:"error"`             // One of the Code* constants
	Message string `json:"message"`           // Text the table UI shows, e.g. "Failed to save post"
	Details string `json:"details,omitempty"` // Validation detail, when there is one
}

// WriteJSON writes v as a JSON body with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a JSON error response with the given status code
func WriteError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	WriteErrorWithDetails(w, statusCode, errorCode, message, "")
}

// WriteErrorWithDetails writes a JSON error response with additional details
func WriteErrorWithDetails(w http.ResponseWriter, statusCode int, errorCode, message, details string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
		Details: details,
	})
}

// WriteBadRequest covers malformed bodies, unknown tabs, operators and
// columns, and invalid post titles.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeBadRequest, message)
}

// WriteNotFound covers unknown or expired sessions and posts not on screen.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// WriteConflict reports a confirmation id that is no longer pending.
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeConflict, message)
}

func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, CodeRateLimited, message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternal, message)
}

// WriteUpstreamError reports a table load the GraphQL API failed.
func WriteUpstreamError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadGateway, CodeUpstream, message)
}

// WriteMutationFailed reports a post mutation the GraphQL API failed. The
// message is the notice the UI shows; session state is left for a retry.
func WriteMutationFailed(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadGateway, CodeMutationFailed, message)
}
