package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/strefethen/home-hub-go/internal/apperrors"
)

// ErrorResponse wraps an error body for serialization.
type ErrorResponse struct {
	Error apperrors.ErrorBody `json:"error"`
}

// ListResponse is the list envelope for all collection endpoints.
// Example: {"object": "list", "data": [...], "has_more": false, "url": "/v1/audit/events"}
type ListResponse struct {
	Object  string `json:"object"`
	Data    any    `json:"data"`
	HasMore bool   `json:"has_more"`
	URL     string `json:"url"`
}

// WriteJSON sends a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}

// WriteError serializes an AppError into the JSON error response.
// Response format: {"error": {"type": "...", "code": "...", "message": "..."}}
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.EnsureAppError(err)
	_ = WriteJSON(w, appErr.StatusCode, ErrorResponse{Error: appErr.ErrorBody()})
}

// WriteList writes a list response.
func WriteList(w http.ResponseWriter, url string, data any, hasMore bool) error {
	return WriteJSON(w, http.StatusOK, ListResponse{
		Object:  "list",
		Data:    data,
		HasMore: hasMore,
		URL:     url,
	})
}

// WriteAction writes an action result directly. The result should already
// have an "object" field set.
func WriteAction(w http.ResponseWriter, status int, result any) error {
	return WriteJSON(w, status, result)
}

// RFC3339Millis formats a timestamp with millisecond precision in UTC.
func RFC3339Millis(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
