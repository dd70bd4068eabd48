package feed

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/snarfed/bluesky-atom/internal/core/feeds"
)

// ErrorResponse is the JSON body for error responses
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := ErrorResponse{Error: errorType, Message: message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("ERROR: Failed to encode error response: %v", err)
	}
}

// handleServiceError maps service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case feeds.IsValidationError(err):
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
	case errors.Is(err, feeds.ErrFeedNotFound):
		writeError(w, http.StatusNotFound, "FeedNotFound", "No feed exists with that feed_id")
	case feeds.IsAuthError(err):
		// A stored session the upstream no longer accepts; the user has to
		// regenerate their feed with fresh credentials.
		writeError(w, http.StatusBadGateway, "UpstreamAuthFailed", err.Error())
	default:
		log.Printf("ERROR: Feed service error: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalServerError", "An error occurred while fetching the feed")
	}
}
