package feed

import (
	"net/http"
	"strconv"

	"github.com/snarfed/bluesky-atom/internal/atom"
	"github.com/snarfed/bluesky-atom/internal/core/feeds"
)

// FeedTitle is the fixed feed-level title of every generated document.
const FeedTitle = "bluesky-atom feed"

// GetFeedHandler serves registered feeds as Atom documents
type GetFeedHandler struct {
	service feeds.Service
}

// NewGetFeedHandler creates a new feed handler
func NewGetFeedHandler(service feeds.Service) *GetFeedHandler {
	return &GetFeedHandler{service: service}
}

// HandleGetFeed serves a registered feed as an Atom document.
// GET /feed?feed_id=<int>[&replies=<bool>][&reposts=<bool>]
func (h *GetFeedHandler) HandleGetFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := parseRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	activities, err := h.service.GetFeed(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	doc, err := atom.Render(activities, atom.FeedInfo{
		Title:      FeedTitle,
		HostURL:    hostURL(r),
		RequestURL: requestURL(r),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/atom+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// parseRequest parses query parameters into GetFeedRequest
func parseRequest(r *http.Request) (feeds.GetFeedRequest, error) {
	q := r.URL.Query()

	idStr := q.Get("feed_id")
	if idStr == "" {
		return feeds.GetFeedRequest{}, feeds.NewValidationError("feed_id", "feed_id parameter is required")
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 0 {
		return feeds.GetFeedRequest{}, feeds.NewValidationError("feed_id", "feed_id must be a non-negative integer")
	}

	return feeds.GetFeedRequest{
		FeedID:         id,
		IncludeReplies: ParseFlag(q.Get("replies")),
		IncludeReposts: ParseFlag(q.Get("reposts")),
	}, nil
}
