package web

import (
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/snarfed/bluesky-atom/internal/api/handlers/feed"
	"github.com/snarfed/bluesky-atom/internal/core/feeds"
)

// Handlers provides HTTP handlers for the bluesky-atom web interface:
// the landing page and the feed generation form target.
type Handlers struct {
	templates *Templates
	service   feeds.Service
}

// NewHandlers creates a new Handlers instance with the provided dependencies.
func NewHandlers(templates *Templates, service feeds.Service) *Handlers {
	return &Handlers{templates: templates, service: service}
}

// HomePageData holds data for the landing page template.
type HomePageData struct {
	Title string
}

// HomeHandler handles GET / and renders the landing page with the
// generation form.
func (h *Handlers) HomeHandler(w http.ResponseWriter, r *http.Request) {
	// Only handle exact root path - let other routes handle their own paths
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := HomePageData{Title: "bluesky-atom"}
	if err := h.templates.Render(w, "index.html", data); err != nil {
		log.Printf("Failed to render landing page: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// GeneratedPageData holds data for the page showing a freshly generated
// feed URL.
type GeneratedPageData struct {
	Handle  string
	FeedURL string
}

// ErrorPageData holds data for the error page.
type ErrorPageData struct {
	Message string
}

// GenerateHandler handles POST /generate: it validates the submitted
// credentials, registers (or reuses) the feed record, and renders the
// shareable feed URL.
func (h *Handlers) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, http.StatusBadRequest, "Could not parse form submission")
		return
	}

	req := feeds.GenerateFeedRequest{
		Handle:      r.PostFormValue("handle"),
		AppPassword: r.PostFormValue("password"),
	}

	result, err := h.service.GenerateFeed(r.Context(), req)
	if err != nil {
		h.handleGenerateError(w, err)
		return
	}

	feedURL := h.buildFeedURL(r, result.ID,
		feed.ParseFlag(r.PostFormValue("replies")),
		feed.ParseFlag(r.PostFormValue("reposts")))

	data := GeneratedPageData{Handle: result.Handle, FeedURL: feedURL}
	if err := h.templates.Render(w, "generated.html", data); err != nil {
		log.Printf("Failed to render generated page: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// buildFeedURL assembles <host>/feed?feed_id=<id> plus whichever optional
// flags were requested truthy.
func (h *Handlers) buildFeedURL(r *http.Request, id int64, replies, reposts bool) string {
	query := url.Values{}
	query.Set("feed_id", strconv.FormatInt(id, 10))
	if replies {
		query.Set("replies", "true")
	}
	if reposts {
		query.Set("reposts", "true")
	}
	return baseURL(r) + "/feed?" + query.Encode()
}

func (h *Handlers) handleGenerateError(w http.ResponseWriter, err error) {
	switch {
	case feeds.IsValidationError(err):
		h.renderError(w, http.StatusBadRequest, err.Error())
	case feeds.IsAuthError(err):
		// Surface the upstream rejection message; nothing was stored.
		slog.Warn("feed generation rejected upstream", "error", err)
		h.renderError(w, http.StatusBadGateway, err.Error())
	default:
		log.Printf("ERROR: Feed generation error: %v", err)
		h.renderError(w, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

func (h *Handlers) renderError(w http.ResponseWriter, status int, message string) {
	// Content type has to go out before the status line.
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Render(w, "error.html", ErrorPageData{Message: message}); err != nil {
		log.Printf("Failed to render error page: %v", err)
	}
}

// baseURL reconstructs the serving site's base URL, honoring the scheme a
// fronting proxy reports.
func baseURL(r *http.Request) string {
	scheme := "http"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
