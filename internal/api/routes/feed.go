package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/snarfed/bluesky-atom/internal/api/handlers/feed"
	"github.com/snarfed/bluesky-atom/internal/api/middleware"
	feedsCore "github.com/snarfed/bluesky-atom/internal/core/feeds"
)

// RegisterFeedRoutes registers the Atom feed endpoint.
func RegisterFeedRoutes(r chi.Router, service feedsCore.Service, cache *middleware.ResponseCache) {
	getFeedHandler := feed.NewGetFeedHandler(service)

	// GET /feed?feed_id=...&replies=...&reposts=...
	// Responses are cached per exact query string.
	r.With(cache.Middleware).Get("/feed", getFeedHandler.HandleGetFeed)
}
