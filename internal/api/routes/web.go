package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/snarfed/bluesky-atom/internal/api/middleware"
	feedsCore "github.com/snarfed/bluesky-atom/internal/core/feeds"
	"github.com/snarfed/bluesky-atom/internal/web"
)

// RegisterWebRoutes registers the landing page and the generation endpoint.
func RegisterWebRoutes(r chi.Router, service feedsCore.Service, homeCache *middleware.ResponseCache) {
	templates, err := web.NewTemplates()
	if err != nil {
		panic("failed to load web templates: " + err.Error())
	}

	handlers := web.NewHandlers(templates, service)

	// Landing page, cached for a long window since it's static.
	r.With(homeCache.Middleware).Get("/", handlers.HomeHandler)

	// Feed generation form target. Never cached.
	r.Post("/generate", handlers.GenerateHandler)
}
