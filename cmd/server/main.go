package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/snarfed/bluesky-atom/internal/api/middleware"
	"github.com/snarfed/bluesky-atom/internal/api/routes"
	"github.com/snarfed/bluesky-atom/internal/atproto/bsky"
	"github.com/snarfed/bluesky-atom/internal/config"
	"github.com/snarfed/bluesky-atom/internal/core/feeds"
	"github.com/snarfed/bluesky-atom/internal/db/migrations"
	postgresRepo "github.com/snarfed/bluesky-atom/internal/db/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: ", err)
	}

	log.Println("Connected to database")

	// Run migrations
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal("Failed to set goose dialect: ", err)
	}
	if err := goose.Up(db, "."); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	log.Println("Migrations completed successfully")

	// Session cache: one eviction policy per process, size-bounded or
	// time-bounded.
	var clientCache *bsky.ClientCache
	switch cfg.SessionCachePolicy {
	case config.SessionCachePolicyTTL:
		clientCache = bsky.NewExpiringClientCache(cfg.SessionCacheTTL)
	default:
		clientCache, err = bsky.NewLRUClientCache(cfg.SessionCacheSize)
		if err != nil {
			log.Fatal("Failed to create session cache: ", err)
		}
	}

	clientProvider := bsky.NewProvider(bsky.NewFactory(cfg.BlueskyHost), clientCache)
	feedRepo := postgresRepo.NewFeedRepository(db)

	var postProc []feeds.PostProcessor
	if cfg.RewriteHandle != "" {
		postProc = append(postProc,
			feeds.NewLinkRewriter(cfg.RewriteHandle, cfg.RewriteFromHost, cfg.RewriteToHost))
	}
	feedService := feeds.NewFeedService(feedRepo, clientProvider, cfg.TimelineLimit, postProc...)

	r := chi.NewRouter()

	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)

	// Rate limiting: 100 requests per minute per IP
	rateLimiter := middleware.NewRateLimiter(100, 1*time.Minute)
	r.Use(rateLimiter.Middleware)

	feedCache := middleware.NewResponseCache(512, cfg.FeedCacheTTL)
	homeCache := middleware.NewResponseCache(8, cfg.HomeCacheTTL)

	routes.RegisterFeedRoutes(r, feedService, feedCache)
	routes.RegisterWebRoutes(r, feedService, homeCache)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	fmt.Printf("bluesky-atom starting on %s\n", cfg.ListenAddr)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, r))
}
