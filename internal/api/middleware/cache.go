package middleware

import (
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ResponseCache caches successful GET responses per exact request URI for a
// fixed window. Entries are best-effort: concurrent misses may each hit the
// upstream handler, which is acceptable because rendering is idempotent.
type ResponseCache struct {
	entries *expirable.LRU[string, *cachedResponse]
}

type cachedResponse struct {
	status int
	header http.Header
	body   []byte
}

// NewResponseCache creates a response cache holding up to size entries, each
// expiring ttl after insertion.
func NewResponseCache(size int, ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		entries: expirable.NewLRU[string, *cachedResponse](size, nil, ttl),
	}
}

// Middleware returns a caching middleware keyed by method-less request URI
// (path plus raw query). Only 200 responses to GET requests are stored.
func (c *ResponseCache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		key := r.URL.RequestURI()
		if cached, ok := c.entries.Get(key); ok {
			writeCached(w, cached)
			return
		}

		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if rec.status == http.StatusOK {
			c.entries.Add(key, &cachedResponse{
				status: rec.status,
				header: rec.Header().Clone(),
				body:   rec.body,
			})
		}
	})
}

func writeCached(w http.ResponseWriter, cached *cachedResponse) {
	for k, vals := range cached.header {
		for _, v := range vals {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("X-Cache", "HIT")
	w.WriteHeader(cached.status)
	if _, err := w.Write(cached.body); err != nil {
		// Client went away; nothing to do.
		return
	}
}

// responseRecorder tees the response body so it can be cached while still
// streaming to the client.
type responseRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        []byte
}

func (r *responseRecorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	r.body = append(r.body, b...)
	return r.ResponseWriter.Write(b)
}
