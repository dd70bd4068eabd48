package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResponseCache_ServesCachedCopy(t *testing.T) {
	hits := 0
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte("feed body"))
	})

	cache := NewResponseCache(16, time.Minute)
	handler := cache.Middleware(upstream)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/feed?feed_id=1", nil))
		assert.Equal(t, 200, w.Code)
		assert.Equal(t, "feed body", w.Body.String())
		assert.Equal(t, "application/atom+xml", w.Header().Get("Content-Type"))
	}

	assert.Equal(t, 1, hits)
}

func TestResponseCache_KeyIsExactQueryString(t *testing.T) {
	hits := 0
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("ok"))
	})

	cache := NewResponseCache(16, time.Minute)
	handler := cache.Middleware(upstream)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/feed?feed_id=1", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/feed?feed_id=1&replies=true", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/feed?feed_id=2", nil))

	assert.Equal(t, 3, hits)
}

func TestResponseCache_ExpiryTriggersRefetch(t *testing.T) {
	hits := 0
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("ok"))
	})

	cache := NewResponseCache(16, 50*time.Millisecond)
	handler := cache.Middleware(upstream)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/feed?feed_id=1", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/feed?feed_id=1", nil))
	assert.Equal(t, 1, hits)

	time.Sleep(120 * time.Millisecond)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/feed?feed_id=1", nil))
	assert.Equal(t, 2, hits)
}

func TestResponseCache_SkipsNonGETAndErrors(t *testing.T) {
	hits := 0
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Query().Get("fail") != "" {
			http.Error(w, "nope", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})

	cache := NewResponseCache(16, time.Minute)
	handler := cache.Middleware(upstream)

	// POSTs pass straight through.
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/generate", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/generate", nil))
	assert.Equal(t, 2, hits)

	// Error responses are never stored.
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/feed?fail=1", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/feed?fail=1", nil))
	assert.Equal(t, 4, hits)
}
