package feed

import (
	"net/http"
	"strings"
)

// ParseFlag parses a boolean request flag. Missing or empty values are
// false; any other value is true unless it case-insensitively equals one of
// "false", "no", or "off".
func ParseFlag(value string) bool {
	if value == "" {
		return false
	}
	switch strings.ToLower(value) {
	case "false", "no", "off":
		return false
	}
	return true
}

// hostURL reconstructs the serving site's base URL from the request,
// honoring the scheme a fronting proxy reports.
func hostURL(r *http.Request) string {
	return scheme(r) + "://" + r.Host
}

// requestURL reconstructs the full URL of the incoming request.
func requestURL(r *http.Request) string {
	return hostURL(r) + r.URL.RequestURI()
}

func scheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
