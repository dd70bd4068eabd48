package feeds

import "strings"

// PostProcessor mutates the activity list after fetch/filter and before
// serialization. Deployment-specific patches live here so the core fetch
// path stays generic.
type PostProcessor func(feed *Feed, activities []Activity) []Activity

// NewLinkRewriter returns a PostProcessor that rewrites deep-link hosts in
// activity URLs and text, but only for feeds owned by the given handle.
// Used to point links at a production domain when the upstream service
// returns staging URLs.
func NewLinkRewriter(handle, fromHost, toHost string) PostProcessor {
	handle = strings.ToLower(strings.TrimSpace(handle))
	return func(feed *Feed, activities []Activity) []Activity {
		if handle == "" || fromHost == "" || toHost == "" || feed.Handle != handle {
			return activities
		}
		for i := range activities {
			rewriteLinks(&activities[i], fromHost, toHost)
		}
		return activities
	}
}

func rewriteLinks(a *Activity, fromHost, toHost string) {
	a.URL = strings.ReplaceAll(a.URL, fromHost, toHost)
	a.Text = strings.ReplaceAll(a.Text, fromHost, toHost)
	if a.Object != nil {
		rewriteLinks(a.Object, fromHost, toHost)
	}
}
