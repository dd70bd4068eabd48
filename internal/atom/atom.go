// Package atom renders normalized activities as an Atom document. The XML
// serialization itself is delegated to gorilla/feeds; this package only maps
// activity fields onto feed entries.
package atom

import (
	"fmt"
	"strings"
	"time"

	gorillafeeds "github.com/gorilla/feeds"

	feedsCore "github.com/snarfed/bluesky-atom/internal/core/feeds"
)

// FeedInfo carries the request-level metadata embedded in the document.
type FeedInfo struct {
	// Title is the feed-level <title>.
	Title string
	// HostURL is the serving site's base URL, used as the feed ID.
	HostURL string
	// RequestURL is the full URL of the request being served, used as the
	// feed's self link.
	RequestURL string
}

const maxTitleLen = 100

// Render converts activities into an Atom XML document. Shares render the
// wrapped post's content attributed to the wrapped author, with the share
// timestamp.
func Render(activities []feedsCore.Activity, info FeedInfo) (string, error) {
	feed := &gorillafeeds.Feed{
		Title:   info.Title,
		Id:      info.HostURL,
		Link:    &gorillafeeds.Link{Href: info.RequestURL, Rel: "self"},
		Updated: latestTime(activities),
	}

	for i := range activities {
		a := &activities[i]
		content := a.Content()
		feed.Items = append(feed.Items, &gorillafeeds.Item{
			Id:      a.URI,
			Title:   entryTitle(content),
			Link:    &gorillafeeds.Link{Href: content.URL},
			Author:  &gorillafeeds.Author{Name: authorName(content.Author)},
			Content: content.Text,
			Created: a.CreatedAt,
			Updated: a.CreatedAt,
		})
	}

	doc, err := feed.ToAtom()
	if err != nil {
		return "", fmt.Errorf("failed to render atom feed: %w", err)
	}
	return doc, nil
}

// entryTitle derives an entry title from the first line of the post text,
// truncated to a readable length.
func entryTitle(a *feedsCore.Activity) string {
	title := a.Text
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	title = strings.TrimSpace(title)
	if runes := []rune(title); len(runes) > maxTitleLen {
		title = string(runes[:maxTitleLen]) + "…"
	}
	if title == "" {
		title = authorName(a.Author)
	}
	return title
}

func authorName(a feedsCore.Author) string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Handle
}

func latestTime(activities []feedsCore.Activity) time.Time {
	var latest time.Time
	for _, a := range activities {
		if a.CreatedAt.After(latest) {
			latest = a.CreatedAt
		}
	}
	if latest.IsZero() {
		return time.Now().UTC()
	}
	return latest
}
