package atom

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	feedsCore "github.com/snarfed/bluesky-atom/internal/core/feeds"
)

func TestRender(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	activities := []feedsCore.Activity{
		{
			Kind:      feedsCore.KindPost,
			URI:       "at://did:plc:bob/app.bsky.feed.post/3k",
			URL:       "https://bsky.app/profile/bob.test/post/3k",
			Text:      "first line\nsecond line",
			Author:    feedsCore.Author{Handle: "bob.test", DisplayName: "Bob"},
			CreatedAt: created,
		},
	}

	doc, err := Render(activities, FeedInfo{
		Title:      "bluesky-atom feed",
		HostURL:    "https://feeds.example.com",
		RequestURL: "https://feeds.example.com/feed?feed_id=1",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, "<?xml"))
	assert.Contains(t, doc, "<title>bluesky-atom feed</title>")
	assert.Contains(t, doc, "https://feeds.example.com/feed?feed_id=1")
	assert.Contains(t, doc, "<title>first line</title>")
	assert.Contains(t, doc, "at://did:plc:bob/app.bsky.feed.post/3k")
	assert.Contains(t, doc, "https://bsky.app/profile/bob.test/post/3k")
	assert.Contains(t, doc, "Bob")
}

func TestRender_ShareUsesWrappedContent(t *testing.T) {
	wrapped := feedsCore.Activity{
		Kind:   feedsCore.KindPost,
		URI:    "at://did:plc:dan/app.bsky.feed.post/3s",
		URL:    "https://bsky.app/profile/dan.test/post/3s",
		Text:   "the original post",
		Author: feedsCore.Author{Handle: "dan.test"},
	}
	share := feedsCore.Activity{
		Kind:      feedsCore.KindShare,
		URI:       "at://did:plc:dan/app.bsky.feed.post/3s",
		Author:    feedsCore.Author{Handle: "carol.test"},
		CreatedAt: time.Now().UTC(),
		Object:    &wrapped,
	}

	doc, err := Render([]feedsCore.Activity{share}, FeedInfo{Title: "t", HostURL: "https://x", RequestURL: "https://x/feed"})
	require.NoError(t, err)

	assert.Contains(t, doc, "the original post")
	assert.Contains(t, doc, "dan.test")
}

func TestRender_EmptyFeed(t *testing.T) {
	doc, err := Render(nil, FeedInfo{Title: "t", HostURL: "https://x", RequestURL: "https://x/feed"})
	require.NoError(t, err)
	assert.Contains(t, doc, "<feed")
}

func TestEntryTitle_Truncation(t *testing.T) {
	long := strings.Repeat("x", 150)
	title := entryTitle(&feedsCore.Activity{Text: long})
	assert.Equal(t, maxTitleLen+1, len([]rune(title))) // 100 runes plus ellipsis
}
