// Package bsky builds authenticated Bluesky clients on top of indigo's XRPC
// client and normalizes timeline responses into the feed domain's activity
// types. Session management (createSession, refreshSession, token plumbing)
// is delegated to indigo; this package decides when to authenticate, when to
// reuse a stored session, and when to persist rotated tokens.
package bsky

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	comatproto "github.com/bluesky-social/indigo/api/atproto"
	appbsky "github.com/bluesky-social/indigo/api/bsky"
	"github.com/bluesky-social/indigo/xrpc"

	"github.com/snarfed/bluesky-atom/internal/core/feeds"
)

// DefaultHost is the public Bluesky entryway PDS.
const DefaultHost = "https://bsky.social"

// Factory builds authenticated clients against a fixed PDS host.
type Factory struct {
	host string
}

// NewFactory creates a client factory for the given PDS host. An empty host
// selects the public Bluesky service.
func NewFactory(host string) *Factory {
	if host == "" {
		host = DefaultHost
	}
	return &Factory{host: host}
}

// NewClient builds an authenticated client for a (handle, appPassword) pair.
//
// When stored holds a complete token pair the client is constructed from it
// without any network call; expired tokens are handled lazily by the
// refresh-and-retry path in GetTimeline. Otherwise the factory performs a
// createSession handshake and reports the minted session through onRefresh.
//
// Credential rejection by the PDS surfaces as a feeds.AuthError.
func (f *Factory) NewClient(ctx context.Context, handle, appPassword string, stored *feeds.Session, onRefresh feeds.SessionSaver) (feeds.Client, error) {
	xc := &xrpc.Client{Host: f.host}

	if stored != nil && stored.AccessJwt != "" && stored.RefreshJwt != "" {
		xc.Auth = &xrpc.AuthInfo{
			Handle:     handle,
			Did:        stored.DID,
			AccessJwt:  stored.AccessJwt,
			RefreshJwt: stored.RefreshJwt,
		}
		return &client{xc: xc, onRefresh: onRefresh}, nil
	}

	out, err := comatproto.ServerCreateSession(ctx, xc, &comatproto.ServerCreateSession_Input{
		Identifier: handle,
		Password:   appPassword,
	})
	if err != nil {
		return nil, wrapAuthError(err)
	}

	xc.Auth = &xrpc.AuthInfo{
		Handle:     out.Handle,
		Did:        out.Did,
		AccessJwt:  out.AccessJwt,
		RefreshJwt: out.RefreshJwt,
	}
	c := &client{xc: xc, onRefresh: onRefresh}

	if onRefresh != nil {
		if err := onRefresh(ctx, c.Session()); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// client implements feeds.Client over an authenticated xrpc.Client.
//
// Cached clients are shared across requests, so the xrpc.Client is treated as
// immutable once published: refreshSession swaps in a freshly built one under
// mu instead of mutating Auth fields an in-flight fetch may be reading.
type client struct {
	mu        sync.Mutex
	xc        *xrpc.Client
	onRefresh feeds.SessionSaver
}

var _ feeds.Client = (*client)(nil)

// api returns the current xrpc.Client snapshot.
func (c *client) api() *xrpc.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.xc
}

// Session returns the client's current token pair.
func (c *client) Session() feeds.Session {
	xc := c.api()
	return feeds.Session{
		DID:        xc.Auth.Did,
		AccessJwt:  xc.Auth.AccessJwt,
		RefreshJwt: xc.Auth.RefreshJwt,
	}
}

// SetOnRefresh re-points the persistence callback at the current request's
// saver. Cached clients outlive the request that built them, so each reuse
// rebinds the callback before any refresh can fire.
func (c *client) SetOnRefresh(onRefresh feeds.SessionSaver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRefresh = onRefresh
}

// GetTimeline fetches the user's home timeline and normalizes it. If the
// access token has expired the session is refreshed once and the fetch
// retried; any rotated tokens are persisted through onRefresh.
func (c *client) GetTimeline(ctx context.Context, limit int64) ([]feeds.Activity, error) {
	xc := c.api()
	out, err := appbsky.FeedGetTimeline(ctx, xc, "", "", limit)
	if err != nil && isExpiredToken(err) {
		slog.Info("access token expired, refreshing session", "handle", xc.Auth.Handle)
		if rerr := c.refreshSession(ctx, xc); rerr != nil {
			return nil, rerr
		}
		out, err = appbsky.FeedGetTimeline(ctx, c.api(), "", "", limit)
	}
	if err != nil {
		return nil, wrapXRPCError(err, "getTimeline")
	}

	activities := make([]feeds.Activity, 0, len(out.Feed))
	for _, item := range out.Feed {
		if a, ok := toActivity(item); ok {
			activities = append(activities, a)
		}
	}
	return activities, nil
}

// refreshSession rotates the token pair via com.atproto.server.refreshSession,
// which authenticates with the refresh JWT instead of the access JWT.
//
// stale is the snapshot whose access token was rejected. When several fetches
// hit ExpiredToken at once only the first rotates; the rest find the snapshot
// already replaced and retry with it.
func (c *client) refreshSession(ctx context.Context, stale *xrpc.Client) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.xc != stale {
		return nil
	}

	refreshClient := &xrpc.Client{
		Host: c.xc.Host,
		Auth: &xrpc.AuthInfo{
			Handle:     c.xc.Auth.Handle,
			Did:        c.xc.Auth.Did,
			AccessJwt:  c.xc.Auth.RefreshJwt,
			RefreshJwt: c.xc.Auth.RefreshJwt,
		},
	}

	out, err := comatproto.ServerRefreshSession(ctx, refreshClient)
	if err != nil {
		return wrapAuthError(err)
	}

	c.xc = &xrpc.Client{
		Host: c.xc.Host,
		Auth: &xrpc.AuthInfo{
			Handle:     out.Handle,
			Did:        out.Did,
			AccessJwt:  out.AccessJwt,
			RefreshJwt: out.RefreshJwt,
		},
	}

	if c.onRefresh != nil {
		sess := feeds.Session{DID: out.Did, AccessJwt: out.AccessJwt, RefreshJwt: out.RefreshJwt}
		if err := c.onRefresh(ctx, sess); err != nil {
			return err
		}
	}
	return nil
}

// toActivity normalizes one timeline entry. Entries whose record cannot be
// decoded as a post are skipped.
func toActivity(item *appbsky.FeedDefs_FeedViewPost) (feeds.Activity, bool) {
	if item == nil || item.Post == nil || item.Post.Record == nil {
		return feeds.Activity{}, false
	}
	post := item.Post

	rec, ok := post.Record.Val.(*appbsky.FeedPost)
	if !ok {
		return feeds.Activity{}, false
	}

	kind := feeds.KindPost
	if rec.Reply != nil {
		kind = feeds.KindComment
	}

	act := feeds.Activity{
		Kind:      kind,
		URI:       post.Uri,
		CID:       post.Cid,
		Text:      rec.Text,
		Author:    toAuthor(post.Author),
		CreatedAt: parseTimestamp(rec.CreatedAt, post.IndexedAt),
	}
	if post.Author != nil {
		act.URL = PostURL(post.Author.Handle, post.Uri)
	}

	// A repost wraps the post in a share activity attributed to the reposter.
	if item.Reason != nil && item.Reason.FeedDefs_ReasonRepost != nil {
		repost := item.Reason.FeedDefs_ReasonRepost
		wrapped := act
		return feeds.Activity{
			Kind:      feeds.KindShare,
			URI:       post.Uri,
			CID:       post.Cid,
			URL:       wrapped.URL,
			Author:    toAuthor(repost.By),
			CreatedAt: parseTimestamp(repost.IndexedAt, post.IndexedAt),
			Object:    &wrapped,
		}, true
	}

	return act, true
}

func toAuthor(p *appbsky.ActorDefs_ProfileViewBasic) feeds.Author {
	if p == nil {
		return feeds.Author{}
	}
	a := feeds.Author{DID: p.Did, Handle: p.Handle}
	if p.DisplayName != nil {
		a.DisplayName = *p.DisplayName
	}
	return a
}

// parseTimestamp parses an RFC 3339 timestamp, falling back to the entry's
// indexedAt and then to now. Record timestamps are client-supplied and not
// always well formed.
func parseTimestamp(primary, fallback string) time.Time {
	for _, s := range []string{primary, fallback} {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}

// PostURL builds the bsky.app permalink for a post given its author handle
// and AT-URI (at://did/app.bsky.feed.post/<rkey>).
func PostURL(handle, uri string) string {
	rkey := uri
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		rkey = uri[i+1:]
	}
	return fmt.Sprintf("%s/profile/%s/post/%s", AppBaseURL, handle, rkey)
}

// AppBaseURL is the web frontend all rendered permalinks point at. It also
// anchors the generated Atom documents.
const AppBaseURL = "https://bsky.app"
