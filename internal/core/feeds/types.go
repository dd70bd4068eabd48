package feeds

import (
	"context"
	"time"
)

// Feed is a stored feed registration: a (handle, app password) pair plus the
// most recently minted Bluesky session. One record exists per distinct
// credential pair; records are created on first successful validation and
// never deleted.
type Feed struct {
	ID          int64
	Handle      string
	AppPassword string

	// Session fields, empty until the first successful authentication.
	// Overwritten whenever the client mints or refreshes tokens.
	DID        string
	AccessJwt  string
	RefreshJwt string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session returns the stored session tokens, or nil if the record has never
// held a complete session.
func (f *Feed) Session() *Session {
	if f.AccessJwt == "" || f.RefreshJwt == "" {
		return nil
	}
	return &Session{DID: f.DID, AccessJwt: f.AccessJwt, RefreshJwt: f.RefreshJwt}
}

// SetSession copies session tokens onto the record.
func (f *Feed) SetSession(sess Session) {
	f.DID = sess.DID
	f.AccessJwt = sess.AccessJwt
	f.RefreshJwt = sess.RefreshJwt
}

// Session holds the token pair issued by com.atproto.server.createSession or
// refreshSession.
type Session struct {
	DID        string
	AccessJwt  string
	RefreshJwt string
}

// SessionSaver persists a rotated session. The client factory calls it every
// time tokens are minted or refreshed so durable storage converges on the
// live tokens.
type SessionSaver func(ctx context.Context, sess Session) error

// ActivityKind classifies a timeline activity.
type ActivityKind string

const (
	KindPost    ActivityKind = "post"
	KindComment ActivityKind = "comment"
	KindShare   ActivityKind = "share"
	KindUpdate  ActivityKind = "update"
)

// Author identifies the account behind an activity.
type Author struct {
	DID         string
	Handle      string
	DisplayName string
}

// Activity is a normalized timeline entry. Shares and updates wrap the
// underlying post in Object; plain posts and comments carry their content
// directly.
type Activity struct {
	Kind      ActivityKind
	URI       string
	CID       string
	URL       string
	Text      string
	Author    Author
	CreatedAt time.Time

	// Object is the wrapped activity for share/update kinds, nil otherwise.
	Object *Activity
}

// EffectiveKind resolves one level of wrapping: a post or update that wraps
// another object classifies as the wrapped object's kind. Shares always
// classify as shares.
func (a *Activity) EffectiveKind() ActivityKind {
	if (a.Kind == KindPost || a.Kind == KindUpdate) && a.Object != nil {
		return a.Object.Kind
	}
	return a.Kind
}

// Content returns the activity whose text and link should be rendered: the
// wrapped post for shares, the activity itself otherwise.
func (a *Activity) Content() *Activity {
	if a.Kind == KindShare && a.Object != nil {
		return a.Object
	}
	return a
}

// GenerateFeedRequest is the input for registering a feed.
type GenerateFeedRequest struct {
	Handle      string
	AppPassword string
}

// GetFeedRequest is the input for fetching a registered feed's activities.
type GetFeedRequest struct {
	FeedID         int64
	IncludeReplies bool
	IncludeReposts bool
}
