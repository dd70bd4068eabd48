package feeds

import "context"

// Repository defines the interface for feed record persistence
type Repository interface {
	// FindByCredentials looks up the record for a (handle, appPassword) pair.
	// Returns ErrFeedNotFound if no record exists.
	FindByCredentials(ctx context.Context, handle, appPassword string) (*Feed, error)

	// GetByID retrieves a record by its numeric identifier.
	// Returns ErrFeedNotFound if no record exists.
	GetByID(ctx context.Context, id int64) (*Feed, error)

	// Create inserts a new record and fills in ID and timestamps on the
	// passed Feed. Dedup is lookup-before-insert; Create does not check.
	Create(ctx context.Context, feed *Feed) (*Feed, error)

	// SaveSession overwrites the stored session for a record.
	SaveSession(ctx context.Context, id int64, sess Session) error
}

// Client provides authenticated access to a user's Bluesky timeline.
type Client interface {
	// GetTimeline fetches up to limit normalized activities.
	GetTimeline(ctx context.Context, limit int64) ([]Activity, error)

	// Session returns the client's current token pair.
	Session() Session
}

// ClientProvider hands out authenticated clients, reusing cached instances
// where possible. A stored session, when present, lets the provider build a
// client without a fresh authentication handshake. onRefresh is invoked
// whenever the client mints or rotates tokens.
type ClientProvider interface {
	GetClient(ctx context.Context, handle, appPassword string, stored *Session, onRefresh SessionSaver) (Client, error)
}

// Service defines feed business logic
type Service interface {
	// GenerateFeed validates credentials and returns the feed record for
	// them, creating one on first use.
	GenerateFeed(ctx context.Context, req GenerateFeedRequest) (*Feed, error)

	// GetFeed resolves a feed ID and returns its filtered activities.
	GetFeed(ctx context.Context, req GetFeedRequest) ([]Activity, error)
}
