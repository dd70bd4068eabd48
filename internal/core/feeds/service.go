package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const defaultTimelineLimit = 50

type feedService struct {
	repo     Repository
	clients  ClientProvider
	limit    int64
	postProc []PostProcessor
}

// NewFeedService creates a new feed service. limit caps how many timeline
// entries are fetched per request; zero means the default.
func NewFeedService(repo Repository, clients ClientProvider, limit int64, postProc ...PostProcessor) Service {
	if limit <= 0 {
		limit = defaultTimelineLimit
	}
	return &feedService{
		repo:     repo,
		clients:  clients,
		limit:    limit,
		postProc: postProc,
	}
}

// GenerateFeed validates a (handle, app password) pair and returns its feed
// record, creating and persisting one on first use.
func (s *feedService) GenerateFeed(ctx context.Context, req GenerateFeedRequest) (*Feed, error) {
	// Normalize handle the same way everywhere, otherwise the same account
	// would get duplicate records depending on how the user typed it.
	handle := strings.TrimSpace(strings.ToLower(req.Handle))
	password := strings.TrimSpace(req.AppPassword)

	if handle == "" {
		return nil, NewValidationError("handle", "handle is required")
	}
	if password == "" {
		return nil, NewValidationError("password", "password is required")
	}

	// Lookup-before-insert dedup: a second generate with the same pair
	// returns the existing record untouched.
	existing, err := s.repo.FindByCredentials(ctx, handle, password)
	if err == nil {
		return existing, nil
	}
	if err != ErrFeedNotFound {
		return nil, fmt.Errorf("failed to look up feed: %w", err)
	}

	feed := &Feed{Handle: handle, AppPassword: password}

	// Validate the credentials by building a client. AuthError propagates to
	// the handler, which turns it into a 502 with the upstream message.
	client, err := s.clients.GetClient(ctx, handle, password, nil, s.sessionSaver(feed))
	if err != nil {
		return nil, err
	}

	// Persist the record along with the session the handshake minted, so the
	// first feed fetch reuses it instead of authenticating again.
	feed.SetSession(client.Session())
	if _, err := s.repo.Create(ctx, feed); err != nil {
		return nil, fmt.Errorf("failed to create feed: %w", err)
	}

	slog.Info("registered feed", "id", feed.ID, "handle", feed.Handle)
	return feed, nil
}

// GetFeed resolves a feed ID, fetches the timeline, and applies reply/repost
// filtering and any post-processing hooks.
func (s *feedService) GetFeed(ctx context.Context, req GetFeedRequest) ([]Activity, error) {
	if req.FeedID < 0 {
		return nil, NewValidationError("feed_id", "feed_id must be a non-negative integer")
	}

	feed, err := s.repo.GetByID(ctx, req.FeedID)
	if err != nil {
		if err == ErrFeedNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load feed %d: %w", req.FeedID, err)
	}

	client, err := s.clients.GetClient(ctx, feed.Handle, feed.AppPassword, feed.Session(), s.sessionSaver(feed))
	if err != nil {
		return nil, err
	}

	activities, err := client.GetTimeline(ctx, s.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch timeline for feed %d: %w", feed.ID, err)
	}
	slog.Info("fetched timeline", "feed", feed.ID, "activities", len(activities))

	activities = Filter(activities, req.IncludeReplies, req.IncludeReposts)
	for _, proc := range s.postProc {
		activities = proc(feed, activities)
	}

	return activities, nil
}

// sessionSaver returns a SessionSaver bound to a feed record. Before the
// record is persisted (ID zero) there is nowhere to save to yet; GenerateFeed
// persists the minted session as part of Create instead.
func (s *feedService) sessionSaver(feed *Feed) SessionSaver {
	return func(ctx context.Context, sess Session) error {
		feed.SetSession(sess)
		if feed.ID == 0 {
			return nil
		}
		if err := s.repo.SaveSession(ctx, feed.ID, sess); err != nil {
			return fmt.Errorf("failed to save session for feed %d: %w", feed.ID, err)
		}
		return nil
	}
}

// Filter drops replies and reposts unless the corresponding flag asks for
// them. Classification goes through EffectiveKind, so a post wrapping a
// comment counts as a reply.
func Filter(activities []Activity, includeReplies, includeReposts bool) []Activity {
	kept := make([]Activity, 0, len(activities))
	for _, a := range activities {
		switch a.EffectiveKind() {
		case KindComment:
			if !includeReplies {
				continue
			}
		case KindShare:
			if !includeReposts {
				continue
			}
		}
		kept = append(kept, a)
	}
	return kept
}
