package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/snarfed/bluesky-atom/internal/core/feeds"
)

type postgresFeedRepo struct {
	db *sql.DB
}

// NewFeedRepository creates a new PostgreSQL feed repository
func NewFeedRepository(db *sql.DB) feeds.Repository {
	return &postgresFeedRepo{db: db}
}

const feedColumns = `id, handle, app_password, did, access_jwt, refresh_jwt, created_at, updated_at`

// Create inserts a new feed record, including any session the validation
// handshake minted, and fills in the generated ID and timestamps.
func (r *postgresFeedRepo) Create(ctx context.Context, feed *feeds.Feed) (*feeds.Feed, error) {
	query := `
		INSERT INTO feeds (handle, app_password, did, access_jwt, refresh_jwt)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		feed.Handle, feed.AppPassword,
		nullable(feed.DID), nullable(feed.AccessJwt), nullable(feed.RefreshJwt)).
		Scan(&feed.ID, &feed.CreatedAt, &feed.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed: %w", err)
	}

	return feed, nil
}

// FindByCredentials looks up the record for a (handle, appPassword) pair.
// If duplicates exist despite lookup-before-insert, the oldest record wins.
func (r *postgresFeedRepo) FindByCredentials(ctx context.Context, handle, appPassword string) (*feeds.Feed, error) {
	query := `SELECT ` + feedColumns + ` FROM feeds WHERE handle = $1 AND app_password = $2 ORDER BY id LIMIT 1`
	return r.scanFeed(r.db.QueryRowContext(ctx, query, handle, appPassword))
}

// GetByID retrieves a feed record by its numeric identifier.
func (r *postgresFeedRepo) GetByID(ctx context.Context, id int64) (*feeds.Feed, error) {
	query := `SELECT ` + feedColumns + ` FROM feeds WHERE id = $1`
	return r.scanFeed(r.db.QueryRowContext(ctx, query, id))
}

// SaveSession overwrites the stored session tokens after a mint or refresh.
func (r *postgresFeedRepo) SaveSession(ctx context.Context, id int64, sess feeds.Session) error {
	query := `
		UPDATE feeds
		SET did = $2, access_jwt = $3, refresh_jwt = $4, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id,
		nullable(sess.DID), nullable(sess.AccessJwt), nullable(sess.RefreshJwt))
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if rows == 0 {
		return feeds.ErrFeedNotFound
	}

	return nil
}

func (r *postgresFeedRepo) scanFeed(row *sql.Row) (*feeds.Feed, error) {
	feed := &feeds.Feed{}
	var did, accessJwt, refreshJwt sql.NullString

	err := row.Scan(&feed.ID, &feed.Handle, &feed.AppPassword,
		&did, &accessJwt, &refreshJwt, &feed.CreatedAt, &feed.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, feeds.ErrFeedNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	feed.DID = did.String
	feed.AccessJwt = accessJwt.String
	feed.RefreshJwt = refreshJwt.String

	return feed, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
