package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/feedkeeper/pkg/domain"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// FeedRepository handles feed-related database operations
type FeedRepository struct {
	db *sqlx.DB
}

// feedSQL represents a feed for SQL operations
type feedSQL struct {
	ID            int64      `db:"id"`
	URL           string     `db:"url"`
	Name          string     `db:"name"`
	Category      *string    `db:"category"`
	IconURL       *string    `db:"icon_url"`
	IsActive      bool       `db:"is_active"`
	LastFetchedAt *time.Time `db:"last_fetched_at"`
	CreatedAt     time.Time  `db:"created_at"`
}

const feedColumns = "id, url, name, category, icon_url, is_active, last_fetched_at, created_at"

// NewFeedRepository creates a new feed repository
func NewFeedRepository(db *sqlx.DB) *FeedRepository {
	return &FeedRepository{db: db}
}

// CreateFeed inserts a new feed and sets its ID
func (r *FeedRepository) CreateFeed(ctx context.Context, feed *domain.Feed) error {
	rec := feedSQL{
		URL:           feed.URL,
		Name:          feed.Name,
		Category:      feed.Category,
		IconURL:       feed.IconURL,
		IsActive:      feed.IsActive,
		LastFetchedAt: utcPtr(feed.LastFetchedAt),
	}

	query := `
		INSERT INTO feeds (url, name, category, icon_url, is_active, last_fetched_at)
		VALUES (:url, :name, :category, :icon_url, :is_active, :last_fetched_at)
	`
	var id int64
	err := withRetry(ctx, func() error {
		result, err := r.db.NamedExecContext(ctx, query, rec)
		if err != nil {
			return err
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return fmt.Errorf("create feed: %w", err)
	}

	feed.ID = id
	return nil
}

// GetFeed retrieves a feed by ID
func (r *FeedRepository) GetFeed(ctx context.Context, id int64) (*domain.Feed, error) {
	var rec feedSQL
	err := r.db.GetContext(ctx, &rec, "SELECT "+feedColumns+" FROM feeds WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get feed %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	return rec.toDomain(), nil
}

// ListFeeds returns all feeds ordered by id
func (r *FeedRepository) ListFeeds(ctx context.Context) ([]domain.Feed, error) {
	var recs []feedSQL
	if err := r.db.SelectContext(ctx, &recs, "SELECT "+feedColumns+" FROM feeds ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	return toDomainFeeds(recs), nil
}

// SelectActiveFeeds returns up to limit active feeds, least recently fetched first.
// Never fetched feeds go before all others.
func (r *FeedRepository) SelectActiveFeeds(ctx context.Context, limit int) ([]domain.Feed, error) {
	query := `
		SELECT ` + feedColumns + ` FROM feeds
		WHERE is_active = 1
		ORDER BY last_fetched_at IS NOT NULL, last_fetched_at ASC, id ASC
		LIMIT ?
	`
	var recs []feedSQL
	if err := r.db.SelectContext(ctx, &recs, query, limit); err != nil {
		return nil, fmt.Errorf("select active feeds: %w", err)
	}
	return toDomainFeeds(recs), nil
}

// SelectFeedsMissingIcon returns active feeds without an icon
func (r *FeedRepository) SelectFeedsMissingIcon(ctx context.Context) ([]domain.Feed, error) {
	query := `
		SELECT ` + feedColumns + ` FROM feeds
		WHERE is_active = 1 AND (icon_url IS NULL OR icon_url = '')
		ORDER BY id
	`
	var recs []feedSQL
	if err := r.db.SelectContext(ctx, &recs, query); err != nil {
		return nil, fmt.Errorf("select feeds missing icon: %w", err)
	}
	return toDomainFeeds(recs), nil
}

// UpdateFeed sets the non-nil fields of upd on the feed
func (r *FeedRepository) UpdateFeed(ctx context.Context, id int64, upd domain.FeedUpdate) error {
	if upd.Empty() {
		return nil
	}

	var sets []string
	var args []any
	if upd.LastFetchedAt != nil {
		sets = append(sets, "last_fetched_at = ?")
		args = append(args, upd.LastFetchedAt.UTC())
	}
	if upd.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *upd.IsActive)
	}
	if upd.IconURL != nil {
		sets = append(sets, "icon_url = ?")
		args = append(args, *upd.IconURL)
	}
	args = append(args, id)
	query := "UPDATE feeds SET " + strings.Join(sets, ", ") + " WHERE id = ?"

	err := withRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return fmt.Errorf("update feed %d: %w", id, err)
	}
	return nil
}

func (f feedSQL) toDomain() *domain.Feed {
	return &domain.Feed{
		ID:            f.ID,
		URL:           f.URL,
		Name:          f.Name,
		Category:      f.Category,
		IconURL:       f.IconURL,
		IsActive:      f.IsActive,
		LastFetchedAt: f.LastFetchedAt,
		CreatedAt:     f.CreatedAt,
	}
}

func toDomainFeeds(recs []feedSQL) []domain.Feed {
	feeds := make([]domain.Feed, len(recs))
	for i, rec := range recs {
		feeds[i] = *rec.toDomain()
	}
	return feeds
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
