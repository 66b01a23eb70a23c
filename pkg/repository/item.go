package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/feedkeeper/pkg/domain"
)

// max number of urls bound to a single IN query
const urlChunkSize = 500

// ItemRepository handles item-related database operations
type ItemRepository struct {
	db *sqlx.DB
}

// itemSQL represents an item for SQL operations
type itemSQL struct {
	ID          int64     `db:"id"`
	FeedID      int64     `db:"feed_id"`
	Title       string    `db:"title"`
	URL         string    `db:"url"`
	PublishedAt time.Time `db:"published_at"`
	Author      *string   `db:"author"`
	Summary     *string   `db:"summary"`
	ImageURL    *string   `db:"image_url"`
	CreatedAt   time.Time `db:"created_at"`
}

// feedItemSQL is an item joined with its feed, feed columns are null for orphan items
type feedItemSQL struct {
	itemSQL
	FeedName     *string `db:"feed_name"`
	FeedURL      *string `db:"feed_url"`
	FeedCategory *string `db:"feed_category"`
}

// NewItemRepository creates a new item repository
func NewItemRepository(database *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: database}
}

// UpsertItems inserts items in a single transaction, items with an already stored url are skipped.
// Returns the number of inserted rows.
func (r *ItemRepository) UpsertItems(ctx context.Context, items []domain.Item) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO items (feed_id, title, url, published_at, author, summary, image_url)
		VALUES (:feed_id, :title, :url, :published_at, :author, :summary, :image_url)
		ON CONFLICT(url) DO NOTHING
	`

	var inserted int64
	err := withRetry(ctx, func() error {
		inserted = 0
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

		stmt, err := tx.PrepareNamedContext(ctx, query)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, item := range items {
			rec := itemSQL{
				FeedID:      item.FeedID,
				Title:       item.Title,
				URL:         item.URL,
				PublishedAt: item.PublishedAt.UTC(),
				Author:      item.Author,
				Summary:     item.Summary,
				ImageURL:    item.ImageURL,
			}
			res, err := stmt.ExecContext(ctx, rec)
			if err != nil {
				return fmt.Errorf("insert item %s: %w", item.URL, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			inserted += n
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, fmt.Errorf("upsert items: %w", err)
	}
	return inserted, nil
}

// SelectExistingItemURLs returns the subset of urls already stored
func (r *ItemRepository) SelectExistingItemURLs(ctx context.Context, urls []string) (map[string]bool, error) {
	res := make(map[string]bool)
	for start := 0; start < len(urls); start += urlChunkSize {
		end := min(start+urlChunkSize, len(urls))
		query, args, err := sqlx.In("SELECT url FROM items WHERE url IN (?)", urls[start:end])
		if err != nil {
			return nil, fmt.Errorf("build existing urls query: %w", err)
		}
		var found []string
		if err := r.db.SelectContext(ctx, &found, r.db.Rebind(query), args...); err != nil {
			return nil, fmt.Errorf("select existing urls: %w", err)
		}
		for _, u := range found {
			res[u] = true
		}
	}
	return res, nil
}

// DeleteItemsOlderThan removes items published before cutoff, returns the number of deleted rows
func (r *ItemRepository) DeleteItemsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := withRetry(ctx, func() error {
		res, err := r.db.ExecContext(ctx, "DELETE FROM items WHERE published_at < ?", cutoff.UTC())
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("delete items older than %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return deleted, nil
}

// RecentItems returns the newest items joined with their feed info
func (r *ItemRepository) RecentItems(ctx context.Context, limit int) ([]domain.FeedItem, error) {
	query := `
		SELECT i.id, i.feed_id, i.title, i.url, i.published_at, i.author, i.summary, i.image_url, i.created_at,
			f.name AS feed_name, f.url AS feed_url, f.category AS feed_category
		FROM items i
		LEFT JOIN feeds f ON f.id = i.feed_id
		ORDER BY i.published_at DESC, i.id DESC
		LIMIT ?
	`
	var recs []feedItemSQL
	if err := r.db.SelectContext(ctx, &recs, query, limit); err != nil {
		return nil, fmt.Errorf("get recent items: %w", err)
	}

	res := make([]domain.FeedItem, len(recs))
	for i, rec := range recs {
		res[i] = domain.FeedItem{
			Item:         rec.toDomain(),
			FeedName:     deref(rec.FeedName),
			FeedURL:      deref(rec.FeedURL),
			FeedCategory: rec.FeedCategory,
		}
	}
	return res, nil
}

// CountItems returns the number of stored items
func (r *ItemRepository) CountItems(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM items"); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}

func (it itemSQL) toDomain() domain.Item {
	return domain.Item{
		ID:          it.ID,
		FeedID:      it.FeedID,
		Title:       it.Title,
		URL:         it.URL,
		PublishedAt: it.PublishedAt,
		Author:      it.Author,
		Summary:     it.Summary,
		ImageURL:    it.ImageURL,
		CreatedAt:   it.CreatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
