// Package postgres implements the feed store on PostgreSQL with a pgx connection pool
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/umputun/feedkeeper/pkg/domain"
)

//go:embed schema.sql
var schema string

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// Config represents pool configuration
type Config struct {
	DSN             string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// Store is a PostgreSQL backed feed, item and feed error store
type Store struct {
	Pool *pgxpool.Pool
}

type feedRow struct {
	ID            int64      `db:"id"`
	URL           string     `db:"url"`
	Name          string     `db:"name"`
	Category      *string    `db:"category"`
	IconURL       *string    `db:"icon_url"`
	IsActive      bool       `db:"is_active"`
	LastFetchedAt *time.Time `db:"last_fetched_at"`
	CreatedAt     time.Time  `db:"created_at"`
}

type feedItemRow struct {
	ID           int64     `db:"id"`
	FeedID       int64     `db:"feed_id"`
	Title        string    `db:"title"`
	URL          string    `db:"url"`
	PublishedAt  time.Time `db:"published_at"`
	Author       *string   `db:"author"`
	Summary      *string   `db:"summary"`
	ImageURL     *string   `db:"image_url"`
	CreatedAt    time.Time `db:"created_at"`
	FeedName     *string   `db:"feed_name"`
	FeedURL      *string   `db:"feed_url"`
	FeedCategory *string   `db:"feed_category"`
}

type feedErrorRow struct {
	ID        int64     `db:"id"`
	FeedID    int64     `db:"feed_id"`
	FeedName  string    `db:"feed_name"`
	FeedURL   string    `db:"feed_url"`
	Code      string    `db:"code"`
	Message   string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
}

const feedColumns = "id, url, name, category, icon_url, is_active, last_fetched_at, created_at"

// New connects the pool and makes sure the schema exists
func New(ctx context.Context, cfg Config) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns) //nolint:gosec // small configured value
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{Pool: pool}, nil
}

// Close closes the pool
func (s *Store) Close() error {
	s.Pool.Close()
	return nil
}

// Ping verifies the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

// CreateFeed inserts a new feed and sets its ID
func (s *Store) CreateFeed(ctx context.Context, feed *domain.Feed) error {
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO feeds (url, name, category, icon_url, is_active, last_fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		feed.URL, feed.Name, feed.Category, feed.IconURL, feed.IsActive, feed.LastFetchedAt,
	).Scan(&feed.ID)
	if err != nil {
		return fmt.Errorf("create feed: %w", err)
	}
	return nil
}

// GetFeed retrieves a feed by ID
func (s *Store) GetFeed(ctx context.Context, id int64) (*domain.Feed, error) {
	rows, err := s.Pool.Query(ctx, "SELECT "+feedColumns+" FROM feeds WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	rec, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[feedRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get feed %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	f := rec.toDomain()
	return &f, nil
}

// ListFeeds returns all feeds ordered by id
func (s *Store) ListFeeds(ctx context.Context) ([]domain.Feed, error) {
	return s.selectFeeds(ctx, "list feeds", "SELECT "+feedColumns+" FROM feeds ORDER BY id")
}

// SelectActiveFeeds returns up to limit active feeds, never fetched first, then least recently fetched
func (s *Store) SelectActiveFeeds(ctx context.Context, limit int) ([]domain.Feed, error) {
	return s.selectFeeds(ctx, "select active feeds", `
		SELECT `+feedColumns+` FROM feeds
		WHERE is_active
		ORDER BY last_fetched_at ASC NULLS FIRST, id ASC
		LIMIT $1`, limit)
}

// SelectFeedsMissingIcon returns active feeds without an icon
func (s *Store) SelectFeedsMissingIcon(ctx context.Context) ([]domain.Feed, error) {
	return s.selectFeeds(ctx, "select feeds missing icon", `
		SELECT `+feedColumns+` FROM feeds
		WHERE is_active AND (icon_url IS NULL OR icon_url = '')
		ORDER BY id`)
}

func (s *Store) selectFeeds(ctx context.Context, op, query string, args ...any) ([]domain.Feed, error) {
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	recs, err := pgx.CollectRows(rows, pgx.RowToStructByName[feedRow])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	res := make([]domain.Feed, len(recs))
	for i, rec := range recs {
		res[i] = rec.toDomain()
	}
	return res, nil
}

// UpdateFeed sets the non-nil fields of upd on the feed
func (s *Store) UpdateFeed(ctx context.Context, id int64, upd domain.FeedUpdate) error {
	if upd.Empty() {
		return nil
	}

	var sets []string
	var args []any
	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	if upd.LastFetchedAt != nil {
		add("last_fetched_at", *upd.LastFetchedAt)
	}
	if upd.IsActive != nil {
		add("is_active", *upd.IsActive)
	}
	if upd.IconURL != nil {
		add("icon_url", *upd.IconURL)
	}
	args = append(args, id)
	query := "UPDATE feeds SET " + strings.Join(sets, ", ") + " WHERE id = $" + strconv.Itoa(len(args))

	if _, err := s.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update feed %d: %w", id, err)
	}
	return nil
}

// UpsertItems inserts items in one batch, items with an already stored url are skipped.
// Returns the number of inserted rows.
func (s *Store) UpsertItems(ctx context.Context, items []domain.Item) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	b := &pgx.Batch{}
	for _, it := range items {
		b.Queue(`
			INSERT INTO items (feed_id, title, url, published_at, author, summary, image_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (url) DO NOTHING`,
			it.FeedID, it.Title, it.URL, it.PublishedAt, it.Author, it.Summary, it.ImageURL)
	}

	var inserted int64
	err := pgx.BeginFunc(ctx, s.Pool, func(tx pgx.Tx) error {
		br := tx.SendBatch(ctx, b)
		for i := 0; i < len(items); i++ {
			tag, err := br.Exec()
			if err != nil {
				_ = br.Close()
				return fmt.Errorf("insert item %s: %w", items[i].URL, err)
			}
			inserted += tag.RowsAffected()
		}
		return br.Close()
	})
	if err != nil {
		return 0, fmt.Errorf("upsert items: %w", err)
	}
	return inserted, nil
}

// SelectExistingItemURLs returns the subset of urls already stored
func (s *Store) SelectExistingItemURLs(ctx context.Context, urls []string) (map[string]bool, error) {
	res := make(map[string]bool)
	if len(urls) == 0 {
		return res, nil
	}
	rows, err := s.Pool.Query(ctx, "SELECT url FROM items WHERE url = ANY($1)", urls)
	if err != nil {
		return nil, fmt.Errorf("select existing urls: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("select existing urls: %w", err)
	}
	for _, u := range found {
		res[u] = true
	}
	return res, nil
}

// DeleteItemsOlderThan removes items published before cutoff, returns the number of deleted rows
func (s *Store) DeleteItemsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.Pool.Exec(ctx, "DELETE FROM items WHERE published_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete items older than %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return tag.RowsAffected(), nil
}

// RecentItems returns the newest items joined with their feed info
func (s *Store) RecentItems(ctx context.Context, limit int) ([]domain.FeedItem, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT i.id, i.feed_id, i.title, i.url, i.published_at, i.author, i.summary, i.image_url, i.created_at,
			f.name AS feed_name, f.url AS feed_url, f.category AS feed_category
		FROM items i
		LEFT JOIN feeds f ON f.id = i.feed_id
		ORDER BY i.published_at DESC, i.id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent items: %w", err)
	}
	recs, err := pgx.CollectRows(rows, pgx.RowToStructByName[feedItemRow])
	if err != nil {
		return nil, fmt.Errorf("get recent items: %w", err)
	}

	res := make([]domain.FeedItem, len(recs))
	for i, rec := range recs {
		res[i] = domain.FeedItem{
			Item: domain.Item{
				ID:          rec.ID,
				FeedID:      rec.FeedID,
				Title:       rec.Title,
				URL:         rec.URL,
				PublishedAt: rec.PublishedAt,
				Author:      rec.Author,
				Summary:     rec.Summary,
				ImageURL:    rec.ImageURL,
				CreatedAt:   rec.CreatedAt,
			},
			FeedCategory: rec.FeedCategory,
		}
		if rec.FeedName != nil {
			res[i].FeedName = *rec.FeedName
		}
		if rec.FeedURL != nil {
			res[i].FeedURL = *rec.FeedURL
		}
	}
	return res, nil
}

// CountItems returns the number of stored items
func (s *Store) CountItems(ctx context.Context) (int64, error) {
	var count int64
	if err := s.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM items").Scan(&count); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}

// InsertFeedError appends an audit record. Zero CreatedAt is set to now.
func (s *Store) InsertFeedError(ctx context.Context, fe domain.FeedError) error {
	if fe.CreatedAt.IsZero() {
		fe.CreatedAt = time.Now()
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO feed_errors (feed_id, feed_name, feed_url, code, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		fe.FeedID, fe.FeedName, fe.FeedURL, fe.Code, fe.Message, fe.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert feed error for feed %d: %w", fe.FeedID, err)
	}
	return nil
}

// ListFeedErrors returns the newest audit records, for a single feed if feedID is not zero
func (s *Store) ListFeedErrors(ctx context.Context, feedID int64, limit int) ([]domain.FeedError, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, feed_id, feed_name, feed_url, code, message, created_at FROM feed_errors
		WHERE $1::bigint = 0 OR feed_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, feedID, limit)
	if err != nil {
		return nil, fmt.Errorf("list feed errors: %w", err)
	}
	recs, err := pgx.CollectRows(rows, pgx.RowToStructByName[feedErrorRow])
	if err != nil {
		return nil, fmt.Errorf("list feed errors: %w", err)
	}

	res := make([]domain.FeedError, len(recs))
	for i, rec := range recs {
		res[i] = domain.FeedError{
			ID:        rec.ID,
			FeedID:    rec.FeedID,
			FeedName:  rec.FeedName,
			FeedURL:   rec.FeedURL,
			Code:      rec.Code,
			Message:   rec.Message,
			CreatedAt: rec.CreatedAt,
		}
	}
	return res, nil
}

func (f feedRow) toDomain() domain.Feed {
	return domain.Feed{
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
