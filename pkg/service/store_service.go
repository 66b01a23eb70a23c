package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/umputun/feedkeeper/pkg/domain"
	"github.com/umputun/feedkeeper/pkg/repository"
	"github.com/umputun/feedkeeper/pkg/repository/postgres"
)

// Store is the full set of storage operations used by the scheduler and the server
type Store interface {
	SelectActiveFeeds(ctx context.Context, limit int) ([]domain.Feed, error)
	SelectFeedsMissingIcon(ctx context.Context) ([]domain.Feed, error)
	UpdateFeed(ctx context.Context, id int64, upd domain.FeedUpdate) error
	ListFeeds(ctx context.Context) ([]domain.Feed, error)

	UpsertItems(ctx context.Context, items []domain.Item) (int64, error)
	SelectExistingItemURLs(ctx context.Context, urls []string) (map[string]bool, error)
	DeleteItemsOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	RecentItems(ctx context.Context, limit int) ([]domain.FeedItem, error)
	CountItems(ctx context.Context) (int64, error)

	InsertFeedError(ctx context.Context, fe domain.FeedError) error

	Ping(ctx context.Context) error
	Close() error
}

// Config selects and tunes the storage backend
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open makes a PostgreSQL store for postgres:// DSNs and a SQLite store for everything else
func Open(ctx context.Context, cfg Config) (Store, error) {
	if IsPostgres(cfg.DSN) {
		pg, err := postgres.New(ctx, postgres.Config{
			DSN:             cfg.DSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return pg, nil
	}

	repos, err := repository.NewRepositories(ctx, repository.Config(cfg))
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return NewSQLiteService(repos), nil
}

// IsPostgres reports whether dsn points to a PostgreSQL server
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// SQLiteService provides unified access to sqlite repositories
type SQLiteService struct {
	repos *repository.Repositories
}

// NewSQLiteService creates a new service over repos
func NewSQLiteService(repos *repository.Repositories) *SQLiteService {
	return &SQLiteService{repos: repos}
}

// feed methods

func (s *SQLiteService) SelectActiveFeeds(ctx context.Context, limit int) ([]domain.Feed, error) {
	return s.repos.Feed.SelectActiveFeeds(ctx, limit)
}

func (s *SQLiteService) SelectFeedsMissingIcon(ctx context.Context) ([]domain.Feed, error) {
	return s.repos.Feed.SelectFeedsMissingIcon(ctx)
}

func (s *SQLiteService) UpdateFeed(ctx context.Context, id int64, upd domain.FeedUpdate) error {
	return s.repos.Feed.UpdateFeed(ctx, id, upd)
}

func (s *SQLiteService) ListFeeds(ctx context.Context) ([]domain.Feed, error) {
	return s.repos.Feed.ListFeeds(ctx)
}

// item methods

func (s *SQLiteService) UpsertItems(ctx context.Context, items []domain.Item) (int64, error) {
	return s.repos.Item.UpsertItems(ctx, items)
}

func (s *SQLiteService) SelectExistingItemURLs(ctx context.Context, urls []string) (map[string]bool, error) {
	return s.repos.Item.SelectExistingItemURLs(ctx, urls)
}

func (s *SQLiteService) DeleteItemsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.repos.Item.DeleteItemsOlderThan(ctx, cutoff)
}

func (s *SQLiteService) RecentItems(ctx context.Context, limit int) ([]domain.FeedItem, error) {
	return s.repos.Item.RecentItems(ctx, limit)
}

func (s *SQLiteService) CountItems(ctx context.Context) (int64, error) {
	return s.repos.Item.CountItems(ctx)
}

// feed error methods

func (s *SQLiteService) InsertFeedError(ctx context.Context, fe domain.FeedError) error {
	return s.repos.FeedError.InsertFeedError(ctx, fe)
}

// connection methods

func (s *SQLiteService) Ping(ctx context.Context) error {
	return s.repos.Ping(ctx)
}

func (s *SQLiteService) Close() error {
	return s.repos.Close()
}
