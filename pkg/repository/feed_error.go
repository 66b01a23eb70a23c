package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/feedkeeper/pkg/domain"
)

// FeedErrorRepository keeps the feed error audit trail
type FeedErrorRepository struct {
	db *sqlx.DB
}

type feedErrorSQL struct {
	ID        int64     `db:"id"`
	FeedID    int64     `db:"feed_id"`
	FeedName  string    `db:"feed_name"`
	FeedURL   string    `db:"feed_url"`
	Code      string    `db:"code"`
	Message   string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
}

// NewFeedErrorRepository creates a new feed error repository
func NewFeedErrorRepository(db *sqlx.DB) *FeedErrorRepository {
	return &FeedErrorRepository{db: db}
}

// InsertFeedError appends an audit record. Zero CreatedAt is set to now.
func (r *FeedErrorRepository) InsertFeedError(ctx context.Context, fe domain.FeedError) error {
	if fe.CreatedAt.IsZero() {
		fe.CreatedAt = time.Now()
	}
	rec := feedErrorSQL{
		FeedID:    fe.FeedID,
		FeedName:  fe.FeedName,
		FeedURL:   fe.FeedURL,
		Code:      fe.Code,
		Message:   fe.Message,
		CreatedAt: fe.CreatedAt.UTC(),
	}
	query := `
		INSERT INTO feed_errors (feed_id, feed_name, feed_url, code, message, created_at)
		VALUES (:feed_id, :feed_name, :feed_url, :code, :message, :created_at)
	`
	err := withRetry(ctx, func() error {
		_, err := r.db.NamedExecContext(ctx, query, rec)
		return err
	})
	if err != nil {
		return fmt.Errorf("insert feed error for feed %d: %w", fe.FeedID, err)
	}
	return nil
}

// ListFeedErrors returns the newest audit records, for a single feed if feedID is not zero
func (r *FeedErrorRepository) ListFeedErrors(ctx context.Context, feedID int64, limit int) ([]domain.FeedError, error) {
	query := "SELECT id, feed_id, feed_name, feed_url, code, message, created_at FROM feed_errors"
	args := []any{}
	if feedID != 0 {
		query += " WHERE feed_id = ?"
		args = append(args, feedID)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	var recs []feedErrorSQL
	if err := r.db.SelectContext(ctx, &recs, query, args...); err != nil {
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
