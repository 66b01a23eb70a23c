package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/feedkeeper/pkg/domain"
)

// RunIconBackfill resolves and stores icons of active feeds that have none.
// Returns the number of updated feeds, or ErrIconsInProgress if another backfill is running.
func (fp *FeedProcessor) RunIconBackfill(ctx context.Context) (int, error) {
	if fp.icons == nil {
		return 0, nil
	}
	if !fp.iconMu.TryLock() {
		return 0, ErrIconsInProgress
	}
	defer fp.iconMu.Unlock()

	feeds, err := fp.feedManager.SelectFeedsMissingIcon(ctx)
	if err != nil {
		return 0, fmt.Errorf("select feeds missing icon: %w", err)
	}
	if len(feeds) == 0 {
		return 0, nil
	}
	lgr.Printf("[INFO] resolving icons for %d feeds", len(feeds))

	var updated atomic.Int32
	var g errgroup.Group
	g.SetLimit(fp.iconConcurrency)
	for _, f := range feeds {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					lgr.Printf("[ERROR] panic resolving icon of feed %s: %v", f.DisplayName(), r)
				}
			}()
			if fp.updateIcon(ctx, f) {
				updated.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	n := int(updated.Load())
	fp.metrics.IconsUpdated(n)
	lgr.Printf("[INFO] icon backfill completed, updated %d of %d feeds", n, len(feeds))
	return n, nil
}

// updateIcon resolves and stores the icon of a single feed, reports whether it was stored
func (fp *FeedProcessor) updateIcon(ctx context.Context, f domain.Feed) bool {
	icon, err := fp.icons.Icon(ctx, f.URL)
	if err != nil {
		lgr.Printf("[WARN] can't resolve icon of feed %s: %v", f.DisplayName(), err)
		return false
	}
	if icon == "" {
		return false
	}
	if err := fp.feedManager.UpdateFeed(ctx, f.ID, domain.FeedUpdate{IconURL: &icon}); err != nil {
		lgr.Printf("[WARN] failed to store icon of feed %s: %v", f.DisplayName(), err)
		return false
	}
	lgr.Printf("[DEBUG] icon of feed %s set to %s", f.DisplayName(), icon)
	return true
}
