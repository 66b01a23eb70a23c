package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/feedkeeper/pkg/domain"
	"github.com/umputun/feedkeeper/pkg/feed"
	"github.com/umputun/feedkeeper/pkg/metrics"
)

// ErrBatchInProgress is returned when a batch run is requested while another one is running
var ErrBatchInProgress = errors.New("batch run already in progress")

// ErrIconsInProgress is returned when an icon backfill is requested while another one is running
var ErrIconsInProgress = errors.New("icon backfill already in progress")

// defaults for zero config values
const (
	defaultBatchSize         = 10
	defaultRetention         = 72 * time.Hour
	defaultScrapeConcurrency = 4
	defaultIconConcurrency   = 4
)

// FeedProcessor runs ingestion batches and icon backfills.
// A batch selects the least recently fetched active feeds and processes them concurrently:
//   - fetch the feed document
//   - classify the outcome and apply the health transition
//   - normalize entries, resolve missing images from article pages and store new items
//   - record the audit trail and feed bookkeeping
//
// After all feeds of the batch settle, items older than the retention window are removed.
// At most one batch (and one icon backfill) runs at a time.
type FeedProcessor struct {
	feedManager      FeedManager
	itemManager      ItemManager
	feedErrorManager FeedErrorManager
	fetcher          Fetcher
	pageImages       PageImageResolver
	icons            IconResolver
	normalizer       *feed.Normalizer
	metrics          *metrics.Metrics

	batchSize         int
	retention         time.Duration
	scrapeConcurrency int
	iconConcurrency   int

	batchMu sync.Mutex
	iconMu  sync.Mutex
	now     func() time.Time
}

// FeedProcessorConfig holds configuration for FeedProcessor.
// PageImages, Icons and Metrics are optional.
type FeedProcessorConfig struct {
	FeedManager       FeedManager
	ItemManager       ItemManager
	FeedErrorManager  FeedErrorManager
	Fetcher           Fetcher
	PageImages        PageImageResolver
	Icons             IconResolver
	Normalizer        *feed.Normalizer
	Metrics           *metrics.Metrics
	BatchSize         int
	Retention         time.Duration
	ScrapeConcurrency int
	IconConcurrency   int
}

// NewFeedProcessor creates a new feed processor, zero numeric values are replaced by defaults
func NewFeedProcessor(cfg FeedProcessorConfig) *FeedProcessor {
	fp := &FeedProcessor{
		feedManager:       cfg.FeedManager,
		itemManager:       cfg.ItemManager,
		feedErrorManager:  cfg.FeedErrorManager,
		fetcher:           cfg.Fetcher,
		pageImages:        cfg.PageImages,
		icons:             cfg.Icons,
		normalizer:        cfg.Normalizer,
		metrics:           cfg.Metrics,
		batchSize:         cfg.BatchSize,
		retention:         cfg.Retention,
		scrapeConcurrency: cfg.ScrapeConcurrency,
		iconConcurrency:   cfg.IconConcurrency,
		now:               time.Now,
	}
	if fp.normalizer == nil {
		fp.normalizer = feed.NewNormalizer(feed.DefaultSummaryLength)
	}
	if fp.batchSize <= 0 {
		fp.batchSize = defaultBatchSize
	}
	if fp.retention <= 0 {
		fp.retention = defaultRetention
	}
	if fp.scrapeConcurrency <= 0 {
		fp.scrapeConcurrency = defaultScrapeConcurrency
	}
	if fp.iconConcurrency <= 0 {
		fp.iconConcurrency = defaultIconConcurrency
	}
	return fp
}

// feedResult is the outcome of a single feed's pipeline
type feedResult struct {
	disabled bool
	inserted int64
}

// RunBatch processes one batch of active feeds and runs the retention cleanup.
// Returns ErrBatchInProgress if another batch is running. Per-feed failures are never returned,
// they are handled by the feed health transitions and logged.
func (fp *FeedProcessor) RunBatch(ctx context.Context) (domain.BatchResult, error) {
	if !fp.batchMu.TryLock() {
		fp.metrics.BatchSkipped()
		return domain.BatchResult{}, ErrBatchInProgress
	}
	defer fp.batchMu.Unlock()

	start := time.Now()
	feeds, err := fp.feedManager.SelectActiveFeeds(ctx, fp.batchSize)
	if err != nil {
		return domain.BatchResult{}, fmt.Errorf("select active feeds: %w", err)
	}
	if len(feeds) == 0 {
		lgr.Printf("[DEBUG] no active feeds to process")
		return domain.BatchResult{}, nil
	}

	lgr.Printf("[INFO] processing batch of %d feeds", len(feeds))

	var processed, disabled atomic.Int32
	var inserted atomic.Int64

	// no shared context, a failing feed must not cancel its siblings
	var g errgroup.Group
	g.SetLimit(len(feeds))
	for _, f := range feeds {
		g.Go(func() error {
			defer fp.recoverFeed(ctx, f)
			res := fp.processFeed(ctx, f)
			processed.Add(1)
			if res.disabled {
				disabled.Add(1)
			}
			inserted.Add(res.inserted)
			return nil
		})
	}
	_ = g.Wait()

	fp.cleanup(ctx)

	res := domain.BatchResult{
		Processed: int(processed.Load()),
		Disabled:  int(disabled.Load()),
		Inserted:  inserted.Load(),
		Duration:  time.Since(start),
	}
	fp.metrics.Batch(res)
	lgr.Printf("[INFO] batch completed, processed %d feeds, disabled %d, inserted %d items in %v",
		res.Processed, res.Disabled, res.Inserted, res.Duration.Truncate(time.Millisecond))
	return res, nil
}

// processFeed runs fetch, health transition and store writes for a single feed
func (fp *FeedProcessor) processFeed(ctx context.Context, f domain.Feed) feedResult {
	now := fp.now().UTC()
	name := f.DisplayName()

	raws, err := fp.fetcher.Fetch(ctx, f.URL)
	fetchErr := feed.NewFetchError(err)

	tr := feed.Next(feed.StateOf(f), feed.Outcome{Items: len(raws), Err: fetchErr})
	fp.metrics.FeedOutcome(tr.Event.String())

	switch tr.Event {
	case feed.EventTransient:
		lgr.Printf("[WARN] transient failure for feed %s, will retry next rotation: %v", name, fetchErr)
	case feed.EventFatal:
		lgr.Printf("[WARN] fatal failure for feed %s, disabling: %v", name, fetchErr)
	case feed.EventEmpty:
		lgr.Printf("[WARN] feed %s returned no items, disabling", name)
	case feed.EventItems:
		lgr.Printf("[DEBUG] feed %s returned %d entries", name, len(raws))
	}

	var res feedResult
	if tr.Upsert {
		items := fp.dropExpired(fp.normalizer.Normalize(f, raws), now)
		fp.resolvePageImages(ctx, items)
		n, err := fp.itemManager.UpsertItems(ctx, items)
		if err != nil {
			lgr.Printf("[WARN] failed to store items of feed %s: %v", name, err)
		}
		res.inserted = n
		if n > 0 {
			lgr.Printf("[INFO] added %d new items from feed %s", n, name)
		}
	}

	if tr.Audit != nil {
		rec := domain.FeedError{
			FeedID:    f.ID,
			FeedName:  f.Name,
			FeedURL:   f.URL,
			Code:      string(tr.Audit.Code),
			Message:   tr.Audit.Message,
			CreatedAt: now,
		}
		if err := fp.feedErrorManager.InsertFeedError(ctx, rec); err != nil {
			lgr.Printf("[WARN] failed to record error of feed %s: %v", name, err)
		}
	}

	upd := domain.FeedUpdate{LastFetchedAt: &now}
	if tr.Disable {
		inactive := false
		upd.IsActive = &inactive
		res.disabled = true
	}
	if err := fp.feedManager.UpdateFeed(ctx, f.ID, upd); err != nil {
		lgr.Printf("[WARN] failed to update feed %s: %v", name, err)
	}
	return res
}

// dropExpired removes items published before the retention cutoff
func (fp *FeedProcessor) dropExpired(items []domain.Item, now time.Time) []domain.Item {
	cutoff := now.Add(-fp.retention)
	res := items[:0]
	for _, it := range items {
		if it.PublishedAt.Before(cutoff) {
			continue
		}
		res = append(res, it)
	}
	if skipped := len(items) - len(res); skipped > 0 {
		lgr.Printf("[DEBUG] skipped %d items older than %v", skipped, fp.retention)
	}
	return res
}

// resolvePageImages scrapes article pages of new items without an image.
// Items already stored are skipped, failures leave the image empty.
func (fp *FeedProcessor) resolvePageImages(ctx context.Context, items []domain.Item) {
	if fp.pageImages == nil {
		return
	}

	var missing []int
	urls := make([]string, 0, len(items))
	for i := range items {
		if items[i].ImageURL == nil {
			missing = append(missing, i)
			urls = append(urls, items[i].URL)
		}
	}
	if len(missing) == 0 {
		return
	}

	existing, err := fp.itemManager.SelectExistingItemURLs(ctx, urls)
	if err != nil {
		lgr.Printf("[WARN] failed to check existing items, scraping all: %v", err)
		existing = nil
	}

	var g errgroup.Group
	g.SetLimit(fp.scrapeConcurrency)
	for _, idx := range missing {
		if existing[items[idx].URL] {
			continue
		}
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					lgr.Printf("[ERROR] panic scraping image of %s: %v", items[idx].URL, r)
				}
			}()
			img, err := fp.pageImages.PageImage(ctx, items[idx].URL)
			switch {
			case err != nil:
				fp.metrics.PageScrape("error")
				lgr.Printf("[DEBUG] can't scrape image of %s: %v", items[idx].URL, err)
			case img == "":
				fp.metrics.PageScrape("miss")
			default:
				fp.metrics.PageScrape("hit")
				items[idx].ImageURL = &img
			}
			return nil
		})
	}
	_ = g.Wait()
}

// cleanup removes items older than the retention window
func (fp *FeedProcessor) cleanup(ctx context.Context) {
	cutoff := fp.now().Add(-fp.retention)
	deleted, err := fp.itemManager.DeleteItemsOlderThan(ctx, cutoff)
	if err != nil {
		lgr.Printf("[WARN] retention cleanup failed: %v", err)
		return
	}
	fp.metrics.ItemsDeleted(deleted)
	if deleted > 0 {
		lgr.Printf("[INFO] removed %d items published before %s", deleted, cutoff.UTC().Format(time.RFC3339))
	}
}

// recoverFeed isolates a panic in a feed pipeline and still advances the feed's rotation
func (fp *FeedProcessor) recoverFeed(ctx context.Context, f domain.Feed) {
	r := recover()
	if r == nil {
		return
	}
	lgr.Printf("[ERROR] panic processing feed %s: %v", f.DisplayName(), r)

	defer func() {
		if r := recover(); r != nil {
			lgr.Printf("[ERROR] panic touching feed %s: %v", f.DisplayName(), r)
		}
	}()
	now := fp.now().UTC()
	if err := fp.feedManager.UpdateFeed(ctx, f.ID, domain.FeedUpdate{LastFetchedAt: &now}); err != nil {
		lgr.Printf("[WARN] failed to update feed %s after panic: %v", f.DisplayName(), err)
	}
}
