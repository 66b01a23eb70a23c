package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedkeeper/pkg/domain"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/page_image_resolver.go -pkg mocks -skip-ensure -fmt goimports . PageImageResolver
//go:generate moq -out mocks/icon_resolver.go -pkg mocks -skip-ensure -fmt goimports . IconResolver
//go:generate moq -out mocks/feed_manager.go -pkg mocks -skip-ensure -fmt goimports . FeedManager
//go:generate moq -out mocks/item_manager.go -pkg mocks -skip-ensure -fmt goimports . ItemManager
//go:generate moq -out mocks/feed_error_manager.go -pkg mocks -skip-ensure -fmt goimports . FeedErrorManager
//go:generate moq -out mocks/runner.go -pkg mocks -skip-ensure -fmt goimports . Runner

// Fetcher retrieves and parses a feed document
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]domain.RawItem, error)
}

// PageImageResolver finds the preview image of an article page
type PageImageResolver interface {
	PageImage(ctx context.Context, pageURL string) (string, error)
}

// IconResolver finds the icon of a feed's site
type IconResolver interface {
	Icon(ctx context.Context, siteURL string) (string, error)
}

// FeedManager handles feed selection and bookkeeping
type FeedManager interface {
	SelectActiveFeeds(ctx context.Context, limit int) ([]domain.Feed, error)
	SelectFeedsMissingIcon(ctx context.Context) ([]domain.Feed, error)
	UpdateFeed(ctx context.Context, id int64, upd domain.FeedUpdate) error
}

// ItemManager handles item storage
type ItemManager interface {
	UpsertItems(ctx context.Context, items []domain.Item) (int64, error)
	SelectExistingItemURLs(ctx context.Context, urls []string) (map[string]bool, error)
	DeleteItemsOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// FeedErrorManager records the feed error audit trail
type FeedErrorManager interface {
	InsertFeedError(ctx context.Context, fe domain.FeedError) error
}

// Runner runs ingestion batches and icon backfills, implemented by FeedProcessor
type Runner interface {
	RunBatch(ctx context.Context) (domain.BatchResult, error)
	RunIconBackfill(ctx context.Context) (int, error)
}

// Scheduler triggers ingestion batches and icon backfills on fixed intervals
type Scheduler struct {
	runner         Runner
	ingestInterval time.Duration
	iconInterval   time.Duration

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// Params holds scheduler dependencies and intervals. Zero IconInterval disables the icon backfill.
type Params struct {
	Runner         Runner
	IngestInterval time.Duration
	IconInterval   time.Duration
}

// NewScheduler creates a new scheduler instance
func NewScheduler(params Params) *Scheduler {
	if params.IngestInterval <= 0 {
		params.IngestInterval = 10 * time.Minute
	}
	return &Scheduler{
		runner:         params.Runner,
		ingestInterval: params.IngestInterval,
		iconInterval:   params.IconInterval,
	}
}

// Start begins the scheduler, both workers run immediately and then on every tick
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.worker(ctx, "ingest", s.ingestInterval, s.ingest)

	if s.iconInterval > 0 {
		s.wg.Add(1)
		go s.worker(ctx, "icons", s.iconInterval, s.backfillIcons)
	}

	lgr.Printf("[INFO] scheduler started with ingest interval %v, icon interval %v", s.ingestInterval, s.iconInterval)
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

// worker runs job on start and on every tick until ctx is canceled
func (s *Scheduler) worker(ctx context.Context, name string, interval time.Duration, job func(ctx context.Context)) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	job(ctx)
	for {
		select {
		case <-ctx.Done():
			lgr.Printf("[DEBUG] %s worker stopped", name)
			return
		case <-ticker.C:
			job(ctx)
		}
	}
}

func (s *Scheduler) ingest(ctx context.Context) {
	_, err := s.runner.RunBatch(ctx)
	switch {
	case errors.Is(err, ErrBatchInProgress):
		lgr.Printf("[INFO] skipping scheduled batch, previous one still running")
	case err != nil:
		lgr.Printf("[ERROR] batch run failed: %v", err)
	}
}

func (s *Scheduler) backfillIcons(ctx context.Context) {
	_, err := s.runner.RunIconBackfill(ctx)
	switch {
	case errors.Is(err, ErrIconsInProgress):
		lgr.Printf("[INFO] skipping scheduled icon backfill, previous one still running")
	case err != nil:
		lgr.Printf("[ERROR] icon backfill failed: %v", err)
	}
}
