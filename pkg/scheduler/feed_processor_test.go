package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedkeeper/pkg/domain"
	"github.com/umputun/feedkeeper/pkg/feed"
	"github.com/umputun/feedkeeper/pkg/metrics"
	"github.com/umputun/feedkeeper/pkg/scheduler/mocks"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type processorMocks struct {
	feeds     *mocks.FeedManagerMock
	items     *mocks.ItemManagerMock
	errs      *mocks.FeedErrorManagerMock
	fetcher   *mocks.FetcherMock
	pageImage *mocks.PageImageResolverMock
	icons     *mocks.IconResolverMock
}

// newTestProcessor makes a processor with permissive mocks, tests override the funcs they care about
func newTestProcessor(t *testing.T, feeds []domain.Feed) (*FeedProcessor, *processorMocks) {
	t.Helper()
	m := &processorMocks{
		feeds: &mocks.FeedManagerMock{
			SelectActiveFeedsFunc: func(ctx context.Context, limit int) ([]domain.Feed, error) {
				if len(feeds) > limit {
					return feeds[:limit], nil
				}
				return feeds, nil
			},
			SelectFeedsMissingIconFunc: func(ctx context.Context) ([]domain.Feed, error) { return feeds, nil },
			UpdateFeedFunc:             func(ctx context.Context, id int64, upd domain.FeedUpdate) error { return nil },
		},
		items: &mocks.ItemManagerMock{
			UpsertItemsFunc: func(ctx context.Context, items []domain.Item) (int64, error) {
				return int64(len(items)), nil
			},
			SelectExistingItemURLsFunc: func(ctx context.Context, urls []string) (map[string]bool, error) {
				return map[string]bool{}, nil
			},
			DeleteItemsOlderThanFunc: func(ctx context.Context, cutoff time.Time) (int64, error) { return 0, nil },
		},
		errs: &mocks.FeedErrorManagerMock{
			InsertFeedErrorFunc: func(ctx context.Context, fe domain.FeedError) error { return nil },
		},
		fetcher: &mocks.FetcherMock{},
		pageImage: &mocks.PageImageResolverMock{
			PageImageFunc: func(ctx context.Context, pageURL string) (string, error) { return "", nil },
		},
		icons: &mocks.IconResolverMock{},
	}

	fp := NewFeedProcessor(FeedProcessorConfig{
		FeedManager:      m.feeds,
		ItemManager:      m.items,
		FeedErrorManager: m.errs,
		Fetcher:          m.fetcher,
		PageImages:       m.pageImage,
		Icons:            m.icons,
		Normalizer:       feed.NewNormalizer(200),
		Metrics:          metrics.New(),
		Retention:        72 * time.Hour,
	})
	fp.now = func() time.Time { return fixedNow }
	return fp, m
}

func entry(link string) domain.RawItem {
	return domain.RawItem{Title: "title " + link, Link: link, Description: "about " + link}
}

// updatesOf collects feed updates by feed id
func updatesOf(m *mocks.FeedManagerMock) map[int64][]domain.FeedUpdate {
	res := map[int64][]domain.FeedUpdate{}
	for _, c := range m.UpdateFeedCalls() {
		res[c.Id] = append(res[c.Id], c.Upd)
	}
	return res
}

func TestFeedProcessor_RunBatch_Outcomes(t *testing.T) {
	feeds := []domain.Feed{
		{ID: 1, URL: "https://ok.example.com/feed", Name: "ok", IsActive: true},
		{ID: 2, URL: "https://missing.example.com/feed", Name: "missing", IsActive: true},
		{ID: 3, URL: "https://empty.example.com/feed", Name: "empty", IsActive: true},
		{ID: 4, URL: "https://slow.example.com/feed", Name: "slow", IsActive: true},
	}
	fp, m := newTestProcessor(t, feeds)

	m.fetcher.FetchFunc = func(ctx context.Context, url string) ([]domain.RawItem, error) {
		switch url {
		case "https://ok.example.com/feed":
			return []domain.RawItem{entry("https://ok.example.com/1"), entry("https://ok.example.com/2")}, nil
		case "https://missing.example.com/feed":
			return nil, feed.NewFetchError(errors.New("unexpected status code: 404"))
		case "https://empty.example.com/feed":
			return []domain.RawItem{}, nil
		default:
			return nil, feed.NewFetchError(fmt.Errorf("fetch URL: %w", context.DeadlineExceeded))
		}
	}

	res, err := fp.RunBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Processed)
	assert.Equal(t, 2, res.Disabled)
	assert.Equal(t, int64(2), res.Inserted)

	// items written only for the healthy feed
	require.Len(t, m.items.UpsertItemsCalls(), 1)
	upserted := m.items.UpsertItemsCalls()[0].Items
	require.Len(t, upserted, 2)
	assert.Equal(t, int64(1), upserted[0].FeedID)
	assert.Equal(t, "https://ok.example.com/1", upserted[0].URL)
	assert.Equal(t, "https://ok.example.com/2", upserted[1].URL)

	// one audit record per disabled feed
	errCalls := m.errs.InsertFeedErrorCalls()
	require.Len(t, errCalls, 2)
	codes := map[int64]string{}
	for _, c := range errCalls {
		codes[c.Fe.FeedID] = c.Fe.Code
		assert.Equal(t, fixedNow, c.Fe.CreatedAt)
	}
	assert.Equal(t, map[int64]string{2: "not_found", 3: "no_items"}, codes)

	// every feed touched exactly once, only fatal and empty ones disabled
	updates := updatesOf(m.feeds)
	require.Len(t, updates, 4)
	for id, upds := range updates {
		require.Len(t, upds, 1, "feed %d", id)
		require.NotNil(t, upds[0].LastFetchedAt)
		assert.Equal(t, fixedNow, *upds[0].LastFetchedAt)
		if id == 2 || id == 3 {
			require.NotNil(t, upds[0].IsActive, "feed %d", id)
			assert.False(t, *upds[0].IsActive)
		} else {
			assert.Nil(t, upds[0].IsActive, "feed %d", id)
		}
	}

	// cleanup once with the retention cutoff
	require.Len(t, m.items.DeleteItemsOlderThanCalls(), 1)
	assert.Equal(t, fixedNow.Add(-72*time.Hour), m.items.DeleteItemsOlderThanCalls()[0].Cutoff)
}

func TestFeedProcessor_RunBatch_NoFeeds(t *testing.T) {
	fp, m := newTestProcessor(t, nil)

	res, err := fp.RunBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.BatchResult{}, res)
	assert.Empty(t, m.fetcher.FetchCalls())
	assert.Empty(t, m.items.DeleteItemsOlderThanCalls(), "no cleanup for empty batch")
}

func TestFeedProcessor_RunBatch_SelectError(t *testing.T) {
	fp, m := newTestProcessor(t, nil)
	m.feeds.SelectActiveFeedsFunc = func(ctx context.Context, limit int) ([]domain.Feed, error) {
		return nil, errors.New("db down")
	}

	_, err := fp.RunBatch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Empty(t, m.items.DeleteItemsOlderThanCalls())
}

func TestFeedProcessor_RunBatch_BatchSize(t *testing.T) {
	var feeds []domain.Feed
	for i := 1; i <= 15; i++ {
		feeds = append(feeds, domain.Feed{ID: int64(i), URL: fmt.Sprintf("https://example.com/%d", i), IsActive: true})
	}
	fp, m := newTestProcessor(t, feeds)
	m.fetcher.FetchFunc = func(ctx context.Context, url string) ([]domain.RawItem, error) {
		return []domain.RawItem{entry(url + "/a")}, nil
	}

	res, err := fp.RunBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, res.Processed)
	require.Len(t, m.feeds.SelectActiveFeedsCalls(), 1)
	assert.Equal(t, 10, m.feeds.SelectActiveFeedsCalls()[0].Limit)
	assert.Len(t, m.fetcher.FetchCalls(), 10)
}

func TestFeedProcessor_RunBatch_Concurrent(t *testing.T) {
	feeds := []domain.Feed{
		{ID: 1, URL: "https://a.example.com/feed", IsActive: true},
		{ID: 2, URL: "https://b.example.com/feed", IsActive: true},
		{ID: 3, URL: "https://c.example.com/feed", IsActive: true},
	}
	fp, m := newTestProcessor(t, feeds)

	// every fetch waits until all three are in flight, a sequential pipeline would time out here
	var wg sync.WaitGroup
	wg.Add(len(feeds))
	m.fetcher.FetchFunc = func(ctx context.Context, url string) ([]domain.RawItem, error) {
		wg.Done()
		done := make(chan struct{})
		go func() { wg.Wait(); close(done) }()
		select {
		case <-done:
			return []domain.RawItem{entry(url + "/1")}, nil
		case <-time.After(2 * time.Second):
			return nil, feed.NewFetchError(context.DeadlineExceeded)
		}
	}

	res, err := fp.RunBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Inserted)
	assert.Empty(t, m.errs.InsertFeedErrorCalls())
}

func TestFeedProcessor_RunBatch_PanicIsolation(t *testing.T) {
	feeds := []domain.Feed{
		{ID: 1, URL: "https://boom.example.com/feed", IsActive: true},
		{ID: 2, URL: "https://ok.example.com/feed", IsActive: true},
	}
	fp, m := newTestProcessor(t, feeds)
	m.fetcher.FetchFunc = func(ctx context.Context, url string) ([]domain.RawItem, error) {
		if url == "https://boom.example.com/feed" {
			panic("parser exploded")
		}
		return []domain.RawItem{entry("https://ok.example.com/1")}, nil
	}

	res, err := fp.RunBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, int64(1), res.Inserted)
	assert.Len(t, m.items.DeleteItemsOlderThanCalls(), 1, "cleanup still runs")

	updates := updatesOf(m.feeds)
	require.Len(t, updates[1], 1, "panicked feed still rotated")
	assert.Nil(t, updates[1][0].IsActive)
	require.Len(t, updates[2], 1)
}

func TestFeedProcessor_RunBatch_StoreErrors(t *testing.T) {
	feeds := []domain.Feed{
		{ID: 1, URL: "https://ok.example.com/feed", IsActive: true},
		{ID: 2, URL: "https://gone.example.com/feed", IsActive: true},
	}
	fp, m := newTestProcessor(t, feeds)
	m.fetcher.FetchFunc = func(ctx context.Context, url string) ([]domain.RawItem, error) {
		if url == "https://gone.example.com/feed" {
			return nil, feed.NewFetchError(errors.New("unexpected status code: 410"))
		}
		return []domain.RawItem{entry("https://ok.example.com/1")}, nil
	}
	m.items.UpsertItemsFunc = func(ctx context.Context, items []domain.Item) (int64, error) {
		return 0, errors.New("database is locked")
	}
	m.errs.InsertFeedErrorFunc = func(ctx context.Context, fe domain.FeedError) error { return errors.New("insert failed") }
	m.items.DeleteItemsOlderThanFunc = func(ctx context.Context, cutoff time.Time) (int64, error) {
		return 0, errors.New("delete failed")
	}

	res, err := fp.RunBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 1, res.Disabled)
	assert.Zero(t, res.Inserted)

	// store failure of items does not disable the healthy feed
	updates := updatesOf(m.feeds)
	assert.Nil(t, updates[1][0].IsActive)
	require.NotNil(t, updates[2][0].IsActive)
	assert.False(t, *updates[2][0].IsActive)
}

func TestFeedProcessor_RunBatch_InProgress(t *testing.T) {
	feeds := []domain.Feed{{ID: 1, URL: "https://slow.example.com/feed", IsActive: true}}
	fp, m := newTestProcessor(t, feeds)

	started, release := make(chan struct{}), make(chan struct{})
	m.fetcher.FetchFunc = func(ctx context.Context, url string) ([]domain.RawItem, error) {
		close(started)
		<-release
		return []domain.RawItem{entry("https://slow.example.com/1")}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := fp.RunBatch(context.Background())
		done <- err
	}()

	<-started
	_, err := fp.RunBatch(context.Background())
	require.ErrorIs(t, err, ErrBatchInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, m.fetcher.FetchCalls(), 1)
	assert.Len(t, m.items.DeleteItemsOlderThanCalls(), 1)

	// lease released after the run
	m.fetcher.FetchFunc = func(ctx context.Context, url string) ([]domain.RawItem, error) {
		return []domain.RawItem{entry("https://slow.example.com/1")}, nil
	}
	_, err = fp.RunBatch(context.Background())
	require.NoError(t, err)
}

func TestFeedProcessor_PageImages(t *testing.T) {
	feeds := []domain.Feed{{ID: 1, URL: "https://example.com/feed", IsActive: true}}
	fp, m := newTestProcessor(t, feeds)

	m.fetcher.FetchFunc = func(ctx context.Context, url string) ([]domain.RawItem, error) {
		return []domain.RawItem{
			{Title: "has enclosure", Link: "https://example.com/a",
				Enclosures: []domain.Enclosure{{URL: "https://cdn.example.com/a.jpg", Type: "image/jpeg"}}},
			{Title: "known", Link: "https://example.com/b"},
			{Title: "og", Link: "https://example.com/c"},
			{Title: "fails", Link: "https://example.com/d"},
			{Title: "nothing", Link: "https://example.com/e"},
		}, nil
	}
	m.items.SelectExistingItemURLsFunc = func(ctx context.Context, urls []string) (map[string]bool, error) {
		assert.Equal(t, []string{"https://example.com/b", "https://example.com/c", "https://example.com/d", "https://example.com/e"}, urls)
		return map[string]bool{"https://example.com/b": true}, nil
	}
	m.pageImage.PageImageFunc = func(ctx context.Context, pageURL string) (string, error) {
		switch pageURL {
		case "https://example.com/c":
			return "https://cdn.example.com/og.jpg", nil
		case "https://example.com/d":
			return "", errors.New("timeout")
		}
		return "", nil
	}

	_, err := fp.RunBatch(context.Background())
	require.NoError(t, err)

	scraped := map[string]bool{}
	for _, c := range m.pageImage.PageImageCalls() {
		scraped[c.PageURL] = true
	}
	assert.Equal(t, map[string]bool{"https://example.com/c": true, "https://example.com/d": true, "https://example.com/e": true}, scraped)

	require.Len(t, m.items.UpsertItemsCalls(), 1)
	items := m.items.UpsertItemsCalls()[0].Items
	require.Len(t, items, 5)
	require.NotNil(t, items[0].ImageURL)
	assert.Equal(t, "https://cdn.example.com/a.jpg", *items[0].ImageURL)
	assert.Nil(t, items[1].ImageURL)
	require.NotNil(t, items[2].ImageURL)
	assert.Equal(t, "https://cdn.example.com/og.jpg", *items[2].ImageURL)
	assert.Nil(t, items[3].ImageURL)
	assert.Nil(t, items[4].ImageURL)

	t.Run("pre-check failure scrapes all", func(t *testing.T) {
		m.items.SelectExistingItemURLsFunc = func(ctx context.Context, urls []string) (map[string]bool, error) {
			return nil, errors.New("db down")
		}
		before := len(m.pageImage.PageImageCalls())
		_, err := fp.RunBatch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 4, len(m.pageImage.PageImageCalls())-before)
	})
}

func TestFeedProcessor_RunBatch_SkipsExpiredItems(t *testing.T) {
	feeds := []domain.Feed{{ID: 1, URL: "https://example.com/feed", IsActive: true}}
	fp, m := newTestProcessor(t, feeds)

	old, fresh := fixedNow.Add(-30*24*time.Hour), fixedNow.Add(-time.Hour)
	m.fetcher.FetchFunc = func(ctx context.Context, url string) ([]domain.RawItem, error) {
		return []domain.RawItem{
			{Title: "old 1", Link: "https://example.com/old1", Published: &old},
			{Title: "old 2", Link: "https://example.com/old2", Published: &old},
			{Title: "fresh", Link: "https://example.com/fresh", Published: &fresh},
		}, nil
	}
	// stored items are reported as existing, expired ones never get stored
	stored := map[string]bool{}
	m.items.UpsertItemsFunc = func(ctx context.Context, items []domain.Item) (int64, error) {
		var n int64
		for _, it := range items {
			if !stored[it.URL] {
				stored[it.URL] = true
				n++
			}
		}
		return n, nil
	}
	m.items.SelectExistingItemURLsFunc = func(ctx context.Context, urls []string) (map[string]bool, error) {
		res := map[string]bool{}
		for _, u := range urls {
			res[u] = stored[u]
		}
		return res, nil
	}

	var inserted int64
	for range 3 {
		res, err := fp.RunBatch(context.Background())
		require.NoError(t, err)
		assert.Zero(t, res.Disabled)
		inserted += res.Inserted
	}

	assert.Equal(t, int64(1), inserted)
	assert.Equal(t, map[string]bool{"https://example.com/fresh": true}, stored)
	require.Len(t, m.pageImage.PageImageCalls(), 1, "expired items are not scraped")
	assert.Equal(t, "https://example.com/fresh", m.pageImage.PageImageCalls()[0].PageURL)
	for _, c := range m.items.UpsertItemsCalls() {
		for _, it := range c.Items {
			assert.False(t, it.PublishedAt.Before(fixedNow.Add(-72*time.Hour)), it.URL)
		}
	}
}

func TestFeedProcessor_RunIconBackfill(t *testing.T) {
	feeds := []domain.Feed{
		{ID: 1, URL: "https://a.example.com/feed", IsActive: true},
		{ID: 2, URL: "https://b.example.com/feed", IsActive: true},
		{ID: 3, URL: "bad url", IsActive: true},
	}
	fp, m := newTestProcessor(t, feeds)
	m.icons.IconFunc = func(ctx context.Context, siteURL string) (string, error) {
		switch siteURL {
		case "https://a.example.com/feed":
			return "https://a.example.com/apple.png", nil
		case "https://b.example.com/feed":
			return "https://b.example.com/favicon.ico", nil
		}
		return "", errors.New("invalid site url")
	}

	n, err := fp.RunIconBackfill(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	updates := updatesOf(m.feeds)
	require.Len(t, updates, 2)
	require.NotNil(t, updates[1][0].IconURL)
	assert.Equal(t, "https://a.example.com/apple.png", *updates[1][0].IconURL)
	assert.Nil(t, updates[1][0].LastFetchedAt)
	require.NotNil(t, updates[2][0].IconURL)
	assert.Equal(t, "https://b.example.com/favicon.ico", *updates[2][0].IconURL)

	t.Run("select error", func(t *testing.T) {
		m.feeds.SelectFeedsMissingIconFunc = func(ctx context.Context) ([]domain.Feed, error) {
			return nil, errors.New("db down")
		}
		_, err := fp.RunIconBackfill(context.Background())
		require.Error(t, err)
	})

	t.Run("no icon resolver", func(t *testing.T) {
		fp2 := NewFeedProcessor(FeedProcessorConfig{FeedManager: m.feeds})
		n, err := fp2.RunIconBackfill(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestNewFeedProcessor_Defaults(t *testing.T) {
	fp := NewFeedProcessor(FeedProcessorConfig{})
	assert.Equal(t, defaultBatchSize, fp.batchSize)
	assert.Equal(t, defaultRetention, fp.retention)
	assert.Equal(t, defaultScrapeConcurrency, fp.scrapeConcurrency)
	assert.Equal(t, defaultIconConcurrency, fp.iconConcurrency)
	assert.NotNil(t, fp.normalizer)
}
