package scheduler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedkeeper/pkg/content"
	"github.com/umputun/feedkeeper/pkg/domain"
	"github.com/umputun/feedkeeper/pkg/feed"
	"github.com/umputun/feedkeeper/pkg/metrics"
	"github.com/umputun/feedkeeper/pkg/repository"
)

const rssTmpl = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Integration</title>
	<link>%[1]s</link>
	<description>integration feed</description>
	<item>
		<title>With enclosure</title>
		<link>%[1]s/article/1</link>
		<description>first &lt;b&gt;story&lt;/b&gt;</description>
		<pubDate>%[2]s</pubDate>
		<enclosure url="%[1]s/img/1.jpg" type="image/jpeg" length="100"/>
	</item>
	<item>
		<title>Needs page image</title>
		<link>%[1]s/article/2</link>
		<description>second story</description>
		<pubDate>%[2]s</pubDate>
	</item>
	<item>
		<title>Ancient</title>
		<link>%[1]s/article/3</link>
		<description>old story</description>
		<pubDate>%[3]s</pubDate>
	</item>
</channel>
</rss>`

const emptyRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Empty</title><link>http://example.com</link><description>none</description></channel></rss>`

func TestFeedProcessor_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	var pageScrapes atomic.Int32
	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/good.xml", func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, rssTmpl, srvURL, now.Format(time.RFC1123Z), now.Add(-100*time.Hour).Format(time.RFC1123Z))
	})
	mux.HandleFunc("/missing.xml", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/empty.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(emptyRSS))
	})
	mux.HandleFunc("/slow.xml", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
	})
	mux.HandleFunc("/article/", func(w http.ResponseWriter, r *http.Request) {
		pageScrapes.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html><head><meta property="og:image" content="/img/og%s.jpg"></head><body>article</body></html>`,
			r.URL.Path[len("/article/"):])
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()
	srvURL = ts.URL

	tmpFile, err := os.CreateTemp("", "integration-*.db")
	require.NoError(t, err)
	tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	ctx := context.Background()
	repos, err := repository.NewRepositories(ctx, repository.Config{DSN: "file:" + tmpFile.Name() + "?mode=rwc", MaxOpenConns: 1})
	require.NoError(t, err)
	defer repos.Close()

	mkFeed := func(path string) domain.Feed {
		f := domain.Feed{URL: ts.URL + path, Name: path, IsActive: true}
		require.NoError(t, repos.Feed.CreateFeed(ctx, &f))
		return f
	}
	good, missing, empty, slow := mkFeed("/good.xml"), mkFeed("/missing.xml"), mkFeed("/empty.xml"), mkFeed("/slow.xml")

	scraper := content.NewScraper(2*time.Second, "")
	fp := NewFeedProcessor(FeedProcessorConfig{
		FeedManager:      repos.Feed,
		ItemManager:      repos.Item,
		FeedErrorManager: repos.FeedError,
		Fetcher:          feed.NewHTTPFetcher(300*time.Millisecond, ""),
		PageImages:       scraper,
		Icons:            scraper,
		Normalizer:       feed.NewNormalizer(200),
		Metrics:          metrics.New(),
		Retention:        72 * time.Hour,
	})

	res, err := fp.RunBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Processed)
	assert.Equal(t, 2, res.Disabled)
	assert.Equal(t, int64(2), res.Inserted, "item past retention is not stored")

	items, err := repos.Item.RecentItems(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	images := map[string]string{}
	for _, it := range items {
		assert.Equal(t, good.ID, it.FeedID)
		require.NotNil(t, it.ImageURL, it.URL)
		images[it.URL] = *it.ImageURL
	}
	assert.Equal(t, map[string]string{
		ts.URL + "/article/1": ts.URL + "/img/1.jpg",
		ts.URL + "/article/2": ts.URL + "/img/og2.jpg",
	}, images)
	assert.Equal(t, int32(1), pageScrapes.Load(), "only fresh items without in-document image are scraped")

	// health transitions
	check := func(f domain.Feed, active bool) {
		got, err := repos.Feed.GetFeed(ctx, f.ID)
		require.NoError(t, err)
		assert.Equal(t, active, got.IsActive, f.URL)
		assert.NotNil(t, got.LastFetchedAt, f.URL)
	}
	check(good, true)
	check(missing, false)
	check(empty, false)
	check(slow, true)

	errs, err := repos.FeedError.ListFeedErrors(ctx, 0, 10)
	require.NoError(t, err)
	codes := map[int64]string{}
	for _, e := range errs {
		codes[e.FeedID] = e.Code
	}
	assert.Equal(t, map[int64]string{missing.ID: "not_found", empty.ID: "no_items"}, codes)

	// second run sees only active feeds, stored items are neither duplicated nor scraped again
	res, err = fp.RunBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)
	assert.Zero(t, res.Disabled)
	assert.Zero(t, res.Inserted)
	assert.Equal(t, int32(1), pageScrapes.Load(), "nothing is scraped again")

	count, err := repos.Item.CountItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	errs, err = repos.FeedError.ListFeedErrors(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, errs, 2, "transient failures leave no audit record")

	// icon backfill falls back to favicon.ico for pages without icon links
	n, err := fp.RunIconBackfill(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	got, err := repos.Feed.GetFeed(ctx, good.ID)
	require.NoError(t, err)
	require.NotNil(t, got.IconURL)
	assert.Equal(t, ts.URL+"/favicon.ico", *got.IconURL)
}
