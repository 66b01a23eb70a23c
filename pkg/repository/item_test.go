package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedkeeper/pkg/domain"
)

func strPtr(s string) *string { return &s }

func TestItemRepository_UpsertItems(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	f := createFeed(t, repos, "https://example.com/feed", nil)
	published := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	items := []domain.Item{
		{FeedID: f.ID, Title: "one", URL: "https://example.com/1", PublishedAt: published, Summary: strPtr("first")},
		{FeedID: f.ID, Title: "two", URL: "https://example.com/2", PublishedAt: published.Add(time.Hour), ImageURL: strPtr("https://cdn/2.jpg")},
	}

	n, err := repos.Item.UpsertItems(ctx, items)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	t.Run("same urls are ignored, first write wins", func(t *testing.T) {
		again := []domain.Item{
			{FeedID: f.ID, Title: "one changed", URL: "https://example.com/1", PublishedAt: published, Summary: strPtr("changed")},
			{FeedID: f.ID, Title: "three", URL: "https://example.com/3", PublishedAt: published},
		}
		n, err := repos.Item.UpsertItems(ctx, again)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		count, err := repos.Item.CountItems(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		recent, err := repos.Item.RecentItems(ctx, 10)
		require.NoError(t, err)
		var first *domain.FeedItem
		for i := range recent {
			if recent[i].URL == "https://example.com/1" {
				first = &recent[i]
			}
		}
		require.NotNil(t, first)
		assert.Equal(t, "one", first.Title)
		require.NotNil(t, first.Summary)
		assert.Equal(t, "first", *first.Summary)
	})

	t.Run("duplicates within one call", func(t *testing.T) {
		n, err := repos.Item.UpsertItems(ctx, []domain.Item{
			{FeedID: f.ID, Title: "dup", URL: "https://example.com/dup", PublishedAt: published},
			{FeedID: f.ID, Title: "dup again", URL: "https://example.com/dup", PublishedAt: published},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("empty", func(t *testing.T) {
		n, err := repos.Item.UpsertItems(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestItemRepository_SelectExistingItemURLs(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	f := createFeed(t, repos, "https://example.com/feed", nil)
	var items []domain.Item
	for i := 0; i < 600; i += 2 {
		items = append(items, domain.Item{FeedID: f.ID, Title: "t", URL: fmt.Sprintf("https://example.com/%d", i), PublishedAt: time.Now()})
	}
	_, err := repos.Item.UpsertItems(ctx, items)
	require.NoError(t, err)

	var urls []string
	for i := 0; i < 600; i++ {
		urls = append(urls, fmt.Sprintf("https://example.com/%d", i))
	}

	existing, err := repos.Item.SelectExistingItemURLs(ctx, urls)
	require.NoError(t, err)
	assert.Len(t, existing, 300)
	assert.True(t, existing["https://example.com/0"])
	assert.True(t, existing["https://example.com/598"])
	assert.False(t, existing["https://example.com/1"])

	existing, err = repos.Item.SelectExistingItemURLs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, existing)
}

func TestItemRepository_DeleteItemsOlderThan(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	f := createFeed(t, repos, "https://example.com/feed", nil)
	now := time.Now().UTC()
	_, err := repos.Item.UpsertItems(ctx, []domain.Item{
		{FeedID: f.ID, Title: "old", URL: "https://example.com/old", PublishedAt: now.Add(-96 * time.Hour)},
		{FeedID: f.ID, Title: "edge", URL: "https://example.com/edge", PublishedAt: now.Add(-73 * time.Hour)},
		{FeedID: f.ID, Title: "fresh", URL: "https://example.com/fresh", PublishedAt: now.Add(-time.Hour)},
		{FeedID: f.ID, Title: "future", URL: "https://example.com/future", PublishedAt: now.Add(time.Hour)},
	})
	require.NoError(t, err)

	deleted, err := repos.Item.DeleteItemsOlderThan(ctx, now.Add(-72*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	recent, err := repos.Item.RecentItems(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "future", recent[0].Title)
	assert.Equal(t, "fresh", recent[1].Title)
}

func TestItemRepository_RecentItems(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	category := "world"
	f := domain.Feed{URL: "https://www.example.com/rss", Name: "Example News", Category: &category, IsActive: true}
	require.NoError(t, repos.Feed.CreateFeed(ctx, &f))
	plain := createFeed(t, repos, "https://plain.example.org/feed", nil)

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := repos.Item.UpsertItems(ctx, []domain.Item{
		{FeedID: f.ID, Title: "a", URL: "https://example.com/a", PublishedAt: base, ImageURL: strPtr("https://cdn/a.jpg")},
		{FeedID: plain.ID, Title: "b", URL: "https://example.org/b", PublishedAt: base.Add(2 * time.Hour)},
		{FeedID: 777, Title: "orphan", URL: "https://example.net/c", PublishedAt: base.Add(time.Hour)},
	})
	require.NoError(t, err)

	items, err := repos.Item.RecentItems(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "b", items[0].Title)
	assert.Equal(t, plain.Name, items[0].FeedName)
	assert.Nil(t, items[0].FeedCategory)
	assert.Nil(t, items[0].ImageURL)

	assert.Equal(t, "orphan", items[1].Title)
	assert.Empty(t, items[1].FeedName)
	assert.Empty(t, items[1].FeedURL)

	assert.Equal(t, "a", items[2].Title)
	assert.Equal(t, "Example News", items[2].FeedName)
	assert.Equal(t, "https://www.example.com/rss", items[2].FeedURL)
	require.NotNil(t, items[2].FeedCategory)
	assert.Equal(t, "world", *items[2].FeedCategory)
	require.NotNil(t, items[2].ImageURL)
	assert.True(t, base.Equal(items[2].PublishedAt))

	limited, err := repos.Item.RecentItems(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "b", limited[0].Title)
}
