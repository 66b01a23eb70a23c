package server

import (
	"net/http"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedkeeper/pkg/domain"
	"github.com/umputun/feedkeeper/pkg/feed"
)

// rssHandler re-publishes recent items as a single RSS feed, optionally filtered by ?category=
func (s *Server) rssHandler(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	limit := s.limitParam(r)

	// category filter applies after the fetch, so read the widest window for it
	fetchLimit := limit
	if category != "" {
		fetchLimit = maxManifestLimit
	}

	items, err := s.store.RecentItems(r.Context(), fetchLimit)
	if err != nil {
		lgr.Printf("[ERROR] failed to get items for RSS: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}
	if category != "" {
		items = filterCategory(items, category, limit)
	}

	rss, err := feed.NewGenerator(baseURL(r)).GenerateRSS(items, category)
	if err != nil {
		lgr.Printf("[ERROR] failed to generate RSS feed: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(rss)); err != nil {
		lgr.Printf("[ERROR] failed to write RSS response: %v", err)
	}
}

// opmlHandler exports active feeds as OPML
func (s *Server) opmlHandler(w http.ResponseWriter, r *http.Request) {
	feeds, err := s.store.ListFeeds(r.Context())
	if err != nil {
		lgr.Printf("[ERROR] failed to get feeds for OPML: %v", err)
		http.Error(w, "Failed to generate OPML", http.StatusInternalServerError)
		return
	}

	opml, err := feed.NewGenerator(baseURL(r)).GenerateOPML(feeds)
	if err != nil {
		lgr.Printf("[ERROR] failed to generate OPML: %v", err)
		http.Error(w, "Failed to generate OPML", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/x-opml; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="feedkeeper.opml"`)
	if _, err := w.Write([]byte(opml)); err != nil {
		lgr.Printf("[ERROR] failed to write OPML response: %v", err)
	}
}

func filterCategory(items []domain.FeedItem, category string, limit int) []domain.FeedItem {
	res := make([]domain.FeedItem, 0, limit)
	for _, it := range items {
		if len(res) == limit {
			break
		}
		if it.FeedCategory != nil && strings.EqualFold(*it.FeedCategory, category) {
			res = append(res, it)
		}
	}
	return res
}

// baseURL makes the public URL of the server from the request
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
