package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"

	"github.com/umputun/feedkeeper/pkg/scheduler"
)

const (
	defaultManifestLimit = 100
	maxManifestLimit     = 500
	defaultSourceName    = "General News"
	unknownDomain        = "news.source"
	invalidDomain        = "source.com"
)

// ManifestResponse is the read API payload with the most recent items
type ManifestResponse struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Items       []ManifestItem `json:"items"`
}

// ManifestItem is a stored item joined with its feed info
type ManifestItem struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	FeedID       int64     `json:"feed_id"`
	SourceName   string    `json:"source_name"`
	SourceDomain string    `json:"source_domain"`
	Category     *string   `json:"category"`
	PublishedAt  time.Time `json:"published_at"`
	ImageURL     *string   `json:"image_url"`
}

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := rest.JSON{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}

	if err := s.store.Ping(r.Context()); err != nil {
		lgr.Printf("[WARN] store ping failed: %v", err)
		status["status"] = "degraded"
		status["error"] = err.Error()
		renderJSON(w, r, http.StatusServiceUnavailable, status)
		return
	}

	count, err := s.store.CountItems(r.Context())
	if err != nil {
		lgr.Printf("[WARN] failed to count items: %v", err)
	}
	status["items"] = count
	renderJSON(w, r, http.StatusOK, status)
}

// manifestHandler serves the most recent items, newest first
func (s *Server) manifestHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	limit := s.limitParam(r)
	items, err := s.store.RecentItems(r.Context(), limit)
	if err != nil {
		lgr.Printf("[ERROR] failed to get recent items: %v", err)
		renderError(w, r, errors.New("failed to load items"), http.StatusInternalServerError)
		return
	}

	resp := ManifestResponse{GeneratedAt: time.Now().UTC(), Items: make([]ManifestItem, 0, len(items))}
	for _, it := range items {
		mi := ManifestItem{
			ID:           it.ID,
			Title:        it.Title,
			URL:          it.URL,
			FeedID:       it.FeedID,
			SourceName:   it.FeedName,
			SourceDomain: sourceDomain(it.FeedURL),
			PublishedAt:  it.PublishedAt.UTC(),
			ImageURL:     it.ImageURL,
		}
		if mi.SourceName == "" {
			mi.SourceName = defaultSourceName
		}
		if it.FeedCategory != nil && *it.FeedCategory != "" {
			mi.Category = it.FeedCategory
		}
		resp.Items = append(resp.Items, mi)
	}
	renderJSON(w, r, http.StatusOK, resp)
}

// manifestPreflightHandler answers CORS preflight requests of browser clients
func (s *Server) manifestPreflightHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusNoContent)
}

// ingestHandler runs a batch synchronously and reports its result
func (s *Server) ingestHandler(w http.ResponseWriter, r *http.Request) {
	clearDeadlines(w)
	// the batch outlives a disconnected client
	res, err := s.runner.RunBatch(context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, scheduler.ErrBatchInProgress):
		renderError(w, r, err, http.StatusConflict)
	case err != nil:
		lgr.Printf("[ERROR] triggered batch failed: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
	default:
		renderJSON(w, r, http.StatusOK, rest.JSON{
			"processed":   res.Processed,
			"disabled":    res.Disabled,
			"inserted":    res.Inserted,
			"duration_ms": res.Duration.Milliseconds(),
		})
	}
}

// iconsHandler runs an icon backfill synchronously
func (s *Server) iconsHandler(w http.ResponseWriter, r *http.Request) {
	clearDeadlines(w)
	n, err := s.runner.RunIconBackfill(context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, scheduler.ErrIconsInProgress):
		renderError(w, r, err, http.StatusConflict)
	case err != nil:
		lgr.Printf("[ERROR] triggered icon backfill failed: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
	default:
		renderJSON(w, r, http.StatusOK, rest.JSON{"updated": n})
	}
}

// clearDeadlines lifts the server read and write timeouts for a long synchronous handler
func clearDeadlines(w http.ResponseWriter) {
	rc := http.NewResponseController(w)
	if err := rc.SetReadDeadline(time.Time{}); err != nil {
		lgr.Printf("[DEBUG] can't clear read deadline: %v", err)
	}
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		lgr.Printf("[DEBUG] can't clear write deadline: %v", err)
	}
}

// limitParam returns the requested item limit, config default for missing or invalid values
func (s *Server) limitParam(r *http.Request) int {
	limit := s.config.GetManifestLimit()
	if limit <= 0 {
		limit = defaultManifestLimit
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	return min(limit, maxManifestLimit)
}

// sourceDomain returns the feed host without a leading "www."
func sourceDomain(feedURL string) string {
	if feedURL == "" {
		return unknownDomain
	}
	u, err := url.Parse(feedURL)
	if err != nil || u.Hostname() == "" {
		return invalidDomain
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
