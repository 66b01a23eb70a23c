package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/umputun/feedkeeper/pkg/domain"
)

// DefaultUserAgent is sent when no user agent is configured
const DefaultUserAgent = "Mozilla/5.0 (compatible; Feedkeeper/1.0; +https://github.com/umputun/feedkeeper)"

const maxFeedSize = 10 * 1024 * 1024

// HTTPFetcher fetches RSS/Atom/JSON feeds via HTTP
type HTTPFetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// NewHTTPFetcher creates a new feed fetcher. Each fetch is bounded by timeout.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout:   timeout,
		userAgent: userAgent,
	}
}

// Fetch retrieves and parses a feed, returning its entries in document order.
// Any failure is returned as *FetchError. An empty feed is not an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, feedURL string) ([]domain.RawItem, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	body, err := f.fetch(ctx, feedURL)
	if err != nil {
		return nil, NewFetchError(err)
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, NewFetchError(fmt.Errorf("parse feed: %w", err))
	}

	items := make([]domain.RawItem, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		items = append(items, toRawItem(item))
	}
	return items, nil
}

// fetch retrieves the feed document body
func (f *HTTPFetcher) fetch(ctx context.Context, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	addBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// toRawItem projects a parsed gofeed entry onto the typed fields the normalizer consumes
func toRawItem(item *gofeed.Item) domain.RawItem {
	raw := domain.RawItem{
		Title:       strings.TrimSpace(item.Title),
		Link:        strings.TrimSpace(item.Link),
		Description: item.Description,
		Content:     item.Content,
		Published:   item.PublishedParsed,
		Updated:     item.UpdatedParsed,
	}

	if raw.Link == "" {
		for _, l := range item.Links {
			if l = strings.TrimSpace(l); l != "" {
				raw.Link = l
				break
			}
		}
	}

	switch {
	case item.Author != nil && item.Author.Name != "":
		raw.Author = item.Author.Name
	case len(item.Authors) > 0 && item.Authors[0] != nil:
		raw.Author = item.Authors[0].Name
	case item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0:
		raw.Author = item.DublinCoreExt.Creator[0]
	}
	raw.Author = strings.TrimSpace(raw.Author)

	for _, enc := range item.Enclosures {
		if enc == nil || strings.TrimSpace(enc.URL) == "" {
			continue
		}
		raw.Enclosures = append(raw.Enclosures, domain.Enclosure{URL: strings.TrimSpace(enc.URL), Type: enc.Type})
	}

	raw.MediaContent = mediaURLs(item.Extensions, "content")
	raw.MediaThumbnails = mediaURLs(item.Extensions, "thumbnail")

	switch {
	case item.Image != nil && item.Image.URL != "":
		raw.VendorImage = strings.TrimSpace(item.Image.URL)
	case item.ITunesExt != nil && item.ITunesExt.Image != "":
		raw.VendorImage = strings.TrimSpace(item.ITunesExt.Image)
	case item.Custom != nil:
		raw.VendorImage = strings.TrimSpace(item.Custom["image"])
	}

	return raw
}

// mediaURLs collects url attributes of media:<name> elements, including those nested in media:group
func mediaURLs(exts ext.Extensions, name string) []string {
	media, ok := exts["media"]
	if !ok {
		return nil
	}

	var res []string
	collect := func(elems []ext.Extension) {
		for _, e := range elems {
			if isNonImageMedia(e.Attrs["type"], e.Attrs["medium"]) {
				continue
			}
			if u := strings.TrimSpace(e.Attrs["url"]); u != "" {
				res = append(res, u)
			}
		}
	}

	collect(media[name])
	for _, group := range media["group"] {
		collect(group.Children[name])
	}
	return res
}

// isNonImageMedia reports whether the declared type or medium says the resource is not an image
func isNonImageMedia(mimeType, medium string) bool {
	mimeType, medium = strings.ToLower(mimeType), strings.ToLower(medium)
	if medium != "" && medium != "image" {
		return true
	}
	return strings.HasPrefix(mimeType, "audio/") || strings.HasPrefix(mimeType, "video/")
}
