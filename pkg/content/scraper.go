// Package content scrapes web pages for article images and site icons
package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// DefaultUserAgent is sent when no user agent is configured
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Feedkeeper/1.0"

const maxPageSize = 2 * 1024 * 1024

// Scraper fetches html pages and queries them for images and icons
type Scraper struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// NewScraper makes a scraper, every page fetch is bounded by timeout
func NewScraper(timeout time.Duration, userAgent string) *Scraper {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Scraper{
		client:    &http.Client{Timeout: timeout},
		timeout:   timeout,
		userAgent: userAgent,
	}
}

// fetchPage loads the page and returns the parsed document with the final (post-redirect) url
func (s *Scraper) fetchPage(ctx context.Context, pageURL string) (*goquery.Document, *url.URL, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	addBrowserHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch page %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, pageURL)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(strings.ToLower(contentType), "html") {
		return nil, nil, fmt.Errorf("not an html page %s: %s", pageURL, contentType)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxPageSize), contentType)
	if err != nil {
		return nil, nil, fmt.Errorf("decode page %s: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, nil, fmt.Errorf("parse page %s: %w", pageURL, err)
	}

	finalURL := resp.Request.URL
	if finalURL == nil {
		finalURL, _ = url.Parse(pageURL)
	}
	return doc, finalURL, nil
}

// resolve makes ref absolute against base, only http(s) results are accepted
func resolve(base *url.URL, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "data:") {
		return "", false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	u = base.ResolveReference(u)
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	return u.String(), true
}
