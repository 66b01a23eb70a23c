package content

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// page image meta tags in priority order
var imageMetaSelectors = []string{
	`meta[property="og:image"]`,
	`meta[name="og:image"]`,
	`meta[property="og:image:url"]`,
	`meta[name="twitter:image"]`,
	`meta[property="twitter:image"]`,
	`meta[name="twitter:image:src"]`,
}

// PageImage fetches the article page and returns its Open Graph or Twitter card image.
// Empty result with nil error means the page has no such tags.
func (s *Scraper) PageImage(ctx context.Context, pageURL string) (string, error) {
	doc, base, err := s.fetchPage(ctx, pageURL)
	if err != nil {
		return "", err
	}

	for _, sel := range imageMetaSelectors {
		var img string
		doc.Find(sel).EachWithBreak(func(_ int, m *goquery.Selection) bool {
			if u, ok := resolve(base, strings.TrimSpace(m.AttrOr("content", ""))); ok {
				img = u
				return false
			}
			return true
		})
		if img != "" {
			return img, nil
		}
	}
	return "", nil
}
