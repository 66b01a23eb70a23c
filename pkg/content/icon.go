package content

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pkgz/lgr"
)

// icon rel values by priority, lower index wins
var iconRels = []string{"apple-touch-icon", "apple-touch-icon-precomposed", "icon"}

// Icon finds the best icon of the site serving siteURL. It looks at the site origin page for
// apple touch icons first, then for icon and shortcut icon links. The root favicon.ico is
// returned when the page has no icon links or can not be fetched.
// An error is returned only for an unusable siteURL.
func (s *Scraper) Icon(ctx context.Context, siteURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(siteURL))
	if err != nil {
		return "", fmt.Errorf("parse site url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid site url: %q", siteURL)
	}
	origin := &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}
	favicon := origin.Scheme + "://" + origin.Host + "/favicon.ico"

	doc, _, err := s.fetchPage(ctx, origin.String())
	if err != nil {
		lgr.Printf("[DEBUG] can't load %s for icon lookup, using favicon.ico: %v", origin, err)
		return favicon, nil
	}

	if icon, ok := findIcon(doc, origin); ok {
		return icon, nil
	}
	return favicon, nil
}

// findIcon picks the highest priority icon link and resolves it against the origin
func findIcon(doc *goquery.Document, origin *url.URL) (string, bool) {
	best, bestRank := "", len(iconRels)
	doc.Find("link[rel][href]").Each(func(_ int, l *goquery.Selection) {
		rank := iconRank(l.AttrOr("rel", ""))
		if rank >= bestRank {
			return
		}
		if u, ok := resolve(origin, l.AttrOr("href", "")); ok {
			best, bestRank = u, rank
		}
	})
	return best, best != ""
}

// iconRank returns priority of the rel attribute, len(iconRels) if it is not an icon link
func iconRank(rel string) int {
	tokens := strings.Fields(strings.ToLower(rel))
	rank := len(iconRels)
	for _, tok := range tokens {
		for i, r := range iconRels {
			if tok == r && i < rank {
				rank = i
			}
		}
	}
	return rank
}
