package feed

import (
	"html"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/umputun/feedkeeper/pkg/domain"
)

// DefaultTitle is used for entries without a title
const DefaultTitle = "Untitled"

// DefaultSummaryLength is the summary cap in runes when none is configured
const DefaultSummaryLength = 200

// Normalizer maps raw feed entries to canonical items
type Normalizer struct {
	summaryLength int
	policy        *bluemonday.Policy
	now           func() time.Time
}

// NewNormalizer makes a normalizer capping summaries at summaryLength runes
func NewNormalizer(summaryLength int) *Normalizer {
	if summaryLength <= 0 {
		summaryLength = DefaultSummaryLength
	}
	return &Normalizer{summaryLength: summaryLength, policy: bluemonday.StrictPolicy(), now: time.Now}
}

// Normalize converts raw entries of the feed to items, keeping the entry order.
// Entries without a usable http(s) link are dropped, as are repeated links within the same document.
// Images are resolved from the in-document tiers only.
func (n *Normalizer) Normalize(f domain.Feed, raws []domain.RawItem) []domain.Item {
	base, _ := url.Parse(f.URL) // nil base leaves relative links unresolved, they are dropped then

	now := n.now().UTC()
	seen := make(map[string]bool, len(raws))
	res := make([]domain.Item, 0, len(raws))
	for _, raw := range raws {
		link, ok := absoluteURL(base, raw.Link)
		if !ok || seen[link] {
			continue
		}
		seen[link] = true

		item := domain.Item{
			FeedID:      f.ID,
			Title:       strings.TrimSpace(stripNUL(raw.Title)),
			URL:         link,
			PublishedAt: now,
			Author:      optional(stripNUL(raw.Author)),
			Summary:     optional(n.summary(raw)),
		}
		if item.Title == "" {
			item.Title = DefaultTitle
		}
		switch {
		case raw.Published != nil && !raw.Published.IsZero():
			item.PublishedAt = raw.Published.UTC()
		case raw.Updated != nil && !raw.Updated.IsZero():
			item.PublishedAt = raw.Updated.UTC()
		}

		linkURL, _ := url.Parse(link)
		item.ImageURL = optional(ResolveImage(raw, linkURL))
		res = append(res, item)
	}
	return res
}

// summary makes plain text out of the richest text field and caps its length
func (n *Normalizer) summary(raw domain.RawItem) string {
	text := stripNUL(raw.Description)
	if strings.TrimSpace(text) == "" {
		text = stripNUL(raw.Content)
	}
	if text == "" {
		return ""
	}

	// keep words of adjacent block elements apart once tags are gone
	text = strings.ReplaceAll(text, "<", " <")
	text = html.UnescapeString(n.policy.Sanitize(text))
	text = strings.Join(strings.Fields(text), " ")
	return truncate(text, n.summaryLength)
}

// truncate cuts s to at most limit runes
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit]))
}

// stripNUL drops NUL bytes, text columns of postgres reject them
func stripNUL(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}
