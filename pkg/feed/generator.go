package feed

import (
	"encoding/xml"
	"fmt"
	"mime"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/umputun/feedkeeper/pkg/domain"
)

// Generator creates RSS and OPML documents from stored items and feeds
type Generator struct {
	baseURL string
	now     func() time.Time
}

// NewGenerator creates a new feed generator
func NewGenerator(baseURL string) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// GenerateRSS creates an RSS 2.0 feed of recent items, optionally limited to a single category
func (g *Generator) GenerateRSS(items []domain.FeedItem, category string) (string, error) {
	title := "feedkeeper - all sources"
	selfLink := g.baseURL + "/rss"
	if category != "" {
		title = "feedkeeper - " + category
		selfLink += "?category=" + url.QueryEscape(category)
	}

	rssItems := make([]*RSSItem, 0, len(items))
	for _, item := range items {
		rssItems = append(rssItems, g.convertToRSSItem(item))
	}

	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         title,
			Link:          g.baseURL + "/",
			Description:   "Recent items collected from all active feeds",
			AtomLink:      &AtomLink{Href: selfLink, Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: g.now().Format(time.RFC1123Z),
			Items:         rssItems,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}
	return xml.Header + string(output), nil
}

func (g *Generator) convertToRSSItem(item domain.FeedItem) *RSSItem {
	res := &RSSItem{
		Title:       item.Title,
		Link:        item.URL,
		GUID:        &RSSGUID{Value: item.URL, IsPermaLink: true},
		Description: deref(item.Summary),
		Author:      deref(item.Author),
		PubDate:     item.PublishedAt.UTC().Format(time.RFC1123Z),
	}
	if item.FeedName != "" {
		res.Source = &RSSSource{Name: item.FeedName, URL: item.FeedURL}
	}
	if item.FeedCategory != nil && *item.FeedCategory != "" {
		res.Categories = []string{*item.FeedCategory}
	}
	if item.ImageURL != nil {
		res.Enclosure = &RSSEnclosure{URL: *item.ImageURL, Type: imageType(*item.ImageURL)}
	}
	return res
}

// imageType guesses the mime type of an image from its path, image/jpeg if unknown
func imageType(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return "image/jpeg"
	}
	if t := mime.TypeByExtension(strings.ToLower(path.Ext(u.Path))); strings.HasPrefix(t, "image/") {
		return t
	}
	return "image/jpeg"
}

// GenerateOPML creates an OPML file with the active feed subscriptions
func (g *Generator) GenerateOPML(feeds []domain.Feed) (string, error) {
	type outline struct {
		XMLName  xml.Name `xml:"outline"`
		Text     string   `xml:"text,attr"`
		Title    string   `xml:"title,attr"`
		Type     string   `xml:"type,attr"`
		XMLUrl   string   `xml:"xmlUrl,attr"`
		Category string   `xml:"category,attr,omitempty"`
	}

	type body struct {
		XMLName  xml.Name  `xml:"body"`
		Outlines []outline `xml:"outline"`
	}

	type head struct {
		XMLName     xml.Name `xml:"head"`
		Title       string   `xml:"title"`
		DateCreated string   `xml:"dateCreated"`
	}

	type opml struct {
		XMLName xml.Name `xml:"opml"`
		Version string   `xml:"version,attr"`
		Head    head     `xml:"head"`
		Body    body     `xml:"body"`
	}

	outlines := make([]outline, 0, len(feeds))
	for _, f := range feeds {
		if !f.IsActive {
			continue
		}
		outlines = append(outlines, outline{
			Text:     f.DisplayName(),
			Title:    f.DisplayName(),
			Type:     "rss",
			XMLUrl:   f.URL,
			Category: deref(f.Category),
		})
	}

	doc := opml{
		Version: "2.0",
		Head: head{
			Title:       "feedkeeper subscriptions",
			DateCreated: g.now().Format(time.RFC1123Z),
		},
		Body: body{Outlines: outlines},
	}

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal OPML: %w", err)
	}
	return xml.Header + string(output), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
