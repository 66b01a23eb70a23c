package domain

import "time"

// Item represents a normalized article/entry
type Item struct {
	ID          int64
	FeedID      int64
	Title       string
	URL         string
	PublishedAt time.Time
	Author      *string
	Summary     *string
	ImageURL    *string
	CreatedAt   time.Time
}

// FeedItem is an item joined with the owning feed's display fields
type FeedItem struct {
	Item
	FeedName     string
	FeedURL      string
	FeedCategory *string
}

// Enclosure is an attachment declared by a feed entry
type Enclosure struct {
	URL  string
	Type string
}

// RawItem is a parsed feed entry before normalization.
// All fields are optional, feeds are free to omit any of them.
type RawItem struct {
	Title           string
	Link            string
	Description     string
	Content         string
	Author          string
	Published       *time.Time
	Updated         *time.Time
	Enclosures      []Enclosure
	MediaContent    []string
	MediaThumbnails []string
	VendorImage     string
}
