package domain

import "time"

// Feed represents a subscribed news source
type Feed struct {
	ID            int64
	URL           string
	Name          string
	Category      *string
	IconURL       *string
	IsActive      bool
	LastFetchedAt *time.Time
	CreatedAt     time.Time
}

// DisplayName returns the feed name, or its URL if the name is empty
func (f Feed) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.URL
}

// FeedUpdate holds optional feed bookkeeping changes, nil fields are left untouched
type FeedUpdate struct {
	LastFetchedAt *time.Time
	IsActive      *bool
	IconURL       *string
}

// Empty reports whether the update carries no changes
func (u FeedUpdate) Empty() bool {
	return u.LastFetchedAt == nil && u.IsActive == nil && u.IconURL == nil
}

// FeedError is an append-only audit record of a failed or degenerate fetch
type FeedError struct {
	ID        int64
	FeedID    int64
	FeedName  string
	FeedURL   string
	Code      string
	Message   string
	CreatedAt time.Time
}

// BatchResult summarizes a single ingestion batch run
type BatchResult struct {
	Processed int           `json:"processed"`
	Disabled  int           `json:"disabled"`
	Inserted  int64         `json:"inserted"`
	Duration  time.Duration `json:"duration"`
}
