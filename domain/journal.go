package domain

import "time"

// JournalSource is a tech blog or newsletter merged into the journal feed.
type JournalSource struct {
	Name     string `json:"name" toml:"name"`
	Homepage string `json:"homepage" toml:"homepage"`
	ProbeURL string `json:"-" toml:"probe_url"`
	FeedURL  string `json:"-" toml:"feed_url"`
}

// JournalSourceRef is the public part of a JournalSource.
type JournalSourceRef struct {
	Name     string `json:"name"`
	Homepage string `json:"homepage"`
}

// Probe is the URL checked for reachability: explicit probe URL, then the
// feed, then the homepage.
func (s JournalSource) Probe() string {
	if s.ProbeURL != "" {
		return s.ProbeURL
	}
	if s.FeedURL != "" {
		return s.FeedURL
	}
	return s.Homepage
}

func (s JournalSource) Ref() JournalSourceRef {
	return JournalSourceRef{Name: s.Name, Homepage: s.Homepage}
}

// JournalEntry is one post pulled from a journal source.
type JournalEntry struct {
	Title       string
	Link        string
	Description string
	Author      string
	Published   *time.Time
	Categories  []string
}

// FeedItem renders the entry as a JSON Feed item.
func (e JournalEntry) FeedItem() JSONFeedItem {
	item := JSONFeedItem{
		ID:          e.Link,
		URL:         e.Link,
		Title:       e.Title,
		ContentHTML: e.Description,
		Tags:        e.Categories,
	}
	if e.Author != "" {
		item.Authors = []Author{{Name: e.Author}}
	}
	if e.Published != nil {
		item.DatePublished = e.Published.UTC().Format(time.RFC3339)
	}
	return item
}
