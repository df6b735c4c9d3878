package domain

// JSONFeed is the document served by collaborator routes (JSON Feed 1.1 subset).
type JSONFeed struct {
	Version     string         `json:"version,omitempty"`
	Title       string         `json:"title,omitempty"`
	HomePageURL string         `json:"home_page_url,omitempty"`
	FeedURL     string         `json:"feed_url,omitempty"`
	Description string         `json:"description,omitempty"`
	Items       []JSONFeedItem `json:"items"`
}

type JSONFeedItem struct {
	ID            string   `json:"id"`
	URL           string   `json:"url,omitempty"`
	Title         string   `json:"title,omitempty"`
	ContentHTML   string   `json:"content_html,omitempty"`
	ContentText   string   `json:"content_text,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	Image         string   `json:"image,omitempty"`
	DatePublished string   `json:"date_published,omitempty"`
	Authors       []Author `json:"authors,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

type Author struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Usable reports whether the item can be shown: it needs a title and
// something to link to.
func (i JSONFeedItem) Usable() bool {
	return i.Title != "" && (i.URL != "" || i.ID != "")
}

// Link prefers the item URL and falls back to the id.
func (i JSONFeedItem) Link() string {
	if i.URL != "" {
		return i.URL
	}
	return i.ID
}

const JSONFeedVersion = "https://jsonfeed.org/version/1.1"
