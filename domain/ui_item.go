package domain

type SourceRef struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// UiItem is one display-ready entry. Rank always equals its 1-based position.
type UiItem struct {
	Rank          int       `json:"rank"`
	Title         string    `json:"title"`
	Link          string    `json:"link"`
	Summary       string    `json:"summary,omitempty"`
	Image         string    `json:"image,omitempty"`
	DatePublished string    `json:"datePublished,omitempty"`
	Source        SourceRef `json:"source"`
}

type SourceError struct {
	SourceKey string `json:"sourceKey"`
	Message   string `json:"message"`
}

type AggregationResult struct {
	Items  []UiItem      `json:"items"`
	Errors []SourceError `json:"errors,omitempty"`
}

// Rerank assigns dense ranks 1..len(items) in place.
func Rerank(items []UiItem) []UiItem {
	for i := range items {
		items[i].Rank = i + 1
	}
	return items
}

const (
	DefaultLimit = 20
	MaxLimit     = 50
	RisingLimit  = 10
)
